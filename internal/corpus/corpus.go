package corpus

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
)

var (
	ErrInvalidRecord = errors.New("invalid analysis record")
	ErrEmpty         = errors.New("corpus contains no analyses")
)

// Duplicate names a record that was dropped because an earlier record had the
// same identity key.
type Duplicate struct {
	Kept    string
	Dropped string
}

// Corpus is the immutable table of pre-computed analyses.
// It is safe for concurrent readers; nothing mutates it after New returns.
type Corpus struct {
	records    []models.AnalysisRecord
	byKey      map[models.AnalysisKey]int
	byID       map[string]int
	duplicates []Duplicate
	metadata   models.CorpusMetadata
}

// New validates records and builds the lookup indices. Records are copied.
// A record whose identity key repeats an earlier one is dropped and reported by
// Duplicates; the first occurrence wins.
func New(records []models.AnalysisRecord, metadata models.CorpusMetadata) (*Corpus, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}

	c := &Corpus{
		records:  make([]models.AnalysisRecord, 0, len(records)),
		byKey:    make(map[models.AnalysisKey]int, len(records)),
		byID:     make(map[string]int, len(records)),
		metadata: metadata,
	}

	for i, rec := range records {
		if rec.ClusterLevel == "" {
			rec.ClusterLevel = models.ClusterCounty
		}
		if rec.SampleRestriction == models.RestrictionNone {
			rec.SampleRestriction = deriveRestriction(&rec)
		}
		if err := validate(&rec); err != nil {
			return nil, fmt.Errorf("record %d (%s): %w", i, rec.ID, err)
		}
		rec = copyRecord(rec)
		lower, upper := rec.Interval()
		rec.ConfidenceLower = &lower
		rec.ConfidenceUpper = &upper

		key := rec.Key()
		if prev, ok := c.byKey[key]; ok {
			c.duplicates = append(c.duplicates, Duplicate{Kept: c.records[prev].ID, Dropped: rec.ID})
			continue
		}
		idx := len(c.records)
		if rec.ID != "" {
			if prev, ok := c.byID[rec.ID]; ok {
				return nil, fmt.Errorf("%w: id %s used by records %d and %d", ErrInvalidRecord, rec.ID, prev, i)
			}
			c.byID[rec.ID] = idx
		}
		c.byKey[key] = idx
		c.records = append(c.records, rec)
	}

	c.metadata.TotalAnalyses = len(c.records)
	return c, nil
}

var cohortDesc = regexp.MustCompile(`\b(2018|2020|2022|2024) VCA cohort\b`)

// deriveRestriction recovers the subsample from the filter description the
// precompute job writes, since its output has no sample_restriction field.
func deriveRestriction(rec *models.AnalysisRecord) models.SampleRestriction {
	desc := rec.FilterDesc
	if desc == "" {
		desc = rec.Description
	}
	if m := cohortDesc.FindStringSubmatch(desc); m != nil {
		return models.SampleRestriction("vca_" + m[1])
	}
	lower := strings.ToLower(desc)
	switch {
	case strings.Contains(lower, "largest counties"):
		return models.RestrictionExcludeLarge
	case strings.Contains(lower, "small counties"):
		return models.RestrictionExcludeSmall
	}
	return models.RestrictionNone
}

func validate(rec *models.AnalysisRecord) error {
	switch {
	case !rec.Outcome.Valid():
		return fmt.Errorf("%w: unknown outcome %q", ErrInvalidRecord, rec.Outcome)
	case !rec.Specification.Valid():
		return fmt.Errorf("%w: unknown specification %q", ErrInvalidRecord, rec.Specification)
	case !rec.StateFilter.Valid():
		return fmt.Errorf("%w: unknown state filter %q", ErrInvalidRecord, rec.StateFilter)
	case !rec.ClusterLevel.Valid():
		return fmt.Errorf("%w: unknown cluster level %q", ErrInvalidRecord, rec.ClusterLevel)
	case !rec.SampleRestriction.Valid():
		return fmt.Errorf("%w: unknown sample restriction %q", ErrInvalidRecord, rec.SampleRestriction)
	case rec.Successful() && rec.StandardError < 0:
		return fmt.Errorf("%w: negative standard error", ErrInvalidRecord)
	}
	return nil
}

func cloneWindow(w *models.TimeWindow) *models.TimeWindow {
	if w == nil {
		return nil
	}
	cp := *w
	return &cp
}

// copyRecord detaches the pointer fields so callers cannot reach corpus memory.
func copyRecord(r models.AnalysisRecord) models.AnalysisRecord {
	r.TimeWindow = cloneWindow(r.TimeWindow)
	if r.ConfidenceLower != nil {
		v := *r.ConfidenceLower
		r.ConfidenceLower = &v
	}
	if r.ConfidenceUpper != nil {
		v := *r.ConfidenceUpper
		r.ConfidenceUpper = &v
	}
	if r.Success != nil {
		v := *r.Success
		r.Success = &v
	}
	return r
}

func (c *Corpus) Len() int {
	return len(c.records)
}

func (c *Corpus) Metadata() models.CorpusMetadata {
	return c.metadata
}

// Duplicates lists the records New dropped, in input order.
func (c *Corpus) Duplicates() []Duplicate {
	return append([]Duplicate(nil), c.duplicates...)
}

// Each visits records in corpus order until fn returns false.
func (c *Corpus) Each(fn func(models.AnalysisRecord) bool) {
	for _, rec := range c.records {
		if !fn(copyRecord(rec)) {
			return
		}
	}
}

func (c *Corpus) ByID(id string) (models.AnalysisRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.AnalysisRecord{}, false
	}
	return copyRecord(c.records[i]), true
}

func (c *Corpus) Lookup(key models.AnalysisKey) (models.AnalysisRecord, bool) {
	i, ok := c.byKey[key]
	if !ok {
		return models.AnalysisRecord{}, false
	}
	return copyRecord(c.records[i]), true
}

// Baseline returns the fixed reference record for the outcome's family.
func (c *Corpus) Baseline(outcome models.Outcome) (models.AnalysisRecord, bool) {
	key, ok := models.BaselineKey(outcome)
	if !ok {
		return models.AnalysisRecord{}, false
	}
	return c.Lookup(key)
}

// Stats counts records per outcome.
func (c *Corpus) Stats() map[models.Outcome]int {
	stats := make(map[models.Outcome]int)
	for _, rec := range c.records {
		stats[rec.Outcome]++
	}
	return stats
}
