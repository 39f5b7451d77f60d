package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Outcome string

const (
	OutcomeDemShare     Outcome = "dem_share"
	OutcomeDemSharePres Outcome = "dem_share_pres"
	OutcomeDemShareGov  Outcome = "dem_share_gov"
	OutcomeDemShareSen  Outcome = "dem_share_sen"
	OutcomeTurnout      Outcome = "turnout"

	// OutcomeUnsupported marks a question about something the corpus never computes.
	OutcomeUnsupported Outcome = "unsupported"
)

// Family groups outcomes that share a baseline and a display panel.
type Family string

const (
	FamilyNone      Family = ""
	FamilyVoteShare Family = "vote_share"
	FamilyTurnout   Family = "turnout"
)

func (o Outcome) Family() Family {
	switch o {
	case OutcomeDemShare, OutcomeDemSharePres, OutcomeDemShareGov, OutcomeDemShareSen:
		return FamilyVoteShare
	case OutcomeTurnout:
		return FamilyTurnout
	default:
		return FamilyNone
	}
}

func (o Outcome) Valid() bool {
	return o.Family() != FamilyNone
}

func (o Outcome) Label() string {
	switch o {
	case OutcomeDemShare:
		return "Democratic vote share (pooled)"
	case OutcomeDemSharePres:
		return "Democratic vote share (presidential)"
	case OutcomeDemShareGov:
		return "Democratic vote share (governor)"
	case OutcomeDemShareSen:
		return "Democratic vote share (senate)"
	case OutcomeTurnout:
		return "Turnout"
	default:
		return string(o)
	}
}

type Specification string

const (
	SpecBasic     Specification = "basic"
	SpecLinear    Specification = "linear"
	SpecQuadratic Specification = "quadratic"
)

// Specifications lists the model variants in table column order.
var Specifications = []Specification{SpecBasic, SpecLinear, SpecQuadratic}

func (s Specification) Valid() bool {
	switch s {
	case SpecBasic, SpecLinear, SpecQuadratic:
		return true
	}
	return false
}

func (s Specification) Label() string {
	switch s {
	case SpecBasic:
		return "Basic"
	case SpecLinear:
		return "Linear trends"
	case SpecQuadratic:
		return "Quadratic trends"
	default:
		return string(s)
	}
}

// StateFilter is empty for the full three-state sample.
type StateFilter string

const (
	FilterNone      StateFilter = ""
	FilterCAOnly    StateFilter = "CA"
	FilterUTOnly    StateFilter = "UT"
	FilterWAOnly    StateFilter = "WA"
	FilterExcludeCA StateFilter = "exclude_CA"
	FilterExcludeUT StateFilter = "exclude_UT"
	FilterExcludeWA StateFilter = "exclude_WA"
)

func (f StateFilter) Valid() bool {
	switch f {
	case FilterNone, FilterCAOnly, FilterUTOnly, FilterWAOnly,
		FilterExcludeCA, FilterExcludeUT, FilterExcludeWA:
		return true
	}
	return false
}

func (f StateFilter) Label() string {
	switch {
	case f == FilterNone:
		return "full sample"
	case strings.HasPrefix(string(f), "exclude_"):
		return "excluding " + strings.TrimPrefix(string(f), "exclude_")
	default:
		return string(f) + " only"
	}
}

type ClusterLevel string

const (
	ClusterCounty    ClusterLevel = "county"
	ClusterState     ClusterLevel = "state"
	ClusterStateYear ClusterLevel = "state_year"
)

func (c ClusterLevel) Valid() bool {
	switch c {
	case ClusterCounty, ClusterState, ClusterStateYear:
		return true
	}
	return false
}

// SampleRestriction covers the tier-2 size and VCA cohort subsamples.
type SampleRestriction string

const (
	RestrictionNone         SampleRestriction = ""
	RestrictionExcludeLarge SampleRestriction = "exclude_large"
	RestrictionExcludeSmall SampleRestriction = "exclude_small"
	RestrictionVCA2018      SampleRestriction = "vca_2018"
	RestrictionVCA2020      SampleRestriction = "vca_2020"
	RestrictionVCA2022      SampleRestriction = "vca_2022"
	RestrictionVCA2024      SampleRestriction = "vca_2024"
)

func (r SampleRestriction) Valid() bool {
	switch r {
	case RestrictionNone, RestrictionExcludeLarge, RestrictionExcludeSmall,
		RestrictionVCA2018, RestrictionVCA2020, RestrictionVCA2022, RestrictionVCA2024:
		return true
	}
	return false
}

// TimeWindow is an inclusive year range. A nil *TimeWindow means the full range.
type TimeWindow struct {
	Start int
	End   int
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("%d-%d", w.Start, w.End)
}

func (w TimeWindow) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{w.Start, w.End})
}

func (w *TimeWindow) UnmarshalJSON(data []byte) error {
	var pair []int
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("time window must be a [start, end] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("time window must have 2 elements, got %d", len(pair))
	}
	if pair[0] > pair[1] {
		return fmt.Errorf("time window start %d after end %d", pair[0], pair[1])
	}
	w.Start, w.End = pair[0], pair[1]
	return nil
}

// WindowsEqual treats two absent windows as equal and absent as unequal to any present window.
func WindowsEqual(a, b *TimeWindow) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Full-range bounds of the extended panel.
const (
	FirstYear = 1996
	LastYear  = 2024
)

// AnalysisRecord is one pre-computed regression result.
type AnalysisRecord struct {
	ID                string            `json:"id"`
	Tier              int               `json:"tier,omitempty"`
	Description       string            `json:"description"`
	Outcome           Outcome           `json:"outcome"`
	Specification     Specification     `json:"specification"`
	StateFilter       StateFilter       `json:"state_filter,omitempty"`
	TimeWindow        *TimeWindow       `json:"time_window"`
	Weighted          bool              `json:"weighted"`
	ClusterLevel      ClusterLevel      `json:"cluster"`
	SampleRestriction SampleRestriction `json:"sample_restriction,omitempty"`
	FilterDesc        string            `json:"filter_desc,omitempty"`

	Coefficient     float64  `json:"coefficient"`
	StandardError   float64  `json:"std_error"`
	PValue          float64  `json:"p_value"`
	ConfidenceLower *float64 `json:"ci_lower"`
	ConfidenceUpper *float64 `json:"ci_upper"`

	ObservationCount  int    `json:"n_obs"`
	ClusterCount      int    `json:"n_clusters"`
	SpecificationDesc string `json:"specification_desc,omitempty"`
	ClusterDesc       string `json:"cluster_desc,omitempty"`
	Success           *bool  `json:"success,omitempty"`
}

// Successful reports whether the regression produced usable estimates.
// Records without a success flag are treated as successful.
func (r *AnalysisRecord) Successful() bool {
	return r.Success == nil || *r.Success
}

// Interval returns the 95% confidence interval, deriving it from the
// standard error when the bounds were not stored.
func (r *AnalysisRecord) Interval() (float64, float64) {
	lower := r.Coefficient - 1.96*r.StandardError
	upper := r.Coefficient + 1.96*r.StandardError
	if r.ConfidenceLower != nil {
		lower = *r.ConfidenceLower
	}
	if r.ConfidenceUpper != nil {
		upper = *r.ConfidenceUpper
	}
	return lower, upper
}

func (r *AnalysisRecord) Key() AnalysisKey {
	key := AnalysisKey{
		Outcome:           r.Outcome,
		Specification:     r.Specification,
		StateFilter:       r.StateFilter,
		Weighted:          r.Weighted,
		ClusterLevel:      r.ClusterLevel,
		SampleRestriction: r.SampleRestriction,
	}
	if r.TimeWindow != nil {
		key.HasWindow = true
		key.Window = *r.TimeWindow
	}
	return key
}

// Label is a one-line human summary used for plot rows and table captions.
func (r *AnalysisRecord) Label() string {
	parts := []string{r.Outcome.Label(), r.Specification.Label(), r.StateFilter.Label()}
	if r.TimeWindow != nil {
		parts = append(parts, r.TimeWindow.String())
	} else {
		parts = append(parts, fmt.Sprintf("%d-%d", FirstYear, LastYear))
	}
	if r.Weighted {
		parts = append(parts, "CVAP-weighted")
	}
	if r.ClusterLevel != "" && r.ClusterLevel != ClusterCounty {
		parts = append(parts, "clustered by "+strings.ReplaceAll(string(r.ClusterLevel), "_", "-"))
	}
	if r.SampleRestriction != RestrictionNone {
		parts = append(parts, strings.ReplaceAll(string(r.SampleRestriction), "_", " "))
	}
	return strings.Join(parts, ", ")
}

// AnalysisKey is the identity tuple of a record. It is comparable so it can key maps;
// HasWindow keeps an absent window distinct from any present one.
type AnalysisKey struct {
	Outcome           Outcome
	Specification     Specification
	StateFilter       StateFilter
	HasWindow         bool
	Window            TimeWindow
	Weighted          bool
	ClusterLevel      ClusterLevel
	SampleRestriction SampleRestriction
}

// BaselineKey returns the paper's headline specification for an outcome family.
func BaselineKey(outcome Outcome) (AnalysisKey, bool) {
	var base Outcome
	switch outcome.Family() {
	case FamilyVoteShare:
		base = OutcomeDemShare
	case FamilyTurnout:
		base = OutcomeTurnout
	default:
		return AnalysisKey{}, false
	}
	return AnalysisKey{
		Outcome:       base,
		Specification: SpecQuadratic,
		ClusterLevel:  ClusterCounty,
	}, true
}

type CorpusMetadata struct {
	TotalAnalyses int    `json:"total_analyses"`
	GeneratedDate string `json:"generated_date"`
	DataSource    string `json:"data_source,omitempty"`
}

// CorpusFile is the on-disk layout written by the precompute job.
type CorpusFile struct {
	Analyses []AnalysisRecord `json:"analyses"`
	Metadata CorpusMetadata   `json:"metadata"`
}
