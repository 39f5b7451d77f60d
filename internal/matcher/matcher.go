// Package matcher picks the corpus record that best fits a QueryIntent using a
// fixed additive score.
package matcher

import "github.com/Ayash-Bera/vbm-explorer/internal/models"

const (
	// MaxScore normalises scores into a confidence. A record matching every set
	// dimension can score above it; Confidence clamps.
	MaxScore = 30

	// ConfidenceThreshold is inclusive.
	ConfidenceThreshold = 0.5
)

// Source is anything that can enumerate analysis records in a stable order.
type Source interface {
	Each(fn func(models.AnalysisRecord) bool)
}

// Result is the outcome of one match. Record is nil when no candidate existed.
type Result struct {
	Record     *models.AnalysisRecord
	Score      int
	Confidence float64
}

func (r Result) Confident() bool {
	return r.Record != nil && r.Confidence >= ConfidenceThreshold
}

// Score adds up the per-dimension points for rec against q.
func Score(q models.QueryIntent, rec *models.AnalysisRecord) int {
	score := 0

	if q.StateFilter != models.FilterNone && q.StateFilter == rec.StateFilter {
		score += 10
	} else if q.StateFilter == models.FilterNone && rec.StateFilter == models.FilterNone {
		score += 2
	}

	if models.WindowsEqual(q.TimeWindow, rec.TimeWindow) {
		score += 10
	} else if q.TimeWindow == nil && rec.TimeWindow == nil {
		score += 2
	}

	if q.Outcome != "" && q.Outcome == rec.Outcome {
		score += 10
	} else if q.Outcome == "" && rec.Outcome == models.OutcomeDemShare {
		score++
	}

	switch {
	case q.IsWeighted() && rec.Weighted:
		score += 5
	case !q.IsWeighted() && !rec.Weighted:
		score++
	}

	if rec.Specification == q.EffectiveSpecification() {
		score += 3
	}

	return score
}

// Candidate reports whether rec is eligible for q at all. Scoring only ranks
// records that share the intent's outcome family, cluster level and subsample.
func Candidate(q models.QueryIntent, rec *models.AnalysisRecord) bool {
	family := q.EffectiveOutcome().Family()
	if family == models.FamilyNone {
		return false
	}
	return rec.Successful() &&
		rec.Outcome.Family() == family &&
		rec.ClusterLevel == q.EffectiveCluster() &&
		rec.SampleRestriction == q.SampleRestriction
}

// Match scans src in order and keeps the first record with the highest score.
func Match(q models.QueryIntent, src Source) Result {
	var (
		best      models.AnalysisRecord
		bestScore = -1
	)
	src.Each(func(rec models.AnalysisRecord) bool {
		if !Candidate(q, &rec) {
			return true
		}
		if s := Score(q, &rec); s > bestScore {
			best, bestScore = rec, s
		}
		return true
	})

	if bestScore < 0 {
		return Result{}
	}
	return Result{
		Record:     &best,
		Score:      bestScore,
		Confidence: Confidence(bestScore),
	}
}

// Confidence normalises a score into [0, 1].
func Confidence(score int) float64 {
	c := float64(score) / MaxScore
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}
