package narration

import (
	"fmt"
	"strings"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/dustin/go-humanize"
)

const describeSystem = `You explain results from a county-level study of universal vote-by-mail adoption in California, Utah and Washington, 1996-2024.
Answer the user's question in two or three plain sentences for a general audience.
Use only the numbers given. Coefficients are shares, so 0.01 means one percentage point.
Say whether the estimate is statistically distinguishable from zero and how it compares with the baseline. Do not speculate about mechanisms.`

const fallbackSystem = `You help users explore robustness checks from a study of universal vote-by-mail adoption in California, Utah and Washington, 1996-2024.
The user's question did not match any precomputed analysis. In two sentences, say so plainly and suggest one or two questions that can be answered.
Available variations: excluding one state or showing one state only; presidential, governor, senate or pooled Democratic vote share; turnout; linear or quadratic county trends; population weighting; the original 1996-2018 window, post-2018 years, or dropping 2024; clustering by state or state-year; dropping the largest or smallest counties; California VCA adoption cohorts.
Never invent estimates.`

// FallbackText is shown when no provider could produce a fallback reply.
const FallbackText = "That question doesn't match any of the precomputed analyses. Try asking about excluding a state, a single election type, turnout, time trends, or the post-2018 period."

func describeFacts(question string, rec, baseline *models.AnalysisRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n\n", strings.TrimSpace(question))
	fmt.Fprintf(&b, "Matched analysis: %s\n", rec.Label())
	if rec.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", rec.Description)
	}
	writeEstimate(&b, "Estimate", rec)
	fmt.Fprintf(&b, "Observations: %s county-elections, %s clusters\n",
		humanize.Comma(int64(rec.ObservationCount)), humanize.Comma(int64(rec.ClusterCount)))
	if baseline != nil && baseline.ID != rec.ID {
		fmt.Fprintf(&b, "\nBaseline (%s):\n", baseline.Label())
		writeEstimate(&b, "Estimate", baseline)
	}
	return b.String()
}

func writeEstimate(b *strings.Builder, label string, rec *models.AnalysisRecord) {
	lower, upper := rec.Interval()
	fmt.Fprintf(b, "%s: %.4f (%.1f percentage points), SE %.4f, p = %.3f, 95%% CI [%.4f, %.4f]\n",
		label, rec.Coefficient, rec.Coefficient*100, rec.StandardError, rec.PValue, lower, upper)
}

func fallbackFacts(question string, intent models.QueryIntent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Question: %s\n", strings.TrimSpace(question))
	if dims := describeIntent(intent); len(dims) > 0 {
		fmt.Fprintf(&b, "Recognised: %s\n", strings.Join(dims, "; "))
	} else {
		b.WriteString("Recognised: nothing\n")
	}
	if intent.Outcome == models.OutcomeUnsupported {
		b.WriteString("The outcome asked about is not one the study estimates.\n")
	}
	return b.String()
}

func describeIntent(q models.QueryIntent) []string {
	var dims []string
	if q.Outcome != "" && q.Outcome != models.OutcomeUnsupported {
		dims = append(dims, "outcome "+q.Outcome.Label())
	}
	if q.Specification != "" {
		dims = append(dims, "specification "+q.Specification.Label())
	}
	if q.StateFilter != models.FilterNone {
		dims = append(dims, "sample "+q.StateFilter.Label())
	}
	if q.TimeWindow != nil {
		dims = append(dims, "years "+q.TimeWindow.String())
	}
	if q.Weighted != nil {
		if *q.Weighted {
			dims = append(dims, "population weighted")
		} else {
			dims = append(dims, "unweighted")
		}
	}
	if q.ClusterLevel != "" {
		dims = append(dims, "clustered by "+string(q.ClusterLevel))
	}
	if q.SampleRestriction != models.RestrictionNone {
		dims = append(dims, "subsample "+string(q.SampleRestriction))
	}
	return dims
}

// normalizeQuestion folds case and whitespace for cache keys.
func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}
