package interpreter

import (
	"testing"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/stretchr/testify/assert"
)

func window(start, end int) *models.TimeWindow {
	return &models.TimeWindow{Start: start, End: end}
}

func boolPtr(b bool) *bool {
	return &b
}

func TestInterpret(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  models.QueryIntent
	}{
		{
			name:  "excluded california",
			input: "What if we excluded California?",
			want:  models.QueryIntent{StateFilter: models.FilterExcludeCA},
		},
		{
			name:  "excluding abbreviation",
			input: "excl. WA please",
			want:  models.QueryIntent{StateFilter: models.FilterExcludeWA},
		},
		{
			name:  "state only",
			input: "Show me California only",
			want:  models.QueryIntent{StateFilter: models.FilterCAOnly},
		},
		{
			name:  "abbreviation only",
			input: "What about just UT?",
			want:  models.QueryIntent{StateFilter: models.FilterUTOnly},
		},
		{
			name:  "lowercase prose is not an abbreviation",
			input: "Can you show the basic results?",
			want:  models.QueryIntent{Specification: models.SpecBasic},
		},
		{
			name:  "presidential only",
			input: "Show me this with only presidential elections",
			want:  models.QueryIntent{Outcome: models.OutcomeDemSharePres},
		},
		{
			name:  "after 2018",
			input: "Did the effect change after 2018?",
			want:  models.QueryIntent{TimeWindow: window(2018, 2024)},
		},
		{
			name:  "original period",
			input: "Use the original sample period",
			want:  models.QueryIntent{TimeWindow: window(1996, 2018)},
		},
		{
			name:  "explicit 1996-2018",
			input: "restrict to 1996-2018",
			want:  models.QueryIntent{TimeWindow: window(1996, 2018)},
		},
		{
			name:  "without 2024",
			input: "What happens without 2024?",
			want:  models.QueryIntent{TimeWindow: window(1996, 2022)},
		},
		{
			name:  "governor",
			input: "gubernatorial races",
			want:  models.QueryIntent{Outcome: models.OutcomeDemShareGov},
		},
		{
			name:  "senate",
			input: "Senate elections in Washington",
			want:  models.QueryIntent{Outcome: models.OutcomeDemShareSen, StateFilter: models.FilterWAOnly},
		},
		{
			name:  "turnout beats presidential",
			input: "turnout in presidential elections",
			want:  models.QueryIntent{Outcome: models.OutcomeTurnout},
		},
		{
			name:  "turnout beats vote share",
			input: "does it change turnout or vote share",
			want:  models.QueryIntent{Outcome: models.OutcomeTurnout},
		},
		{
			name:  "third party is unsupported",
			input: "What about third-party vote share?",
			want:  models.QueryIntent{Outcome: models.OutcomeUnsupported},
		},
		{
			name:  "pooled partisan outcome",
			input: "partisan effects with linear trends",
			want:  models.QueryIntent{Outcome: models.OutcomeDemShare, Specification: models.SpecLinear},
		},
		{
			name:  "first specification wins",
			input: "linear or quadratic trends",
			want:  models.QueryIntent{Specification: models.SpecLinear},
		},
		{
			name:  "quad and population weights",
			input: "quad trends with population weights",
			want:  models.QueryIntent{Specification: models.SpecQuadratic, Weighted: boolPtr(true)},
		},
		{
			name:  "unweighted",
			input: "unweighted linear model",
			want:  models.QueryIntent{Specification: models.SpecLinear, Weighted: boolPtr(false)},
		},
		{
			name:  "without weights overrides weights",
			input: "run it without weights",
			want:  models.QueryIntent{Weighted: boolPtr(false)},
		},
		{
			name:  "state-level clustering",
			input: "state-level clustering",
			want:  models.QueryIntent{ClusterLevel: models.ClusterState},
		},
		{
			name:  "clustered by state",
			input: "errors clustered by state",
			want:  models.QueryIntent{ClusterLevel: models.ClusterState},
		},
		{
			name:  "clustered by state-year",
			input: "errors clustered by state-year",
			want:  models.QueryIntent{ClusterLevel: models.ClusterStateYear},
		},
		{
			name:  "largest counties",
			input: "exclude the largest counties",
			want:  models.QueryIntent{SampleRestriction: models.RestrictionExcludeLarge},
		},
		{
			name:  "small counties",
			input: "drop small counties",
			want:  models.QueryIntent{SampleRestriction: models.RestrictionExcludeSmall},
		},
		{
			name:  "vca cohort implies california",
			input: "only the 2020 VCA cohort",
			want:  models.QueryIntent{SampleRestriction: models.RestrictionVCA2020, StateFilter: models.FilterCAOnly},
		},
		{
			name:  "vca adopters from 2018 is a cohort not a window",
			input: "What about VCA adopters from 2018?",
			want:  models.QueryIntent{SampleRestriction: models.RestrictionVCA2018, StateFilter: models.FilterCAOnly},
		},
		{
			name:  "2018 onward",
			input: "only elections from 2018 onward",
			want:  models.QueryIntent{TimeWindow: window(2018, 2024)},
		},
		{
			name:  "empty",
			input: "",
			want:  models.QueryIntent{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Interpret(tt.input))
		})
	}
}

func TestInterpret_ExclusionDominatesInclusion(t *testing.T) {
	for _, input := range []string{
		"excluding California",
		"California results excluding California",
		"what about Utah, but excluding California",
	} {
		got := Interpret(input)
		assert.Equal(t, models.FilterExcludeCA, got.StateFilter, input)
	}
}

func TestInterpret_LaterExclusionOverwrites(t *testing.T) {
	got := Interpret("exclude Utah, no wait, exclude Washington")
	assert.Equal(t, models.FilterExcludeWA, got.StateFilter)
}

func TestInterpret_LaterWindowOverwrites(t *testing.T) {
	got := Interpret("not the original window, show post-2018")
	assert.Equal(t, window(2018, 2024), got.TimeWindow)
}

func TestInterpret_Idempotent(t *testing.T) {
	input := "quadratic turnout excluding Utah after 2018 weighted"
	first := Interpret(input)
	second := Interpret(input)
	assert.Equal(t, first, second)
	assert.Equal(t, models.OutcomeTurnout, first.Outcome)
	assert.Equal(t, models.FilterExcludeUT, first.StateFilter)
	assert.Equal(t, window(2018, 2024), first.TimeWindow)
	assert.True(t, first.IsWeighted())
}

func TestInterpret_DoesNotShareWindowPointers(t *testing.T) {
	a := Interpret("after 2018")
	b := Interpret("after 2018")
	a.TimeWindow.Start = 1900
	assert.Equal(t, 2018, b.TimeWindow.Start)
}

func TestExplain(t *testing.T) {
	in := New(nil)
	fired := in.Explain("excluding California with linear trends")
	assert.Equal(t, []string{"exclude_CA", "spec_linear"}, fired)
}

func TestNew_CustomRules(t *testing.T) {
	rules := DefaultRules()
	var onlyOutcomes []Rule
	for _, r := range rules {
		if r.Dimension == DimOutcome {
			onlyOutcomes = append(onlyOutcomes, r)
		}
	}
	in := New(onlyOutcomes)
	got := in.Interpret("turnout excluding California")
	assert.Equal(t, models.QueryIntent{Outcome: models.OutcomeTurnout}, got)
}

func TestDimension_String(t *testing.T) {
	assert.Equal(t, "state_filter", DimStateFilter.String())
	assert.Equal(t, "sample_restriction", DimRestriction.String())
	assert.Equal(t, "unknown", Dimension(99).String())
}
