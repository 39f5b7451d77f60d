package matcher

import (
	"testing"

	"github.com/Ayash-Bera/vbm-explorer/internal/corpus"
	"github.com/Ayash-Bera/vbm-explorer/internal/corpus/corpustest"
	"github.com/Ayash-Bera/vbm-explorer/internal/interpreter"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool {
	return &b
}

func TestMatch_Scenarios(t *testing.T) {
	c := corpustest.Load(t)

	tests := []struct {
		name      string
		query     string
		wantID    string
		wantScore int
		confident bool
	}{
		{name: "excluded california", query: "What if we excluded California?", wantID: "analysis_00003", wantScore: 25, confident: true},
		{name: "presidential only", query: "Show me this with only presidential elections", wantID: "analysis_00006", wantScore: 26, confident: true},
		{name: "after 2018", query: "Did the effect change after 2018?", wantID: "analysis_00002", wantScore: 17, confident: true},
		{name: "no cues", query: "tell me about the results", wantID: "analysis_00000", wantScore: 17, confident: true},
		{name: "turnout", query: "what about turnout?", wantID: "analysis_00007", wantScore: 26, confident: true},
		{name: "quadratic", query: "quadratic trends", wantID: "analysis_00004", wantScore: 17, confident: true},
		{name: "state clustering", query: "errors clustered by state", wantID: "analysis_00009", wantScore: 17, confident: true},
		{name: "large counties", query: "drop the largest counties", wantID: "analysis_00010", wantScore: 17, confident: true},
		{name: "large counties quadratic", query: "quadratic trends without the largest counties", wantID: "analysis_00012", wantScore: 17, confident: true},
		{name: "vca cohort", query: "turnout for the 2020 VCA cohort", wantID: "analysis_00013", wantScore: 34, confident: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Match(interpreter.Interpret(tt.query), c)
			require.NotNil(t, res.Record)
			assert.Equal(t, tt.wantID, res.Record.ID)
			assert.Equal(t, tt.wantScore, res.Score)
			assert.Equal(t, tt.confident, res.Confident())
		})
	}
}

func TestMatch_UnsupportedHasNoMatch(t *testing.T) {
	c := corpustest.Load(t)

	intent := interpreter.Interpret("What about third-party vote share?")
	res := Match(intent, c)

	assert.Nil(t, res.Record)
	assert.Zero(t, res.Confidence)
	assert.False(t, res.Confident())
}

func TestMatch_PresidentialDefaults(t *testing.T) {
	intent := interpreter.Interpret("Show me this with only presidential elections")
	assert.Equal(t, models.SpecBasic, intent.EffectiveSpecification())
	assert.Equal(t, models.FilterNone, intent.StateFilter)
	assert.Nil(t, intent.TimeWindow)
}

func TestMatch_AfterDefaultsToPooled(t *testing.T) {
	intent := interpreter.Interpret("Did the effect change after 2018?")
	assert.Equal(t, models.OutcomeDemShare, intent.EffectiveOutcome())
}

func TestMatch_SkipsUnsuccessful(t *testing.T) {
	c := corpustest.Load(t)

	res := Match(interpreter.Interpret("senate races in Utah"), c)
	require.NotNil(t, res.Record)
	assert.NotEqual(t, "analysis_00011", res.Record.ID)
	assert.True(t, res.Record.Successful())
}

func TestMatch_Idempotent(t *testing.T) {
	c := corpustest.Load(t)
	intent := interpreter.Interpret("quadratic trends excluding California")

	first := Match(intent, c)
	second := Match(intent, c)
	assert.Equal(t, first, second)
}

func TestMatch_TieKeepsFirstRecord(t *testing.T) {
	records := []models.AnalysisRecord{
		{ID: "first", Outcome: models.OutcomeDemShare, Specification: models.SpecLinear, StateFilter: models.FilterCAOnly},
		{ID: "second", Outcome: models.OutcomeDemShare, Specification: models.SpecLinear, StateFilter: models.FilterUTOnly},
	}
	c, err := corpus.New(records, models.CorpusMetadata{})
	require.NoError(t, err)

	res := Match(models.QueryIntent{}, c)
	require.NotNil(t, res.Record)
	assert.Equal(t, "first", res.Record.ID)
}

func TestMatch_ThresholdIsInclusive(t *testing.T) {
	records := []models.AnalysisRecord{
		{ID: "full", Outcome: models.OutcomeDemShare, Specification: models.SpecBasic},
	}
	c, err := corpus.New(records, models.CorpusMetadata{})
	require.NoError(t, err)

	// window 10, outcome fallback 1, unweighted 1, basic 3
	res := Match(models.QueryIntent{StateFilter: models.FilterExcludeCA}, c)
	require.NotNil(t, res.Record)
	assert.Equal(t, 15, res.Score)
	assert.Equal(t, 0.5, res.Confidence)
	assert.True(t, res.Confident())

	res = Match(models.QueryIntent{StateFilter: models.FilterExcludeCA, Specification: models.SpecLinear}, c)
	assert.Equal(t, 12, res.Score)
	assert.False(t, res.Confident())
}

func TestScore_AbsentWindowsAreEqual(t *testing.T) {
	rec := &models.AnalysisRecord{Outcome: models.OutcomeTurnout, Specification: models.SpecLinear, Weighted: true}
	q := models.QueryIntent{StateFilter: models.FilterCAOnly, Outcome: models.OutcomeDemShare}

	assert.Equal(t, 10, Score(q, rec))

	rec.TimeWindow = &models.TimeWindow{Start: 1996, End: 2024}
	assert.Equal(t, 0, Score(q, rec))
}

func TestScore_Monotonic(t *testing.T) {
	rec := &models.AnalysisRecord{
		Outcome:       models.OutcomeDemShareGov,
		Specification: models.SpecQuadratic,
		StateFilter:   models.FilterExcludeUT,
		TimeWindow:    &models.TimeWindow{Start: 2018, End: 2024},
		Weighted:      true,
	}

	steps := []models.QueryIntent{
		{},
		{Specification: models.SpecQuadratic},
		{Specification: models.SpecQuadratic, Weighted: boolPtr(true)},
		{Specification: models.SpecQuadratic, Weighted: boolPtr(true), Outcome: models.OutcomeDemShareGov},
		{Specification: models.SpecQuadratic, Weighted: boolPtr(true), Outcome: models.OutcomeDemShareGov, TimeWindow: &models.TimeWindow{Start: 2018, End: 2024}},
		{Specification: models.SpecQuadratic, Weighted: boolPtr(true), Outcome: models.OutcomeDemShareGov, TimeWindow: &models.TimeWindow{Start: 2018, End: 2024}, StateFilter: models.FilterExcludeUT},
	}

	prev := -1
	for i, q := range steps {
		s := Score(q, rec)
		assert.GreaterOrEqual(t, s, prev, "step %d", i)
		prev = s
	}
	assert.Equal(t, 38, prev)
	assert.Equal(t, 1.0, Confidence(prev))
}

func TestCandidate(t *testing.T) {
	rec := &models.AnalysisRecord{Outcome: models.OutcomeDemSharePres, Specification: models.SpecBasic, ClusterLevel: models.ClusterCounty}

	assert.True(t, Candidate(models.QueryIntent{}, rec))
	assert.False(t, Candidate(models.QueryIntent{Outcome: models.OutcomeTurnout}, rec))
	assert.False(t, Candidate(models.QueryIntent{Outcome: models.OutcomeUnsupported}, rec))
	assert.False(t, Candidate(models.QueryIntent{ClusterLevel: models.ClusterState}, rec))
	assert.False(t, Candidate(models.QueryIntent{SampleRestriction: models.RestrictionExcludeSmall}, rec))

	failed := false
	rec.Success = &failed
	assert.False(t, Candidate(models.QueryIntent{}, rec))
}

func TestConfidence_Clamped(t *testing.T) {
	assert.Equal(t, 0.0, Confidence(-3))
	assert.Equal(t, 1.0, Confidence(31))
	assert.InDelta(t, 0.8333, Confidence(25), 1e-4)
}
