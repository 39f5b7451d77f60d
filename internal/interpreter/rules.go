package interpreter

import (
	"regexp"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
)

// Dimension identifies which QueryIntent field a rule writes.
type Dimension int

const (
	DimStateFilter Dimension = iota
	DimTimeWindow
	DimOutcome
	DimSpecification
	DimWeighted
	DimCluster
	DimRestriction
)

func (d Dimension) String() string {
	switch d {
	case DimStateFilter:
		return "state_filter"
	case DimTimeWindow:
		return "time_window"
	case DimOutcome:
		return "outcome"
	case DimSpecification:
		return "specification"
	case DimWeighted:
		return "weighted"
	case DimCluster:
		return "cluster"
	case DimRestriction:
		return "sample_restriction"
	default:
		return "unknown"
	}
}

// Rule sets one intent field when its pattern matches.
//
// Overwrite rules may replace a value set earlier in the same pass; other rules
// only fill an empty field, so the first match wins.
type Rule struct {
	Name      string
	Dimension Dimension
	Pattern   *regexp.Regexp
	Overwrite bool
	Apply     func(*models.QueryIntent)
}

type stateNames struct {
	code   string
	name   string
	abbrev string
}

var states = []stateNames{
	{code: "CA", name: "california", abbrev: "CA"},
	{code: "UT", name: "utah", abbrev: "UT"},
	{code: "WA", name: "washington", abbrev: "WA"},
}

// statePattern matches the full state name in any case, or the upper-case postal
// abbreviation, so that words like "ut" or "ca" in ordinary prose do not fire.
func statePattern(prefix string, s stateNames) *regexp.Regexp {
	return regexp.MustCompile(prefix + `(?:(?i:` + s.name + `(?:\s+state)?)|` + s.abbrev + `)\b`)
}

const exclusionVerb = `(?i:\b(?:exclud(?:e|es|ed|ing)|excl\.?|without|drop(?:s|ped|ping)?|omit(?:s|ted|ting)?|leav(?:e|ing)\s+out|remov(?:e|ed|ing))\s+(?:the\s+)?(?:state\s+of\s+)?)`

func setFilter(f models.StateFilter) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) { q.StateFilter = f }
}

func setWindow(start, end int) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) { q.TimeWindow = &models.TimeWindow{Start: start, End: end} }
}

func setOutcome(o models.Outcome) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) { q.Outcome = o }
}

func setSpec(s models.Specification) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) { q.Specification = s }
}

func setWeighted(w bool) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) { q.Weighted = &w }
}

func setCluster(c models.ClusterLevel) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) { q.ClusterLevel = c }
}

func setRestriction(r models.SampleRestriction) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) { q.SampleRestriction = r }
}

// setCohort also narrows to California, the only state with VCA cohorts.
func setCohort(r models.SampleRestriction) func(*models.QueryIntent) {
	return func(q *models.QueryIntent) {
		q.SampleRestriction = r
		if q.StateFilter == models.FilterNone {
			q.StateFilter = models.FilterCAOnly
		}
	}
}

// DefaultRules returns the rule table in evaluation order. The order is part of
// the behaviour: exclusions before inclusions, specific outcomes before pooled.
func DefaultRules() []Rule {
	var rules []Rule

	// 1. state exclusions
	for _, s := range states {
		rules = append(rules, Rule{
			Name:      "exclude_" + s.code,
			Dimension: DimStateFilter,
			Pattern:   statePattern(exclusionVerb, s),
			Overwrite: true,
			Apply:     setFilter(models.StateFilter("exclude_" + s.code)),
		})
	}

	// 2. time windows
	rules = append(rules,
		Rule{
			Name:      "window_original",
			Dimension: DimTimeWindow,
			Pattern:   regexp.MustCompile(`(?i)\boriginal\b|\b1996\s*(?:-|–|to|through)\s*2018\b|\b(?:through|until|up\s+to|before)\s+2018\b`),
			Overwrite: true,
			Apply:     setWindow(1996, 2018),
		},
		Rule{
			Name:      "window_post_2018",
			Dimension: DimTimeWindow,
			Pattern:   regexp.MustCompile(`(?i)\bpost[-\s]?2018\b|\b(?:after|since)\s+2018\b|\b2018\s+onwards?\b|\b2018\s*(?:-|–|to|through)\s*2024\b`),
			Overwrite: true,
			Apply:     setWindow(2018, 2024),
		},
		Rule{
			Name:      "window_drop_2024",
			Dimension: DimTimeWindow,
			Pattern:   regexp.MustCompile(`(?i)\b(?:without|excluding|exclude|drop(?:ping)?|omit(?:ting)?)\s+(?:the\s+)?2024\b|\b1996\s*(?:-|–|to|through)\s*2022\b|\b(?:through|until)\s+2022\b`),
			Overwrite: true,
			Apply:     setWindow(1996, 2022),
		},
	)

	// 3. outcomes, most specific first
	rules = append(rules,
		Rule{
			Name:      "outcome_unsupported",
			Dimension: DimOutcome,
			Pattern:   regexp.MustCompile(`(?i)\bthird[-\s]?part(?:y|ies)\b|\bminor[-\s]part(?:y|ies)\b|\blibertarian|\bgreen\s+party\b|\bindependent\s+candidates?\b|\bballot\s+(?:measures?|propositions?)\b|\breferend(?:um|a)\b|\bregistration\b`),
			Apply:     setOutcome(models.OutcomeUnsupported),
		},
		Rule{
			Name:      "outcome_turnout",
			Dimension: DimOutcome,
			Pattern:   regexp.MustCompile(`(?i)\bturn[-\s]?out\b|\bparticipation\b|\bvoting\s+rates?\b|\bpeople\s+vot(?:e|ing)\b|\bmore\s+voters?\b`),
			Apply:     setOutcome(models.OutcomeTurnout),
		},
		Rule{
			Name:      "outcome_presidential",
			Dimension: DimOutcome,
			Pattern:   regexp.MustCompile(`(?i)\bpresiden(?:t|tial|cy)`),
			Apply:     setOutcome(models.OutcomeDemSharePres),
		},
		Rule{
			Name:      "outcome_governor",
			Dimension: DimOutcome,
			Pattern:   regexp.MustCompile(`(?i)\bgovern(?:or|ors|atorial)\b|\bgubernatorial\b`),
			Apply:     setOutcome(models.OutcomeDemShareGov),
		},
		Rule{
			Name:      "outcome_senate",
			Dimension: DimOutcome,
			Pattern:   regexp.MustCompile(`(?i)\bsenat(?:e|or|ors|orial)\b`),
			Apply:     setOutcome(models.OutcomeDemShareSen),
		},
		Rule{
			Name:      "outcome_vote_share",
			Dimension: DimOutcome,
			Pattern:   regexp.MustCompile(`(?i)\bvote\s+shares?\b|\bpartisan(?:ship)?\b|\bdemocrat(?:s|ic)?\b|\bdem\s+share\b|\bpooled\b`),
			Apply:     setOutcome(models.OutcomeDemShare),
		},
	)

	// 4. specifications
	rules = append(rules,
		Rule{
			Name:      "spec_linear",
			Dimension: DimSpecification,
			Pattern:   regexp.MustCompile(`(?i)\blinear\b`),
			Apply:     setSpec(models.SpecLinear),
		},
		Rule{
			Name:      "spec_quadratic",
			Dimension: DimSpecification,
			Pattern:   regexp.MustCompile(`(?i)\bquad(?:ratic)?\b`),
			Apply:     setSpec(models.SpecQuadratic),
		},
		Rule{
			Name:      "spec_basic",
			Dimension: DimSpecification,
			Pattern:   regexp.MustCompile(`(?i)\bbasic\b|\bsimple\b|\bno\s+trends?\b|\bwithout\s+trends?\b`),
			Apply:     setSpec(models.SpecBasic),
		},
	)

	// 5. weighting
	rules = append(rules,
		Rule{
			Name:      "weighted",
			Dimension: DimWeighted,
			Pattern:   regexp.MustCompile(`(?i)(?:^|[^-\w])weight(?:ed|ing|s)?\b|\bpopulation\b|\bcvap\b`),
			Overwrite: true,
			Apply:     setWeighted(true),
		},
		Rule{
			Name:      "unweighted",
			Dimension: DimWeighted,
			Pattern:   regexp.MustCompile(`(?i)\bun-?weighted\b|\bwithout\s+weight(?:s|ing)?\b|\bno\s+weight(?:s|ing)?\b`),
			Overwrite: true,
			Apply:     setWeighted(false),
		},
	)

	// 6. standard error clustering
	rules = append(rules,
		Rule{
			Name:      "cluster_state_year",
			Dimension: DimCluster,
			Pattern:   regexp.MustCompile(`(?i)\bstate[-\s×x]*year\s+(?:level\s+)?clust|\bclust\w*\s+(?:by|at|on)\s+(?:the\s+)?state[-\s×x]*year\b`),
			Apply:     setCluster(models.ClusterStateYear),
		},
		Rule{
			Name:      "cluster_state",
			Dimension: DimCluster,
			Pattern:   regexp.MustCompile(`(?i)\bstate[-\s]+(?:level\s+)?clust|\bclust\w*\s+(?:by|at|on)\s+(?:the\s+)?state\b`),
			Apply:     setCluster(models.ClusterState),
		},
		Rule{
			Name:      "cluster_county",
			Dimension: DimCluster,
			Pattern:   regexp.MustCompile(`(?i)\bcounty[-\s]+(?:level\s+)?clust|\bclust\w*\s+(?:by|at|on)\s+(?:the\s+)?county\b`),
			Apply:     setCluster(models.ClusterCounty),
		},
	)

	// 7. tier-2 subsamples
	rules = append(rules,
		Rule{
			Name:      "restrict_large",
			Dimension: DimRestriction,
			Pattern:   regexp.MustCompile(`(?i)\b(?:large|larger|largest|big|biggest)\s+counties\b`),
			Apply:     setRestriction(models.RestrictionExcludeLarge),
		},
		Rule{
			Name:      "restrict_small",
			Dimension: DimRestriction,
			Pattern:   regexp.MustCompile(`(?i)\b(?:small|smaller|smallest|tiny)\s+counties\b`),
			Apply:     setRestriction(models.RestrictionExcludeSmall),
		},
	)
	for _, cohort := range []struct {
		year        string
		restriction models.SampleRestriction
	}{
		{"2018", models.RestrictionVCA2018},
		{"2020", models.RestrictionVCA2020},
		{"2022", models.RestrictionVCA2022},
		{"2024", models.RestrictionVCA2024},
	} {
		rules = append(rules, Rule{
			Name:      "restrict_vca_" + cohort.year,
			Dimension: DimRestriction,
			Pattern:   regexp.MustCompile(`(?i)\b` + cohort.year + `\s+(?:vca\s+)?cohort\b|\bvca\s+(?:adopters?\s+(?:in|from)\s+)?` + cohort.year + `\b`),
			Apply:     setCohort(cohort.restriction),
		})
	}

	// 8. plain state inclusion, only when nothing above set a filter
	for _, s := range states {
		rules = append(rules, Rule{
			Name:      "only_" + s.code,
			Dimension: DimStateFilter,
			Pattern:   statePattern(`\b`, s),
			Apply:     setFilter(models.StateFilter(s.code)),
		})
	}

	return rules
}
