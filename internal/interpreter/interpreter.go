// Package interpreter turns a free-text question into a QueryIntent using an
// ordered table of regular-expression rules.
package interpreter

import (
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
)

type Interpreter struct {
	rules []Rule
}

// New builds an interpreter over the given rules; nil means DefaultRules.
func New(rules []Rule) *Interpreter {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Interpreter{rules: rules}
}

var defaultInterpreter = New(nil)

// Interpret applies the default rule table.
func Interpret(text string) models.QueryIntent {
	return defaultInterpreter.Interpret(text)
}

// Interpret runs every rule once, in order. It has no side effects.
func (in *Interpreter) Interpret(text string) models.QueryIntent {
	var q models.QueryIntent
	for _, r := range in.rules {
		if !r.Overwrite && isSet(&q, r.Dimension) {
			continue
		}
		if r.Pattern.MatchString(text) {
			r.Apply(&q)
		}
	}
	return q
}

// Explain lists the names of the rules that changed the intent, for debugging.
func (in *Interpreter) Explain(text string) []string {
	var (
		q     models.QueryIntent
		fired []string
	)
	for _, r := range in.rules {
		if !r.Overwrite && isSet(&q, r.Dimension) {
			continue
		}
		if r.Pattern.MatchString(text) {
			r.Apply(&q)
			fired = append(fired, r.Name)
		}
	}
	return fired
}

func isSet(q *models.QueryIntent, d Dimension) bool {
	switch d {
	case DimStateFilter:
		return q.StateFilter != models.FilterNone
	case DimTimeWindow:
		return q.TimeWindow != nil
	case DimOutcome:
		return q.Outcome != ""
	case DimSpecification:
		return q.Specification != ""
	case DimWeighted:
		return q.Weighted != nil
	case DimCluster:
		return q.ClusterLevel != ""
	case DimRestriction:
		return q.SampleRestriction != models.RestrictionNone
	}
	return false
}
