package models

// QueryIntent holds only what a question explicitly asked for.
// Zero values mean "not specified".
type QueryIntent struct {
	Outcome           Outcome           `json:"outcome,omitempty"`
	Specification     Specification     `json:"specification,omitempty"`
	StateFilter       StateFilter       `json:"state_filter,omitempty"`
	TimeWindow        *TimeWindow       `json:"time_window,omitempty"`
	Weighted          *bool             `json:"weighted,omitempty"`
	ClusterLevel      ClusterLevel      `json:"cluster,omitempty"`
	SampleRestriction SampleRestriction `json:"sample_restriction,omitempty"`
}

// EffectiveOutcome falls back to the pooled vote share.
func (q QueryIntent) EffectiveOutcome() Outcome {
	if q.Outcome == "" {
		return OutcomeDemShare
	}
	return q.Outcome
}

func (q QueryIntent) EffectiveSpecification() Specification {
	if q.Specification == "" {
		return SpecBasic
	}
	return q.Specification
}

func (q QueryIntent) EffectiveCluster() ClusterLevel {
	if q.ClusterLevel == "" {
		return ClusterCounty
	}
	return q.ClusterLevel
}

func (q QueryIntent) IsWeighted() bool {
	return q.Weighted != nil && *q.Weighted
}

// Empty reports whether no rule fired.
func (q QueryIntent) Empty() bool {
	return q == QueryIntent{}
}
