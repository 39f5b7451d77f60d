package models

// MissingGlyph is shown in place of an estimate that does not exist.
const MissingGlyph = "—"

// Cell is a paper-style regression table entry.
type Cell struct {
	Coefficient string `json:"coefficient"`
	StdError    string `json:"std_error"`
	Stars       string `json:"stars"`
	Missing     bool   `json:"missing"`
}

func (c Cell) String() string {
	if c.Missing {
		return MissingGlyph
	}
	return c.Coefficient + c.Stars + "\n" + c.StdError
}

type TableColumn struct {
	Specification Specification `json:"specification"`
	Label         string        `json:"label"`
	Cell          Cell          `json:"cell"`
	Observations  string        `json:"observations"`
	Clusters      string        `json:"clusters"`
	AnalysisID    string        `json:"analysis_id,omitempty"`
	Selected      bool          `json:"selected"`
}

// Table compares the three specifications for one outcome and sample.
type Table struct {
	Caption string        `json:"caption"`
	Columns []TableColumn `json:"columns"`
}

type PlotRow struct {
	Label      string  `json:"label"`
	Estimate   float64 `json:"estimate"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Baseline   bool    `json:"baseline"`
	AnalysisID string  `json:"analysis_id"`
}

// Plot is a coefficient plot on a shared horizontal scale [Min, Max] that always contains zero.
type Plot struct {
	Rows []PlotRow `json:"rows"`
	Min  float64   `json:"min"`
	Max  float64   `json:"max"`
}
