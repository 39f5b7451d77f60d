// Package presenter turns analysis records into paper-style table cells,
// specification tables and coefficient plots.
package presenter

import (
	"fmt"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
)

// Stars returns the significance marker for a p-value.
func Stars(p float64) string {
	switch {
	case p < 0.01:
		return "***"
	case p < 0.05:
		return "**"
	case p < 0.1:
		return "*"
	default:
		return ""
	}
}

// FormatCell renders the coefficient to three decimals with stars and the
// standard error in parentheses. Absent or failed records render as missing.
func FormatCell(rec *models.AnalysisRecord) models.Cell {
	if rec == nil || !rec.Successful() {
		return models.Cell{Coefficient: models.MissingGlyph, Missing: true}
	}
	return models.Cell{
		Coefficient: fmt.Sprintf("%.3f", rec.Coefficient),
		StdError:    fmt.Sprintf("(%.3f)", rec.StandardError),
		Stars:       Stars(rec.PValue),
	}
}
