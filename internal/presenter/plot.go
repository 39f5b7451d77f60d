package presenter

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
)

// BuildComparison puts the fixed baseline first and the matched record second
// on one scale covering both intervals and zero. Missing or failed records are
// left out, so a plot may have one row or none.
func BuildComparison(baseline, selected *models.AnalysisRecord) models.Plot {
	var p models.Plot
	if baseline != nil && baseline.Successful() {
		p.Rows = append(p.Rows, row(baseline, true))
	}
	if selected != nil && selected.Successful() {
		p.Rows = append(p.Rows, row(selected, false))
	}

	for _, r := range p.Rows {
		p.Min = math.Min(p.Min, r.Lower)
		p.Max = math.Max(p.Max, r.Upper)
	}
	return p
}

func row(rec *models.AnalysisRecord, baseline bool) models.PlotRow {
	lower, upper := rec.Interval()
	label := rec.Specification.Label() + ", " + rec.StateFilter.Label()
	if baseline {
		label = "Baseline: " + rec.Specification.Label()
	}
	return models.PlotRow{
		Label:      label,
		Estimate:   rec.Coefficient,
		Lower:      lower,
		Upper:      upper,
		Baseline:   baseline,
		AnalysisID: rec.ID,
	}
}

const (
	marginLeft   = 200
	marginRight  = 20
	marginTop    = 16
	marginBottom = 28
)

// RenderSVG draws the plot as a standalone SVG document.
func RenderSVG(p models.Plot, width, height int) string {
	lo, hi := p.Min, p.Max
	if hi-lo == 0 {
		lo, hi = -1, 1
	}
	pad := (hi - lo) * 0.05
	lo, hi = lo-pad, hi+pad

	plotW := float64(width - marginLeft - marginRight)
	x := func(v float64) float64 {
		return float64(marginLeft) + (v-lo)/(hi-lo)*plotW
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">`, width, height, width, height)
	b.WriteString("\n")

	zero := x(0)
	fmt.Fprintf(&b, `<line class="zero" x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#888" stroke-dasharray="4 3"/>`,
		zero, marginTop, zero, height-marginBottom)
	b.WriteString("\n")

	if len(p.Rows) > 0 {
		rowH := float64(height-marginTop-marginBottom) / float64(len(p.Rows))
		for i, r := range p.Rows {
			y := float64(marginTop) + rowH*(float64(i)+0.5)
			color := "#1f77b4"
			if r.Baseline {
				color = "#555"
			}
			fmt.Fprintf(&b, `<text x="%d" y="%.1f" text-anchor="end" dominant-baseline="middle">%s</text>`,
				marginLeft-8, y, html.EscapeString(r.Label))
			b.WriteString("\n")
			fmt.Fprintf(&b, `<line class="ci" x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"/>`,
				x(r.Lower), y, x(r.Upper), y, color)
			b.WriteString("\n")
			fmt.Fprintf(&b, `<circle class="estimate" cx="%.1f" cy="%.1f" r="4" fill="%s"/>`, x(r.Estimate), y, color)
			b.WriteString("\n")
		}
	}

	axisY := height - marginBottom + 16
	seen := make(map[float64]bool, 3)
	for _, tick := range []float64{p.Min, 0, p.Max} {
		if seen[tick] {
			continue
		}
		seen[tick] = true
		fmt.Fprintf(&b, `<text x="%.1f" y="%d" text-anchor="middle">%.3f</text>`, x(tick), axisY, tick)
		b.WriteString("\n")
	}

	b.WriteString("</svg>\n")
	return b.String()
}
