package presenter

import (
	"strings"
	"testing"

	"github.com/Ayash-Bera/vbm-explorer/internal/corpus/corpustest"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStars(t *testing.T) {
	tests := []struct {
		p    float64
		want string
	}{
		{0.004, "***"},
		{0.04, "**"},
		{0.08, "*"},
		{0.5, ""},
		{0.01, "**"},
		{0.1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stars(tt.p), "p=%v", tt.p)
	}
}

func TestFormatCell(t *testing.T) {
	c := corpustest.Load(t)
	rec, ok := c.ByID("analysis_00000")
	require.True(t, ok)

	cell := FormatCell(&rec)
	assert.False(t, cell.Missing)
	assert.Equal(t, "0.007", cell.Coefficient)
	assert.Equal(t, "(0.003)", cell.StdError)
	assert.Equal(t, "**", cell.Stars)
	assert.Equal(t, "0.007**\n(0.003)", cell.String())
}

func TestFormatCell_Missing(t *testing.T) {
	cell := FormatCell(nil)
	assert.True(t, cell.Missing)
	assert.Equal(t, models.MissingGlyph, cell.String())

	c := corpustest.Load(t)
	failed, ok := c.ByID("analysis_00011")
	require.True(t, ok)
	assert.True(t, FormatCell(&failed).Missing)
}

func TestBuildTable(t *testing.T) {
	c := corpustest.Load(t)
	rec, ok := c.ByID("analysis_00000")
	require.True(t, ok)

	tbl := BuildTable(c, &rec)
	require.Len(t, tbl.Columns, 3)
	assert.Equal(t, "Democratic vote share (pooled), full sample", tbl.Caption)

	assert.Equal(t, models.SpecBasic, tbl.Columns[0].Specification)
	assert.True(t, tbl.Columns[0].Selected)
	assert.Equal(t, "analysis_00000", tbl.Columns[0].AnalysisID)
	assert.Equal(t, "4,410", tbl.Columns[0].Observations)
	assert.Equal(t, "131", tbl.Columns[0].Clusters)

	assert.Equal(t, "analysis_00005", tbl.Columns[1].AnalysisID)
	assert.Equal(t, "*", tbl.Columns[1].Cell.Stars)
	assert.False(t, tbl.Columns[1].Selected)

	assert.Equal(t, "analysis_00004", tbl.Columns[2].AnalysisID)
	assert.Equal(t, "***", tbl.Columns[2].Cell.Stars)
}

func TestBuildTable_MissingSpecifications(t *testing.T) {
	c := corpustest.Load(t)
	rec, ok := c.ByID("analysis_00003")
	require.True(t, ok)

	tbl := BuildTable(c, &rec)
	require.Len(t, tbl.Columns, 3)
	assert.Equal(t, "Democratic vote share (pooled), excluding CA", tbl.Caption)
	assert.False(t, tbl.Columns[0].Cell.Missing)
	for _, col := range tbl.Columns[1:] {
		assert.True(t, col.Cell.Missing)
		assert.Equal(t, models.MissingGlyph, col.Observations)
		assert.Empty(t, col.AnalysisID)
	}
}

func TestBuildComparison(t *testing.T) {
	c := corpustest.Load(t)
	baseline, ok := c.Baseline(models.OutcomeDemShare)
	require.True(t, ok)
	selected, ok := c.ByID("analysis_00003")
	require.True(t, ok)

	p := BuildComparison(&baseline, &selected)
	require.Len(t, p.Rows, 2)
	assert.True(t, p.Rows[0].Baseline)
	assert.Equal(t, "analysis_00004", p.Rows[0].AnalysisID)
	assert.False(t, p.Rows[1].Baseline)
	assert.Equal(t, "analysis_00003", p.Rows[1].AnalysisID)

	assert.InDelta(t, 0.0031-1.96*0.0027, p.Min, 1e-9)
	assert.InDelta(t, 0.0045+1.96*0.0021, p.Max, 1e-9)
}

func TestBuildComparison_DomainIncludesZero(t *testing.T) {
	c := corpustest.Load(t)
	rec, ok := c.ByID("analysis_00007")
	require.True(t, ok)

	p := BuildComparison(nil, &rec)
	require.Len(t, p.Rows, 1)
	assert.Equal(t, 0.0, p.Min)
	assert.Greater(t, p.Max, rec.Coefficient)
}

func TestBuildComparison_SkipsMissing(t *testing.T) {
	c := corpustest.Load(t)
	baseline, _ := c.Baseline(models.OutcomeDemShare)
	failed, _ := c.ByID("analysis_00011")

	p := BuildComparison(&baseline, &failed)
	require.Len(t, p.Rows, 1)
	assert.True(t, p.Rows[0].Baseline)

	empty := BuildComparison(nil, nil)
	assert.Empty(t, empty.Rows)
}

func TestRenderSVG(t *testing.T) {
	c := corpustest.Load(t)
	baseline, _ := c.Baseline(models.OutcomeDemShare)
	selected, _ := c.ByID("analysis_00003")

	svg := RenderSVG(BuildComparison(&baseline, &selected), 640, 160)
	assert.True(t, strings.HasPrefix(svg, "<svg "))
	assert.Equal(t, 2, strings.Count(svg, "<circle"))
	assert.Equal(t, 2, strings.Count(svg, `class="ci"`))
	assert.Equal(t, 1, strings.Count(svg, `class="zero"`))
	assert.Contains(t, svg, "Baseline: Quadratic trends")
}

func TestRenderSVG_EscapesLabels(t *testing.T) {
	p := models.Plot{
		Rows: []models.PlotRow{{Label: "A & <B>", Estimate: 0.1, Lower: 0, Upper: 0.2}},
		Max:  0.2,
	}
	svg := RenderSVG(p, 400, 100)
	assert.Contains(t, svg, "A &amp; &lt;B&gt;")
	assert.NotContains(t, svg, "<B>")
}

func TestRenderSVG_Empty(t *testing.T) {
	svg := RenderSVG(models.Plot{}, 400, 100)
	assert.Contains(t, svg, `class="zero"`)
	assert.NotContains(t, svg, "<circle")
}

func TestRenderText(t *testing.T) {
	c := corpustest.Load(t)
	rec, _ := c.ByID("analysis_00000")
	tbl := BuildTable(c, &rec)

	out := RenderText(tbl, ASCII)
	assert.Contains(t, out, "Democratic vote share")
	assert.Contains(t, out, "0.007**")
	assert.Contains(t, out, "Basic [*]")
	assert.Contains(t, out, "4,410")

	md := RenderText(tbl, Markdown)
	assert.Contains(t, md, "|")
	assert.Contains(t, md, "4,410")
}
