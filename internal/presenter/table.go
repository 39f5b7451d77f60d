package presenter

import (
	"strings"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Lookup finds a record by its identity key.
type Lookup interface {
	Lookup(key models.AnalysisKey) (models.AnalysisRecord, bool)
}

// BuildTable lays out the three specifications for the selected record's
// outcome and sample, one column each, flagging the selected one.
func BuildTable(src Lookup, selected *models.AnalysisRecord) models.Table {
	t := models.Table{Caption: caption(selected)}
	for _, spec := range models.Specifications {
		col := models.TableColumn{
			Specification: spec,
			Label:         spec.Label(),
			Observations:  models.MissingGlyph,
			Clusters:      models.MissingGlyph,
			Selected:      spec == selected.Specification,
		}

		key := selected.Key()
		key.Specification = spec
		rec, ok := src.Lookup(key)
		if ok {
			col.AnalysisID = rec.ID
			col.Cell = FormatCell(&rec)
			if rec.Successful() {
				col.Observations = humanize.Comma(int64(rec.ObservationCount))
				col.Clusters = humanize.Comma(int64(rec.ClusterCount))
			}
		} else {
			col.Cell = FormatCell(nil)
		}
		t.Columns = append(t.Columns, col)
	}
	return t
}

func caption(rec *models.AnalysisRecord) string {
	parts := []string{rec.Outcome.Label(), rec.StateFilter.Label()}
	if rec.TimeWindow != nil {
		parts = append(parts, rec.TimeWindow.String())
	}
	if rec.Weighted {
		parts = append(parts, "CVAP-weighted")
	}
	if rec.ClusterLevel != "" && rec.ClusterLevel != models.ClusterCounty {
		parts = append(parts, "clustered by "+strings.ReplaceAll(string(rec.ClusterLevel), "_", "-"))
	}
	if rec.SampleRestriction != models.RestrictionNone {
		parts = append(parts, strings.ReplaceAll(string(rec.SampleRestriction), "_", " "))
	}
	return strings.Join(parts, ", ")
}

// TextMode selects the plain-text table flavour.
type TextMode int

const (
	ASCII TextMode = iota
	Markdown
)

// RenderText draws the table for terminals or Markdown documents.
func RenderText(t models.Table, mode TextMode) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.Style().Format.Header = text.FormatDefault
	w.SetTitle(t.Caption)

	header := table.Row{""}
	coef := table.Row{"VBM"}
	se := table.Row{""}
	obs := table.Row{"Observations"}
	clusters := table.Row{"Clusters"}
	var configs []table.ColumnConfig
	for i, col := range t.Columns {
		label := col.Label
		if col.Selected {
			label += " [*]"
		}
		header = append(header, label)
		if col.Cell.Missing {
			coef = append(coef, models.MissingGlyph)
		} else {
			coef = append(coef, col.Cell.Coefficient+col.Cell.Stars)
		}
		se = append(se, col.Cell.StdError)
		obs = append(obs, col.Observations)
		clusters = append(clusters, col.Clusters)
		configs = append(configs, table.ColumnConfig{Number: i + 2, Align: text.AlignRight})
	}

	w.AppendHeader(header)
	w.AppendRow(coef)
	w.AppendRow(se)
	w.AppendSeparator()
	w.AppendRow(obs)
	w.AppendRow(clusters)
	w.SetColumnConfigs(configs)

	if mode == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}
