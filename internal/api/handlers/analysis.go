package handlers

import (
	"net/http"
	"strconv"

	"github.com/Ayash-Bera/vbm-explorer/internal/corpus"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/Ayash-Bera/vbm-explorer/internal/presenter"
	"github.com/Ayash-Bera/vbm-explorer/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	defaultPlotWidth  = 640
	defaultPlotHeight = 160
	maxPlotDimension  = 2000
)

type AnalysisHandler struct {
	corpus *corpus.Corpus
}

func NewAnalysisHandler(c *corpus.Corpus) *AnalysisHandler {
	return &AnalysisHandler{corpus: c}
}

// HandleAnalysis returns one record with its formatted cell and baseline
func (h *AnalysisHandler) HandleAnalysis(c *gin.Context) {
	rec, ok := h.corpus.ByID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Analysis not found", nil)
		return
	}

	resp := models.AnalysisResponse{
		Analysis: rec,
		Cell:     presenter.FormatCell(&rec),
	}
	if b, ok := h.corpus.Baseline(rec.Outcome); ok {
		resp.Baseline = &b
	}
	utils.SuccessResponse(c, http.StatusOK, "Analysis retrieved", resp)
}

// HandlePlot renders the record against its baseline as SVG
func (h *AnalysisHandler) HandlePlot(c *gin.Context) {
	rec, ok := h.corpus.ByID(c.Param("id"))
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Analysis not found", nil)
		return
	}

	width := dimension(c.Query("width"), defaultPlotWidth)
	height := dimension(c.Query("height"), defaultPlotHeight)

	var baseline *models.AnalysisRecord
	if b, ok := h.corpus.Baseline(rec.Outcome); ok {
		baseline = &b
	}
	svg := presenter.RenderSVG(presenter.BuildComparison(baseline, &rec), width, height)

	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/svg+xml; charset=utf-8", []byte(svg))
}

// HandleBaseline returns the reference record for an outcome's family
func (h *AnalysisHandler) HandleBaseline(c *gin.Context) {
	outcome := models.Outcome(c.Param("outcome"))
	if !outcome.Valid() {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown outcome", nil)
		return
	}
	rec, ok := h.corpus.Baseline(outcome)
	if !ok {
		utils.ErrorResponse(c, http.StatusNotFound, "Baseline not in corpus", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "Baseline retrieved", rec)
}

type CorpusResponse struct {
	Metadata  models.CorpusMetadata  `json:"metadata"`
	Analyses  int                    `json:"analyses"`
	ByOutcome map[models.Outcome]int `json:"by_outcome"`
}

// HandleCorpus describes the loaded corpus
func (h *AnalysisHandler) HandleCorpus(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Corpus metadata", CorpusResponse{
		Metadata:  h.corpus.Metadata(),
		Analyses:  h.corpus.Len(),
		ByOutcome: h.corpus.Stats(),
	})
}

func dimension(raw string, def int) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return def
	}
	if n > maxPlotDimension {
		return maxPlotDimension
	}
	return n
}
