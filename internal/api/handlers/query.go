package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ayash-Bera/vbm-explorer/internal/database"
	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
	"github.com/Ayash-Bera/vbm-explorer/internal/middleware"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/Ayash-Bera/vbm-explorer/internal/services"
	"github.com/Ayash-Bera/vbm-explorer/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// MaxQueryLength is the character ceiling of the question box.
const MaxQueryLength = 500

type QueryHandler struct {
	explorer *services.ExplorerService
	cache    *database.Cache
	logger   *logrus.Logger
}

func NewQueryHandler(explorer *services.ExplorerService, cache *database.Cache, logger *logrus.Logger) *QueryHandler {
	return &QueryHandler{
		explorer: explorer,
		cache:    cache,
		logger:   logger,
	}
}

// HandleQuery answers one natural-language question
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Debug("Invalid query request")
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query cannot be empty", nil)
		return
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		utils.ErrorResponse(c, http.StatusBadRequest, "Query too long (max 500 characters)", nil)
		return
	}

	asker := services.Asker{
		Session:   middleware.GetSessionID(c),
		UserAgent: c.GetHeader("User-Agent"),
		IPAddress: c.ClientIP(),
	}

	h.logger.WithFields(logrus.Fields{
		"query":        query,
		"user_session": asker.Session,
		"request_id":   c.GetString(middleware.RequestIDKey),
	}).Info("Processing query")

	resp, err := h.explorer.Ask(c.Request.Context(), query, asker)
	if err != nil {
		if errors.Is(err, services.ErrEmptyQuestion) {
			utils.ErrorResponse(c, http.StatusBadRequest, "Query cannot be empty", err)
			return
		}
		h.logger.WithError(err).Error("Query failed")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Query failed", err)
		return
	}

	message := "Match found"
	if !resp.Confident {
		message = "No confident match"
	}
	utils.SuccessResponse(c, http.StatusOK, message, resp)
}

// HandleFeedback records feedback on a logged question
func (h *QueryHandler) HandleFeedback(c *gin.Context) {
	var req models.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback format", err)
		return
	}

	sessionID := middleware.GetSessionID(c)
	err := h.explorer.RecordFeedback(req, sessionID)
	switch {
	case errors.Is(err, services.ErrInvalidFeedback):
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid feedback type", err)
		return
	case errors.Is(err, services.ErrUnknownQuery):
		utils.ErrorResponse(c, http.StatusNotFound, "Query not found", err)
		return
	case errors.Is(err, services.ErrAnalyticsDisabled):
		utils.ErrorResponse(c, http.StatusServiceUnavailable, "Feedback is not being collected", err)
		return
	case err != nil:
		h.logger.WithError(err).Error("Failed to save feedback")
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to save feedback", err)
		return
	}

	h.logger.WithFields(logrus.Fields{
		"query_id":      req.QueryID,
		"feedback_type": req.FeedbackType,
		"user_session":  sessionID,
	}).Info("Feedback recorded")

	utils.SuccessResponse(c, http.StatusCreated, "Feedback recorded", nil)
}

type ExamplesResponse struct {
	Examples []string              `json:"examples"`
	Popular  []models.PopularQuery `json:"popular"`
}

// HandleExamples returns the example shortcuts and the most asked questions
func (h *QueryHandler) HandleExamples(c *gin.Context) {
	resp := ExamplesResponse{
		Examples: services.ExampleQueries,
		Popular:  h.popular(c.Request.Context()),
	}
	utils.SuccessResponse(c, http.StatusOK, "Examples retrieved", resp)
}

func (h *QueryHandler) popular(ctx context.Context) []models.PopularQuery {
	if h.cache != nil {
		if cached, err := h.cache.GetCachedPopularQueries(ctx); err == nil {
			metrics.CacheHits.WithLabelValues("popular").Inc()
			return cached
		}
		metrics.CacheMisses.WithLabelValues("popular").Inc()
	}

	popular, err := h.explorer.PopularQueries(5)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to load popular queries")
		return []models.PopularQuery{}
	}
	if popular == nil {
		return []models.PopularQuery{}
	}

	if h.cache != nil {
		if err := h.cache.CachePopularQueries(ctx, popular, 5*time.Minute); err != nil {
			h.logger.WithError(err).Debug("Failed to cache popular queries")
		}
	}
	return popular
}
