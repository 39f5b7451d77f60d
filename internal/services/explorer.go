package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/interpreter"
	"github.com/Ayash-Bera/vbm-explorer/internal/matcher"
	"github.com/Ayash-Bera/vbm-explorer/internal/metrics"
	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"github.com/Ayash-Bera/vbm-explorer/internal/narration"
	"github.com/Ayash-Bera/vbm-explorer/internal/presenter"
	"github.com/Ayash-Bera/vbm-explorer/internal/repository"
	"github.com/sirupsen/logrus"
)

var ErrEmptyQuestion = errors.New("question is empty")

// ExampleQueries are the shortcuts offered to new users.
var ExampleQueries = []string{
	"What if we excluded California?",
	"Show me this with only presidential elections",
	"Did the effect change after 2018?",
	"What about turnout?",
	"Use quadratic trends",
	"What if errors are clustered by state?",
}

// Corpus is the read side of the result corpus the explorer needs.
type Corpus interface {
	matcher.Source
	presenter.Lookup
	Baseline(outcome models.Outcome) (models.AnalysisRecord, bool)
}

// Narrator produces the prose that accompanies a result.
type Narrator interface {
	Describe(ctx context.Context, question string, rec, baseline *models.AnalysisRecord) (string, error)
	Fallback(ctx context.Context, question string, intent models.QueryIntent) (string, error)
}

// Asker identifies who asked, for the query log.
type Asker struct {
	Session   string
	UserAgent string
	IPAddress string
}

type ExplorerService struct {
	corpus      Corpus
	interpreter *interpreter.Interpreter
	narrator    Narrator
	repoManager *repository.RepositoryManager
	logger      *logrus.Logger
}

// NewExplorerService wires the pipeline. repoManager may be nil when no
// analytics database is configured.
func NewExplorerService(
	corpus Corpus,
	in *interpreter.Interpreter,
	narrator Narrator,
	repoManager *repository.RepositoryManager,
	logger *logrus.Logger,
) *ExplorerService {
	if in == nil {
		in = interpreter.New(nil)
	}
	return &ExplorerService{
		corpus:      corpus,
		interpreter: in,
		narrator:    narrator,
		repoManager: repoManager,
		logger:      logger,
	}
}

// Ask runs one question through interpretation, matching and presentation.
// Narration failures are reported on the response, not as an error.
func (s *ExplorerService) Ask(ctx context.Context, question string, asker Asker) (*models.QueryResponse, error) {
	start := time.Now()
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	intent := s.interpreter.Interpret(question)
	result := matcher.Match(intent, s.corpus)

	resp := &models.QueryResponse{
		Query:      question,
		Intent:     intent,
		Confident:  result.Confident(),
		Confidence: result.Confidence,
		Score:      result.Score,
	}

	var narrationStatus string
	if resp.Confident {
		narrationStatus = s.present(ctx, question, result.Record, resp)
	} else {
		narrationStatus = s.fallback(ctx, question, intent, resp)
	}

	elapsed := time.Since(start)
	resp.ResponseTime = int(elapsed.Milliseconds())

	matchLabel := "fallback"
	if resp.Confident {
		matchLabel = "confident"
		metrics.MatchedAnalyses.WithLabelValues(string(result.Record.Outcome), string(result.Record.Specification)).Inc()
	}
	metrics.QueryTotal.WithLabelValues(matchLabel).Inc()
	metrics.QueryDuration.WithLabelValues(matchLabel).Observe(elapsed.Seconds())
	metrics.ConfidenceScore.Observe(result.Confidence)

	s.logger.WithFields(logrus.Fields{
		"query":      question,
		"score":      result.Score,
		"confidence": result.Confidence,
		"analysis":   analysisID(resp),
		"narration":  narrationStatus,
		"duration":   elapsed,
	}).Info("Question answered")

	resp.QueryID = s.track(question, resp, narrationStatus, asker)
	return resp, nil
}

func (s *ExplorerService) present(ctx context.Context, question string, rec *models.AnalysisRecord, resp *models.QueryResponse) string {
	resp.Analysis = rec

	var baseline *models.AnalysisRecord
	if b, ok := s.corpus.Baseline(rec.Outcome); ok {
		baseline = &b
		resp.Baseline = baseline
	}

	cell := presenter.FormatCell(rec)
	table := presenter.BuildTable(s.corpus, rec)
	plot := presenter.BuildComparison(baseline, rec)
	resp.Cell = &cell
	resp.Table = &table
	resp.Plot = &plot

	text, err := s.narrator.Describe(ctx, question, rec, baseline)
	if err != nil {
		resp.NarrationError = narration.AsError(err).Message
		s.logger.WithError(err).WithField("analysis", rec.ID).Warn("Narration failed")
		return models.NarrationFailed
	}
	resp.Narration = text
	return models.NarrationOK
}

func (s *ExplorerService) fallback(ctx context.Context, question string, intent models.QueryIntent, resp *models.QueryResponse) string {
	text, err := s.narrator.Fallback(ctx, question, intent)
	if err != nil {
		resp.Narration = narration.FallbackText
		resp.NarrationError = narration.AsError(err).Message
		s.logger.WithError(err).Warn("Fallback narration failed")
		return models.NarrationFailed
	}
	resp.Narration = text
	return models.NarrationFallback
}

// track writes the query log and popular-query stats. It returns the log id,
// or 0 when nothing was stored.
func (s *ExplorerService) track(question string, resp *models.QueryResponse, narrationStatus string, asker Asker) uint {
	if s.repoManager == nil {
		return 0
	}

	queryLog := &models.QueryLog{
		QueryText:       question,
		UserSession:     asker.Session,
		AnalysisID:      analysisID(resp),
		Score:           resp.Score,
		Confidence:      resp.Confidence,
		Confident:       resp.Confident,
		NarrationStatus: narrationStatus,
		ResponseTimeMs:  resp.ResponseTime,
		UserAgent:       asker.UserAgent,
		IPAddress:       asker.IPAddress,
	}
	if err := s.repoManager.QueryLog.Create(queryLog); err != nil {
		s.logger.WithError(err).Error("Failed to track query")
		return 0
	}

	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	if err := s.repoManager.PopularQuery.IncrementCount(normalized); err != nil {
		s.logger.WithError(err).Debug("Failed to update popular query count")
	} else if err := s.repoManager.PopularQuery.UpdateStats(normalized, resp.Confidence); err != nil {
		s.logger.WithError(err).Debug("Failed to update popular query stats")
	}

	return queryLog.ID
}

// RecordFeedback stores feedback on a logged question.
func (s *ExplorerService) RecordFeedback(req models.FeedbackRequest, sessionID string) error {
	if s.repoManager == nil {
		return ErrAnalyticsDisabled
	}
	if !models.ValidFeedbackTypes[req.FeedbackType] {
		return ErrInvalidFeedback
	}
	if _, err := s.repoManager.QueryLog.GetByID(req.QueryID); err != nil {
		return ErrUnknownQuery
	}
	feedback := &models.UserFeedback{
		QueryID:      req.QueryID,
		FeedbackType: req.FeedbackType,
		FeedbackText: req.FeedbackText,
		UserSession:  sessionID,
	}
	if err := s.repoManager.UserFeedback.Create(feedback); err != nil {
		return err
	}
	metrics.UserFeedback.WithLabelValues(req.FeedbackType).Inc()
	return nil
}

// PopularQueries returns the most asked questions, or nil without analytics.
func (s *ExplorerService) PopularQueries(limit int) ([]models.PopularQuery, error) {
	if s.repoManager == nil {
		return nil, nil
	}
	return s.repoManager.PopularQuery.GetTop(limit)
}

// SessionHistory lists a session's latest questions, or nil without analytics.
func (s *ExplorerService) SessionHistory(sessionID string, limit int) ([]models.SessionQuery, error) {
	if s.repoManager == nil {
		return nil, nil
	}
	logs, err := s.repoManager.QueryLog.GetBySession(sessionID, limit)
	if err != nil {
		return nil, err
	}
	history := make([]models.SessionQuery, 0, len(logs))
	for _, l := range logs {
		history = append(history, models.SessionQuery{
			QueryID:    l.ID,
			Query:      l.QueryText,
			AnalysisID: l.AnalysisID,
			Confidence: l.Confidence,
			AskedAt:    l.QueriedAt,
		})
	}
	return history, nil
}

var (
	ErrAnalyticsDisabled = errors.New("analytics storage is not configured")
	ErrUnknownQuery      = errors.New("query not found")
	ErrInvalidFeedback   = errors.New("feedback type must be helpful, not_helpful or partially_helpful")
)

func analysisID(resp *models.QueryResponse) string {
	if resp.Analysis == nil {
		return ""
	}
	return resp.Analysis.ID
}
