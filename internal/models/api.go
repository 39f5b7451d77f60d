package models

import "time"

type QueryRequest struct {
	Query string `json:"query" binding:"required"`
}

type QueryResponse struct {
	QueryID        uint            `json:"query_id,omitempty"`
	Query          string          `json:"query"`
	Intent         QueryIntent     `json:"intent"`
	Confident      bool            `json:"confident"`
	Confidence     float64         `json:"confidence"`
	Score          int             `json:"score"`
	Analysis       *AnalysisRecord `json:"analysis,omitempty"`
	Baseline       *AnalysisRecord `json:"baseline,omitempty"`
	Cell           *Cell           `json:"cell,omitempty"`
	Table          *Table          `json:"table,omitempty"`
	Plot           *Plot           `json:"plot,omitempty"`
	Narration      string          `json:"narration,omitempty"`
	NarrationError string          `json:"narration_error,omitempty"`
	ResponseTime   int             `json:"response_time_ms"`
}

type ChatMessage struct {
	Role    string `json:"role" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// ChatRequest is the pass-through narration contract.
type ChatRequest struct {
	System    string        `json:"system"`
	Messages  []ChatMessage `json:"messages" binding:"required,min=1"`
	MaxTokens int           `json:"max_tokens"`
}

type ChatResponse struct {
	Content string `json:"content"`
}

type ChatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type AnalysisResponse struct {
	Analysis AnalysisRecord  `json:"analysis"`
	Cell     Cell            `json:"cell"`
	Baseline *AnalysisRecord `json:"baseline,omitempty"`
}

type SessionResponse struct {
	SessionID string         `json:"session_id"`
	Used      int            `json:"used"`
	Limit     int            `json:"limit"`
	Remaining int            `json:"remaining"`
	ResetsIn  int            `json:"resets_in_seconds"`
	History   []SessionQuery `json:"history,omitempty"`
}

// SessionQuery is one logged question in a session's history.
type SessionQuery struct {
	QueryID    uint      `json:"query_id"`
	Query      string    `json:"query"`
	AnalysisID string    `json:"analysis_id,omitempty"`
	Confidence float64   `json:"confidence"`
	AskedAt    time.Time `json:"asked_at"`
}

type FeedbackRequest struct {
	QueryID      uint   `json:"query_id" binding:"required"`
	FeedbackType string `json:"feedback_type" binding:"required"`
	FeedbackText string `json:"feedback_text"`
}
