package models

// GORM models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Narration outcomes stored on a query log
const (
	NarrationOK       = "ok"
	NarrationFailed   = "failed"
	NarrationFallback = "fallback"
	NarrationSkipped  = "skipped"
)

// QueryLog records one processed question
type QueryLog struct {
	BaseModel
	QueryText       string    `json:"query_text" gorm:"not null"`
	UserSession     string    `json:"user_session" gorm:"index"`
	AnalysisID      string    `json:"analysis_id"`
	Score           int       `json:"score"`
	Confidence      float64   `json:"confidence"`
	Confident       bool      `json:"confident"`
	NarrationStatus string    `json:"narration_status"`
	ResponseTimeMs  int       `json:"response_time_ms"`
	UserAgent       string    `json:"user_agent"`
	IPAddress       string    `json:"ip_address"`
	QueriedAt       time.Time `json:"queried_at" gorm:"index"`

	// Associations
	Feedback []UserFeedback `json:"feedback" gorm:"foreignKey:QueryID"`
}

// UserFeedback represents user feedback on an answer
type UserFeedback struct {
	BaseModel
	QueryID      uint   `json:"query_id" gorm:"not null"`
	FeedbackType string `json:"feedback_type" gorm:"not null"`
	FeedbackText string `json:"feedback_text"`
	UserSession  string `json:"user_session"`
}

// PopularQuery represents frequently asked questions
type PopularQuery struct {
	BaseModel
	QueryText     string    `json:"query_text" gorm:"uniqueIndex;not null"`
	SearchCount   int       `json:"search_count" gorm:"default:1"`
	AvgConfidence float64   `json:"avg_confidence" gorm:"default:0"`
	LastSearched  time.Time `json:"last_searched"`
}

// SystemHealth represents service health monitoring
type SystemHealth struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ServiceName    string    `json:"service_name" gorm:"not null;index"`
	Status         string    `json:"status" gorm:"not null"`
	ResponseTimeMs int       `json:"response_time_ms"`
	ErrorMessage   string    `json:"error_message"`
	CheckedAt      time.Time `json:"checked_at"`
}

// Database interfaces for repository pattern
type QueryLogRepository interface {
	Create(log *QueryLog) error
	GetByID(id uint) (*QueryLog, error)
	GetBySession(session string, limit int) ([]QueryLog, error)
}

type UserFeedbackRepository interface {
	Create(feedback *UserFeedback) error
	GetByQueryID(queryID uint) ([]UserFeedback, error)
}

type PopularQueryRepository interface {
	IncrementCount(queryText string) error
	GetTop(limit int) ([]PopularQuery, error)
	UpdateStats(queryText string, confidence float64) error
}

type SystemHealthRepository interface {
	UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error
}

// TableName methods for custom table names
func (QueryLog) TableName() string     { return "query_logs" }
func (UserFeedback) TableName() string { return "user_feedback" }
func (PopularQuery) TableName() string { return "popular_queries" }
func (SystemHealth) TableName() string { return "system_health" }

// ValidFeedbackTypes lists accepted feedback values
var ValidFeedbackTypes = map[string]bool{
	"helpful":           true,
	"not_helpful":       true,
	"partially_helpful": true,
}

// Model validation methods
func (q *QueryLog) Validate() error {
	if q.QueryText == "" {
		return fmt.Errorf("query text is required")
	}
	if q.ResponseTimeMs < 0 {
		return fmt.Errorf("response time cannot be negative")
	}
	if q.Confidence < 0 || q.Confidence > 1 {
		return fmt.Errorf("confidence %v out of range", q.Confidence)
	}
	return nil
}

func (uf *UserFeedback) Validate() error {
	if uf.QueryID == 0 {
		return fmt.Errorf("query ID is required")
	}
	if !ValidFeedbackTypes[uf.FeedbackType] {
		return fmt.Errorf("invalid feedback type: %s", uf.FeedbackType)
	}
	return nil
}

// GORM hooks
func (q *QueryLog) BeforeCreate(tx *gorm.DB) error {
	if q.QueriedAt.IsZero() {
		q.QueriedAt = time.Now()
	}
	return q.Validate()
}

func (uf *UserFeedback) BeforeCreate(tx *gorm.DB) error {
	return uf.Validate()
}
