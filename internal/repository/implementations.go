package repository

import (
	"time"

	"github.com/Ayash-Bera/vbm-explorer/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QueryLogRepositoryImpl implements QueryLogRepository
type QueryLogRepositoryImpl struct {
	db *gorm.DB
}

func NewQueryLogRepository(db *gorm.DB) models.QueryLogRepository {
	return &QueryLogRepositoryImpl{db: db}
}

func (r *QueryLogRepositoryImpl) Create(log *models.QueryLog) error {
	return r.db.Create(log).Error
}

func (r *QueryLogRepositoryImpl) GetByID(id uint) (*models.QueryLog, error) {
	var log models.QueryLog
	err := r.db.Preload("Feedback").First(&log, id).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

// GetBySession returns the session's most recent questions first.
func (r *QueryLogRepositoryImpl) GetBySession(session string, limit int) ([]models.QueryLog, error) {
	var logs []models.QueryLog
	err := r.db.Where("user_session = ?", session).
		Order("queried_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

// UserFeedbackRepositoryImpl implements UserFeedbackRepository
type UserFeedbackRepositoryImpl struct {
	db *gorm.DB
}

func NewUserFeedbackRepository(db *gorm.DB) models.UserFeedbackRepository {
	return &UserFeedbackRepositoryImpl{db: db}
}

func (r *UserFeedbackRepositoryImpl) Create(feedback *models.UserFeedback) error {
	return r.db.Create(feedback).Error
}

func (r *UserFeedbackRepositoryImpl) GetByQueryID(queryID uint) ([]models.UserFeedback, error) {
	var feedback []models.UserFeedback
	err := r.db.Where("query_id = ?", queryID).
		Order("created_at").
		Find(&feedback).Error
	return feedback, err
}

// PopularQueryRepositoryImpl implements PopularQueryRepository
type PopularQueryRepositoryImpl struct {
	db *gorm.DB
}

func NewPopularQueryRepository(db *gorm.DB) models.PopularQueryRepository {
	return &PopularQueryRepositoryImpl{db: db}
}

// IncrementCount upserts the question. The ON CONFLICT form works on both
// postgres and sqlite.
func (r *PopularQueryRepositoryImpl) IncrementCount(queryText string) error {
	now := time.Now()
	row := models.PopularQuery{
		QueryText:    queryText,
		SearchCount:  1,
		LastSearched: now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query_text"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"search_count":  gorm.Expr("popular_queries.search_count + 1"),
			"last_searched": now,
			"updated_at":    now,
		}),
	}).Create(&row).Error
}

func (r *PopularQueryRepositoryImpl) GetTop(limit int) ([]models.PopularQuery, error) {
	var queries []models.PopularQuery
	err := r.db.Order("search_count DESC").
		Order("last_searched DESC").
		Limit(limit).
		Find(&queries).Error
	return queries, err
}

// UpdateStats folds one more confidence into the running mean. Call after IncrementCount.
func (r *PopularQueryRepositoryImpl) UpdateStats(queryText string, confidence float64) error {
	return r.db.Model(&models.PopularQuery{}).
		Where("query_text = ?", queryText).
		Updates(map[string]interface{}{
			"avg_confidence": gorm.Expr("(avg_confidence * (search_count - 1) + ?) / search_count", confidence),
			"updated_at":     time.Now(),
		}).Error
}

// SystemHealthRepositoryImpl implements SystemHealthRepository
type SystemHealthRepositoryImpl struct {
	db *gorm.DB
}

func NewSystemHealthRepository(db *gorm.DB) models.SystemHealthRepository {
	return &SystemHealthRepositoryImpl{db: db}
}

func (r *SystemHealthRepositoryImpl) UpdateServiceHealth(serviceName, status string, responseTime int, errorMsg string) error {
	return r.db.Create(&models.SystemHealth{
		ServiceName:    serviceName,
		Status:         status,
		ResponseTimeMs: responseTime,
		ErrorMessage:   errorMsg,
		CheckedAt:      time.Now(),
	}).Error
}

// RepositoryManager bundles all repositories
type RepositoryManager struct {
	QueryLog     models.QueryLogRepository
	UserFeedback models.UserFeedbackRepository
	PopularQuery models.PopularQueryRepository
	SystemHealth models.SystemHealthRepository
}

func NewRepositoryManager(db *gorm.DB) *RepositoryManager {
	return &RepositoryManager{
		QueryLog:     NewQueryLogRepository(db),
		UserFeedback: NewUserFeedbackRepository(db),
		PopularQuery: NewPopularQueryRepository(db),
		SystemHealth: NewSystemHealthRepository(db),
	}
}
