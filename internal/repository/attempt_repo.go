package repository

import (
	"context"
	"time"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"gorm.io/gorm"
)

// DueAttempt pairs a due attempt with its lead's contact details.
type DueAttempt struct {
	Attempt domain.WinbackAttempt
	Lead    domain.Lead
}

// AttemptListParams filters the operator-facing attempt listing.
type AttemptListParams struct {
	Status   *domain.AttemptStatus
	Channel  *domain.Channel
	LeadID   *string
	Page     int
	PageSize int
}

// Finalization records the outcome of one dispatched attempt.
type Finalization struct {
	Status       domain.AttemptStatus
	ExecutedDate time.Time
	Notes        *string
	ResponseData *string
}

type AttemptRepository interface {
	GetDueWithLeads(ctx context.Context, asOf time.Time, limit int) ([]DueAttempt, error)
	Finalize(ctx context.Context, id string, outcome Finalization) error
	ListByLead(ctx context.Context, leadID string) ([]domain.WinbackAttempt, error)
	List(ctx context.Context, params AttemptListParams) ([]domain.WinbackAttempt, int64, error)
}

type GormAttemptRepo struct {
	db *gorm.DB
}

func NewGormAttemptRepo(db *gorm.DB) *GormAttemptRepo {
	return &GormAttemptRepo{db: db}
}

// GetDueWithLeads selects pending, not-yet-executed attempts whose scheduled
// date has arrived, joined with their lead. The executed_date guard keeps
// LinkedIn attempts queued for manual handling out of subsequent runs.
func (r *GormAttemptRepo) GetDueWithLeads(ctx context.Context, asOf time.Time, limit int) ([]DueAttempt, error) {
	var models []WinbackAttemptModel
	err := r.db.WithContext(ctx).
		Joins("Lead").
		Where("winback_attempts.status = ?", domain.AttemptStatusPending).
		Where("winback_attempts.executed_date IS NULL").
		Where("winback_attempts.scheduled_date <= ?", asOf).
		Order("winback_attempts.scheduled_date ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	due := make([]DueAttempt, 0, len(models))
	for i := range models {
		due = append(due, DueAttempt{
			Attempt: *attemptModelToDomain(&models[i]),
			Lead:    *leadModelToDomain(&models[i].Lead),
		})
	}

	return due, nil
}

func (r *GormAttemptRepo) Finalize(ctx context.Context, id string, outcome Finalization) error {
	result := r.db.WithContext(ctx).
		Model(&WinbackAttemptModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        outcome.Status,
			"executed_date": outcome.ExecutedDate,
			"notes":         outcome.Notes,
			"response_data": outcome.ResponseData,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GormAttemptRepo) ListByLead(ctx context.Context, leadID string) ([]domain.WinbackAttempt, error) {
	var models []WinbackAttemptModel
	err := r.db.WithContext(ctx).
		Where("lead_id = ?", leadID).
		Order("step_index ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.WinbackAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *attemptModelToDomain(&models[i]))
	}

	return attempts, nil
}

func (r *GormAttemptRepo) List(ctx context.Context, params AttemptListParams) ([]domain.WinbackAttempt, int64, error) {
	query := r.db.WithContext(ctx).Model(&WinbackAttemptModel{})

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Channel != nil {
		query = query.Where("channel = ?", *params.Channel)
	}
	if params.LeadID != nil {
		query = query.Where("lead_id = ?", *params.LeadID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := max(params.Page, 1)
	pageSize := params.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	pageSize = min(pageSize, 100)

	var models []WinbackAttemptModel
	err := query.
		Order("scheduled_date ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&models).Error
	if err != nil {
		return nil, 0, err
	}

	attempts := make([]domain.WinbackAttempt, 0, len(models))
	for i := range models {
		attempts = append(attempts, *attemptModelToDomain(&models[i]))
	}

	return attempts, total, nil
}
