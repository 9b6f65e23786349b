package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"gorm.io/gorm"
)

type LeadRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Lead, error)
	GetEligibleForWinback(ctx context.Context, window domain.EligibilityWindow, asOf time.Time, limit int) ([]domain.Lead, error)
	AdvanceWinbackStage(ctx context.Context, id string, stage domain.WinbackStage) error
	ResetWinbackStage(ctx context.Context, id string) error
}

type GormLeadRepo struct {
	db *gorm.DB
}

func NewGormLeadRepo(db *gorm.DB) *GormLeadRepo {
	return &GormLeadRepo{db: db}
}

func (r *GormLeadRepo) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	var model LeadModel
	err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return leadModelToDomain(&model), nil
}

// GetEligibleForWinback selects lost leads that are still cold and whose lost
// date falls inside the eligibility window. Lost-reason filtering happens in
// the service layer since reasons are free text.
func (r *GormLeadRepo) GetEligibleForWinback(
	ctx context.Context,
	window domain.EligibilityWindow,
	asOf time.Time,
	limit int,
) ([]domain.Lead, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	oldest, newest := window.Bounds(asOf)

	var models []LeadModel
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.LeadStatusDisqualified).
		Where("winback_stage = ?", domain.StageCold).
		Where("lost_date IS NOT NULL").
		Where("lost_date >= ? AND lost_date <= ?", oldest, newest).
		Order("lost_date ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	leads := make([]domain.Lead, 0, len(models))
	for i := range models {
		leads = append(leads, *leadModelToDomain(&models[i]))
	}

	return leads, nil
}

// AdvanceWinbackStage moves a lead forward to the given stage. Re-applying a
// stage the lead already reached is a no-op, which makes the first-step
// dispatch advancement idempotent with enrollment's optimistic advancement.
func (r *GormLeadRepo) AdvanceWinbackStage(ctx context.Context, id string, stage domain.WinbackStage) error {
	result := r.db.WithContext(ctx).
		Model(&LeadModel{}).
		Where("id = ? AND winback_stage <> ?", id, stage).
		Update("winback_stage", stage)
	if result.Error != nil {
		return result.Error
	}
	return nil
}

// ResetWinbackStage reverts a lead to COLD and clears the last attempt marker.
// This is the compensating action for stores that cannot run enrollment in a
// single transaction.
func (r *GormLeadRepo) ResetWinbackStage(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&LeadModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"winback_stage":        domain.StageCold,
			"last_winback_attempt": nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
