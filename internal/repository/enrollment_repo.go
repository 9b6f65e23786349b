package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"gorm.io/gorm"
)

// EnrollmentRepository commits a lead's winback enrollment atomically: the
// stage advancement and the attempt batch either both land or neither does.
type EnrollmentRepository interface {
	EnrollLead(ctx context.Context, leadID string, enrolledAt time.Time, attempts []domain.WinbackAttempt) error
}

type GormEnrollmentRepo struct {
	db *gorm.DB
}

func NewGormEnrollmentRepo(db *gorm.DB) *GormEnrollmentRepo {
	return &GormEnrollmentRepo{db: db}
}

// EnrollLead advances a cold lead to CAMPAIGN_SENT and inserts its attempt
// batch inside one transaction. A lead that is no longer cold, or that already
// has attempts for the sequence, yields ErrConflict; this is the guard against
// overlapping enrollment runs double-enrolling a lead.
func (r *GormEnrollmentRepo) EnrollLead(
	ctx context.Context,
	leadID string,
	enrolledAt time.Time,
	attempts []domain.WinbackAttempt,
) error {
	if len(attempts) == 0 {
		return fmt.Errorf("%w: enrollment requires at least one attempt", domain.ErrValidation)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&LeadModel{}).
			Where("id = ? AND winback_stage = ?", leadID, domain.StageCold).
			Updates(map[string]any{
				"winback_stage":        domain.StageCampaignSent,
				"last_winback_attempt": enrolledAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: lead %s is not cold", domain.ErrConflict, leadID)
		}

		models := make([]WinbackAttemptModel, 0, len(attempts))
		for i := range attempts {
			models = append(models, *attemptModelFromDomain(&attempts[i]))
		}

		if err := tx.CreateInBatches(&models, 100).Error; err != nil {
			if isUniqueViolationError(err) {
				return fmt.Errorf("%w: lead %s already enrolled", domain.ErrConflict, leadID)
			}
			return err
		}

		return nil
	})
}

func isUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "unique constraint")
}
