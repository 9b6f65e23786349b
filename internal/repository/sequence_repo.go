package repository

import (
	"context"
	"errors"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"gorm.io/gorm"
)

type SequenceRepository interface {
	GetDefault(ctx context.Context) (*domain.WinbackSequence, error)
	GetByID(ctx context.Context, id string) (*domain.WinbackSequence, error)
}

type GormSequenceRepo struct {
	db *gorm.DB
}

func NewGormSequenceRepo(db *gorm.DB) *GormSequenceRepo {
	return &GormSequenceRepo{db: db}
}

// GetDefault returns the canonical outreach sequence. The selection policy
// (default flag wins, earliest-created active as fallback) lives in
// domain.SelectDefault; the query only narrows to active sequences.
func (r *GormSequenceRepo) GetDefault(ctx context.Context) (*domain.WinbackSequence, error) {
	var models []WinbackSequenceModel
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_index ASC")
		}).
		Where("active = ?", true).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	sequences := make([]domain.WinbackSequence, 0, len(models))
	for i := range models {
		sequences = append(sequences, *sequenceModelToDomain(&models[i]))
	}
	return domain.SelectDefault(sequences)
}

func (r *GormSequenceRepo) GetByID(ctx context.Context, id string) (*domain.WinbackSequence, error) {
	var model WinbackSequenceModel
	err := r.db.WithContext(ctx).
		Preload("Steps", func(db *gorm.DB) *gorm.DB {
			return db.Order("step_index ASC")
		}).
		First(&model, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return sequenceModelToDomain(&model), nil
}
