package repository

import (
	"context"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"gorm.io/gorm"
)

type JobRunRepository interface {
	Create(ctx context.Context, run *domain.JobRun) error
}

type GormJobRunRepo struct {
	db *gorm.DB
}

func NewGormJobRunRepo(db *gorm.DB) *GormJobRunRepo {
	return &GormJobRunRepo{db: db}
}

func (r *GormJobRunRepo) Create(ctx context.Context, run *domain.JobRun) error {
	return r.db.WithContext(ctx).Create(jobRunModelFromDomain(run)).Error
}
