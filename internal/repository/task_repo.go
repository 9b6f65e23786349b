package repository

import (
	"context"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"gorm.io/gorm"
)

type TaskRepository interface {
	Create(ctx context.Context, task *domain.LeadTask) error
	ListOpenByLead(ctx context.Context, leadID string) ([]domain.LeadTask, error)
}

type GormTaskRepo struct {
	db *gorm.DB
}

func NewGormTaskRepo(db *gorm.DB) *GormTaskRepo {
	return &GormTaskRepo{db: db}
}

func (r *GormTaskRepo) Create(ctx context.Context, task *domain.LeadTask) error {
	model := taskModelFromDomain(task)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	if task != nil {
		*task = *taskModelToDomain(model)
	}
	return nil
}

func (r *GormTaskRepo) ListOpenByLead(ctx context.Context, leadID string) ([]domain.LeadTask, error) {
	var models []LeadTaskModel
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND status = ?", leadID, domain.TaskStatusOpen).
		Order("due_date ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	tasks := make([]domain.LeadTask, 0, len(models))
	for i := range models {
		tasks = append(tasks, *taskModelToDomain(&models[i]))
	}

	return tasks, nil
}
