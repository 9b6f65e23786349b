package repository

import (
	"time"

	"github.com/kursadbilgin/winback-engine/internal/domain"
)

// LeadModel is the persistence model for the leads table.
type LeadModel struct {
	ID                 string              `gorm:"type:uuid;primaryKey"`
	Name               string              `gorm:"type:varchar(255);not null"`
	Email              *string             `gorm:"type:varchar(255)"`
	Phone              *string             `gorm:"type:varchar(50)"`
	Status             domain.LeadStatus   `gorm:"type:varchar(20);not null"`
	WinbackStage       domain.WinbackStage `gorm:"type:varchar(20);not null;default:'COLD'"`
	LostDate           *time.Time          `gorm:"type:timestamptz"`
	LostReason         *string             `gorm:"type:text"`
	LastWinbackAttempt *time.Time          `gorm:"type:timestamptz"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (LeadModel) TableName() string {
	return "leads"
}

// WinbackSequenceModel is the persistence model for winback_sequences.
type WinbackSequenceModel struct {
	ID        string `gorm:"type:uuid;primaryKey"`
	Name      string `gorm:"type:varchar(255);not null"`
	Active    bool   `gorm:"not null;default:false"`
	IsDefault bool   `gorm:"not null;default:false"`
	Steps     []SequenceStepModel `gorm:"foreignKey:SequenceID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (WinbackSequenceModel) TableName() string {
	return "winback_sequences"
}

// SequenceStepModel is the persistence model for winback_sequence_steps.
type SequenceStepModel struct {
	ID              string         `gorm:"type:uuid;primaryKey"`
	SequenceID      string         `gorm:"type:uuid;not null"`
	StepIndex       int            `gorm:"not null"`
	OffsetDays      int            `gorm:"not null"`
	Channel         domain.Channel `gorm:"type:varchar(20);not null"`
	Subject         *string        `gorm:"type:varchar(500)"`
	MessageTemplate *string        `gorm:"type:text"`
	CreatedAt       time.Time
}

func (SequenceStepModel) TableName() string {
	return "winback_sequence_steps"
}

// WinbackAttemptModel is the persistence model for winback_attempts.
type WinbackAttemptModel struct {
	ID            string               `gorm:"type:uuid;primaryKey"`
	LeadID        string               `gorm:"type:uuid;not null"`
	SequenceID    string               `gorm:"type:uuid;not null"`
	StepIndex     int                  `gorm:"not null"`
	Channel       domain.Channel       `gorm:"type:varchar(20);not null"`
	ScheduledDate time.Time            `gorm:"type:timestamptz;not null"`
	Status        domain.AttemptStatus `gorm:"type:varchar(20);not null"`
	ExecutedDate  *time.Time           `gorm:"type:timestamptz"`
	Notes         *string              `gorm:"type:text"`
	ResponseData  *string              `gorm:"type:text"`
	Lead          LeadModel            `gorm:"foreignKey:LeadID"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (WinbackAttemptModel) TableName() string {
	return "winback_attempts"
}

// LeadTaskModel is the persistence model for lead_tasks.
type LeadTaskModel struct {
	ID          string            `gorm:"type:uuid;primaryKey"`
	LeadID      string            `gorm:"type:uuid;not null"`
	Title       string            `gorm:"type:varchar(255);not null"`
	Description string            `gorm:"type:text"`
	DueDate     time.Time         `gorm:"type:timestamptz;not null"`
	Status      domain.TaskStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
}

func (LeadTaskModel) TableName() string {
	return "lead_tasks"
}

// JobRunModel is the persistence model for job_run_logs.
type JobRunModel struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	JobName   string    `gorm:"type:varchar(100);not null"`
	RunDate   time.Time `gorm:"type:timestamptz;not null"`
	Success   bool      `gorm:"not null"`
	Details   string    `gorm:"type:text;not null"`
	CreatedAt time.Time
}

func (JobRunModel) TableName() string {
	return "job_run_logs"
}

func leadModelToDomain(m *LeadModel) *domain.Lead {
	if m == nil {
		return nil
	}

	return &domain.Lead{
		ID:                 m.ID,
		Name:               m.Name,
		Email:              m.Email,
		Phone:              m.Phone,
		Status:             m.Status,
		WinbackStage:       m.WinbackStage,
		LostDate:           m.LostDate,
		LostReason:         m.LostReason,
		LastWinbackAttempt: m.LastWinbackAttempt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func sequenceModelToDomain(m *WinbackSequenceModel) *domain.WinbackSequence {
	if m == nil {
		return nil
	}

	steps := make([]domain.SequenceStep, 0, len(m.Steps))
	for i := range m.Steps {
		steps = append(steps, *stepModelToDomain(&m.Steps[i]))
	}

	return &domain.WinbackSequence{
		ID:        m.ID,
		Name:      m.Name,
		Active:    m.Active,
		IsDefault: m.IsDefault,
		Steps:     steps,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func stepModelToDomain(m *SequenceStepModel) *domain.SequenceStep {
	if m == nil {
		return nil
	}

	return &domain.SequenceStep{
		ID:              m.ID,
		SequenceID:      m.SequenceID,
		StepIndex:       m.StepIndex,
		OffsetDays:      m.OffsetDays,
		Channel:         m.Channel,
		Subject:         m.Subject,
		MessageTemplate: m.MessageTemplate,
		CreatedAt:       m.CreatedAt,
	}
}

func attemptModelFromDomain(a *domain.WinbackAttempt) *WinbackAttemptModel {
	if a == nil {
		return nil
	}

	return &WinbackAttemptModel{
		ID:            a.ID,
		LeadID:        a.LeadID,
		SequenceID:    a.SequenceID,
		StepIndex:     a.StepIndex,
		Channel:       a.Channel,
		ScheduledDate: a.ScheduledDate,
		Status:        a.Status,
		ExecutedDate:  a.ExecutedDate,
		Notes:         a.Notes,
		ResponseData:  a.ResponseData,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func attemptModelToDomain(m *WinbackAttemptModel) *domain.WinbackAttempt {
	if m == nil {
		return nil
	}

	return &domain.WinbackAttempt{
		ID:            m.ID,
		LeadID:        m.LeadID,
		SequenceID:    m.SequenceID,
		StepIndex:     m.StepIndex,
		Channel:       m.Channel,
		ScheduledDate: m.ScheduledDate,
		Status:        m.Status,
		ExecutedDate:  m.ExecutedDate,
		Notes:         m.Notes,
		ResponseData:  m.ResponseData,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func taskModelFromDomain(task *domain.LeadTask) *LeadTaskModel {
	if task == nil {
		return nil
	}

	return &LeadTaskModel{
		ID:          task.ID,
		LeadID:      task.LeadID,
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
		Status:      task.Status,
		CreatedAt:   task.CreatedAt,
	}
}

func taskModelToDomain(m *LeadTaskModel) *domain.LeadTask {
	if m == nil {
		return nil
	}

	return &domain.LeadTask{
		ID:          m.ID,
		LeadID:      m.LeadID,
		Title:       m.Title,
		Description: m.Description,
		DueDate:     m.DueDate,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
	}
}

func jobRunModelFromDomain(r *domain.JobRun) *JobRunModel {
	if r == nil {
		return nil
	}

	return &JobRunModel{
		ID:        r.ID,
		JobName:   r.JobName,
		RunDate:   r.RunDate,
		Success:   r.Success,
		Details:   r.Details,
		CreatedAt: r.CreatedAt,
	}
}
