package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/repository"
)

// CallHandler does not place calls; it creates an immediate follow-up task so
// the call surfaces in the owner's CRM task list.
type CallHandler struct {
	tasks repository.TaskRepository
	now   func() time.Time
}

func NewCallHandler(tasks repository.TaskRepository) (*CallHandler, error) {
	if tasks == nil {
		return nil, fmt.Errorf("task repository is required")
	}
	return &CallHandler{tasks: tasks, now: time.Now}, nil
}

func (h *CallHandler) Channel() domain.Channel { return domain.ChannelCall }

func (h *CallHandler) Execute(ctx context.Context, attempt domain.WinbackAttempt, lead domain.Lead, _ *domain.SequenceStep) Result {
	response := map[string]string{"handler": "call-task"}

	description := fmt.Sprintf("Winback outreach step %d for %s.", attempt.StepIndex+1, lead.Name)
	if lead.Phone != nil && strings.TrimSpace(*lead.Phone) != "" {
		description += fmt.Sprintf(" Phone: %s.", strings.TrimSpace(*lead.Phone))
	}
	if lead.LostReason != nil && strings.TrimSpace(*lead.LostReason) != "" {
		description += fmt.Sprintf(" Lost reason: %s.", strings.TrimSpace(*lead.LostReason))
	}

	task := &domain.LeadTask{
		ID:          uuid.NewString(),
		LeadID:      lead.ID,
		Title:       fmt.Sprintf("Winback call: %s", lead.Name),
		Description: description,
		DueDate:     h.now().UTC(),
		Status:      domain.TaskStatusOpen,
	}

	if err := h.tasks.Create(ctx, task); err != nil {
		return Result{
			Outcome:  OutcomeFailed,
			Notes:    fmt.Sprintf("failed to create call task: %v", err),
			Response: response,
		}
	}

	response["taskId"] = task.ID

	return Result{
		Outcome:  OutcomeSent,
		Notes:    "call task created for immediate follow-up",
		Response: response,
	}
}
