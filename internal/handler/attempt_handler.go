package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/repository"
)

const (
	defaultPage     = 1
	defaultPageSize = 50
	maxPageSize     = 100
)

// AttemptHandler exposes read endpoints over winback state: attempt listings
// for dashboards and the per-lead timeline with its open call tasks.
type AttemptHandler struct {
	attempts  repository.AttemptRepository
	leads     repository.LeadRepository
	tasks     repository.TaskRepository
	sequences repository.SequenceRepository
}

func NewAttemptHandler(
	attempts repository.AttemptRepository,
	leads repository.LeadRepository,
	tasks repository.TaskRepository,
	sequences repository.SequenceRepository,
) (*AttemptHandler, error) {
	if attempts == nil || leads == nil || tasks == nil || sequences == nil {
		return nil, fmt.Errorf("attempt handler requires all repositories")
	}
	return &AttemptHandler{attempts: attempts, leads: leads, tasks: tasks, sequences: sequences}, nil
}

func RegisterAttemptRoutes(
	router fiber.Router,
	attempts repository.AttemptRepository,
	leads repository.LeadRepository,
	tasks repository.TaskRepository,
	sequences repository.SequenceRepository,
) error {
	h, err := NewAttemptHandler(attempts, leads, tasks, sequences)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/attempts", h.ListAttempts)
	v1.Get("/leads/:id/attempts", h.GetLeadTimeline)
	v1.Get("/sequences/default", h.GetDefaultSequence)

	return nil
}

type attemptResponse struct {
	ID            string     `json:"id"`
	LeadID        string     `json:"leadId"`
	SequenceID    string     `json:"sequenceId"`
	StepIndex     int        `json:"stepIndex"`
	Channel       string     `json:"channel"`
	ScheduledDate time.Time  `json:"scheduledDate"`
	Status        string     `json:"status"`
	ExecutedDate  *time.Time `json:"executedDate,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

type listAttemptsResponse struct {
	Data []attemptResponse `json:"data"`
	Meta listMeta          `json:"meta"`
}

type listMeta struct {
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
}

type taskResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     time.Time `json:"dueDate"`
	Status      string    `json:"status"`
}

type leadTimelineResponse struct {
	LeadID       string            `json:"leadId"`
	Name         string            `json:"name"`
	WinbackStage string            `json:"winbackStage"`
	LostDate     *time.Time        `json:"lostDate,omitempty"`
	LostReason   *string           `json:"lostReason,omitempty"`
	Attempts     []attemptResponse `json:"attempts"`
	OpenTasks    []taskResponse    `json:"openTasks"`
}

type sequenceStepResponse struct {
	StepIndex  int     `json:"stepIndex"`
	OffsetDays int     `json:"offsetDays"`
	Channel    string  `json:"channel"`
	Subject    *string `json:"subject,omitempty"`
}

type sequenceResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Active    bool                   `json:"active"`
	IsDefault bool                   `json:"isDefault"`
	Steps     []sequenceStepResponse `json:"steps"`
}

func (h *AttemptHandler) ListAttempts(c *fiber.Ctx) error {
	params, err := parseAttemptListParams(c)
	if err != nil {
		return toHTTPError(err)
	}

	attempts, total, err := h.attempts.List(c.Context(), params)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(listAttemptsResponse{
		Data: toAttemptResponses(attempts),
		Meta: listMeta{
			Page:     params.Page,
			PageSize: params.PageSize,
			Total:    total,
		},
	})
}

func (h *AttemptHandler) GetLeadTimeline(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))

	lead, err := h.leads.GetByID(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	attempts, err := h.attempts.ListByLead(c.Context(), lead.ID)
	if err != nil {
		return toHTTPError(err)
	}

	tasks, err := h.tasks.ListOpenByLead(c.Context(), lead.ID)
	if err != nil {
		return toHTTPError(err)
	}

	taskItems := make([]taskResponse, 0, len(tasks))
	for _, task := range tasks {
		taskItems = append(taskItems, taskResponse{
			ID:          task.ID,
			Title:       task.Title,
			Description: task.Description,
			DueDate:     task.DueDate,
			Status:      string(task.Status),
		})
	}

	return c.Status(fiber.StatusOK).JSON(leadTimelineResponse{
		LeadID:       lead.ID,
		Name:         lead.Name,
		WinbackStage: string(lead.WinbackStage),
		LostDate:     lead.LostDate,
		LostReason:   lead.LostReason,
		Attempts:     toAttemptResponses(attempts),
		OpenTasks:    taskItems,
	})
}

func (h *AttemptHandler) GetDefaultSequence(c *fiber.Ctx) error {
	sequence, err := h.sequences.GetDefault(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	steps := make([]sequenceStepResponse, 0, len(sequence.Steps))
	for _, step := range sequence.Steps {
		steps = append(steps, sequenceStepResponse{
			StepIndex:  step.StepIndex,
			OffsetDays: step.OffsetDays,
			Channel:    string(step.Channel),
			Subject:    step.Subject,
		})
	}

	return c.Status(fiber.StatusOK).JSON(sequenceResponse{
		ID:        sequence.ID,
		Name:      sequence.Name,
		Active:    sequence.Active,
		IsDefault: sequence.IsDefault,
		Steps:     steps,
	})
}

func parseAttemptListParams(c *fiber.Ctx) (repository.AttemptListParams, error) {
	params := repository.AttemptListParams{
		Page:     c.QueryInt("page", defaultPage),
		PageSize: c.QueryInt("pageSize", defaultPageSize),
	}

	if params.Page < 1 {
		return repository.AttemptListParams{}, fmt.Errorf("%w: page must be >= 1", domain.ErrValidation)
	}
	if params.PageSize < 1 || params.PageSize > maxPageSize {
		return repository.AttemptListParams{}, fmt.Errorf("%w: pageSize must be between 1 and %d", domain.ErrValidation, maxPageSize)
	}

	if rawStatus := strings.TrimSpace(c.Query("status")); rawStatus != "" {
		status, err := domain.ParseAttemptStatusFromString(rawStatus)
		if err != nil {
			return repository.AttemptListParams{}, err
		}
		params.Status = &status
	}

	if rawChannel := strings.TrimSpace(c.Query("channel")); rawChannel != "" {
		channel, err := domain.ParseChannelFromString(rawChannel)
		if err != nil {
			return repository.AttemptListParams{}, err
		}
		params.Channel = &channel
	}

	if leadID := strings.TrimSpace(c.Query("leadId")); leadID != "" {
		params.LeadID = &leadID
	}

	return params, nil
}

func toAttemptResponses(attempts []domain.WinbackAttempt) []attemptResponse {
	responses := make([]attemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		responses = append(responses, attemptResponse{
			ID:            attempt.ID,
			LeadID:        attempt.LeadID,
			SequenceID:    attempt.SequenceID,
			StepIndex:     attempt.StepIndex,
			Channel:       string(attempt.Channel),
			ScheduledDate: attempt.ScheduledDate,
			Status:        string(attempt.Status),
			ExecutedDate:  attempt.ExecutedDate,
			Notes:         attempt.Notes,
		})
	}
	return responses
}

func requestCorrelationID(c *fiber.Ctx) string {
	if value := strings.TrimSpace(c.Get(fiber.HeaderXRequestID)); value != "" {
		return value
	}
	if value, ok := c.Locals("requestid").(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
