package handler

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/kursadbilgin/winback-engine/internal/joblock"
	"github.com/kursadbilgin/winback-engine/internal/observability"
	"github.com/kursadbilgin/winback-engine/internal/service"
)

// EnrollmentJob runs one enrollment pass on demand.
type EnrollmentJob interface {
	Run(ctx context.Context) (*service.EnrollmentResult, error)
}

// DispatchJob runs one dispatch pass on demand.
type DispatchJob interface {
	Run(ctx context.Context) (*service.DispatchResult, error)
}

// JobHandler exposes the schedulers' jobs as manual triggers so operators can
// run them outside their schedule.
type JobHandler struct {
	enrollment EnrollmentJob
	dispatch   DispatchJob
}

func NewJobHandler(enrollment EnrollmentJob, dispatch DispatchJob) (*JobHandler, error) {
	if enrollment == nil {
		return nil, fmt.Errorf("enrollment job is required")
	}
	if dispatch == nil {
		return nil, fmt.Errorf("dispatch job is required")
	}
	return &JobHandler{enrollment: enrollment, dispatch: dispatch}, nil
}

func RegisterJobRoutes(router fiber.Router, enrollment EnrollmentJob, dispatch DispatchJob) error {
	h, err := NewJobHandler(enrollment, dispatch)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/jobs/enrollment/run", h.RunEnrollment)
	v1.Post("/jobs/dispatch/run", h.RunDispatch)

	return nil
}

type jobRunResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Results any    `json:"results"`
}

func (h *JobHandler) RunEnrollment(c *fiber.Ctx) error {
	ctx := jobContext(c)

	result, err := h.enrollment.Run(ctx)
	if err != nil {
		return toJobHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(jobRunResponse{
		Success: true,
		Message: fmt.Sprintf("enrolled %d of %d eligible leads", result.Enrolled, result.Eligible),
		Results: result,
	})
}

func (h *JobHandler) RunDispatch(c *fiber.Ctx) error {
	ctx := jobContext(c)

	result, err := h.dispatch.Run(ctx)
	if err != nil {
		return toJobHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(jobRunResponse{
		Success: true,
		Message: fmt.Sprintf("processed %d due attempts", result.Processed),
		Results: result,
	})
}

// jobContext detaches the run from the request context so the job's logs
// still carry the request id. Manual runs are short; they inherit the
// request's cancellation.
func jobContext(c *fiber.Ctx) context.Context {
	ctx := c.Context()
	if id := requestCorrelationID(c); id != "" {
		return observability.WithCorrelationID(ctx, id)
	}
	return ctx
}

func toJobHTTPError(err error) error {
	switch {
	case errors.Is(err, service.ErrNoDefaultSequence):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, joblock.ErrLockHeld):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
