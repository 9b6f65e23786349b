package outreach

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"

	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/mail"
	"github.com/kursadbilgin/winback-engine/internal/ratelimit"
	"go.uber.org/zap"
)

const (
	defaultEmailSubject = "We'd love to reconnect"
	defaultEmailBody    = "Hi {{.Name}},\n\nIt has been a while since we last spoke. " +
		"A lot has changed on our side and we believe it is worth another look.\n\n" +
		"Would you be open to a short call?"
)

type templateData struct {
	Name string
}

// EmailHandler renders the step's message template and hands it to the
// outbound mail integration, throttled by the send rate limiter.
type EmailHandler struct {
	mailer  mail.Mailer
	limiter ratelimit.RateLimiter
	logger  *zap.Logger
}

func NewEmailHandler(mailer mail.Mailer, limiter ratelimit.RateLimiter, logger *zap.Logger) (*EmailHandler, error) {
	if mailer == nil {
		return nil, fmt.Errorf("mailer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &EmailHandler{
		mailer:  mailer,
		limiter: limiter,
		logger:  logger,
	}, nil
}

func (h *EmailHandler) Channel() domain.Channel { return domain.ChannelEmail }

func (h *EmailHandler) Execute(ctx context.Context, attempt domain.WinbackAttempt, lead domain.Lead, step *domain.SequenceStep) Result {
	response := map[string]string{"handler": "email-automation"}

	if lead.Email == nil || strings.TrimSpace(*lead.Email) == "" {
		return Result{
			Outcome:  OutcomeFailed,
			Notes:    "lead has no email address",
			Response: response,
		}
	}

	subject, body, err := h.renderMessage(lead, step)
	if err != nil {
		return Result{
			Outcome:  OutcomeFailed,
			Notes:    fmt.Sprintf("failed to render message template: %v", err),
			Response: response,
		}
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx, strings.ToLower(domain.ChannelEmail.String())); err != nil {
			return Result{
				Outcome:  OutcomeFailed,
				Notes:    fmt.Sprintf("rate limiter wait failed: %v", err),
				Response: response,
			}
		}
	}

	receipt, err := h.mailer.Send(ctx, mail.Message{
		To:      strings.TrimSpace(*lead.Email),
		Subject: subject,
		Body:    body,
	})
	if err != nil {
		h.logger.Warn("winback email send failed",
			zap.String("attemptId", attempt.ID),
			zap.String("leadId", lead.ID),
			zap.Error(err),
		)
		return Result{
			Outcome:  OutcomeFailed,
			Notes:    fmt.Sprintf("mail delivery failed: %v", err),
			Response: response,
		}
	}

	if receipt != nil && receipt.ProviderMessageID != "" {
		response["providerMessageId"] = receipt.ProviderMessageID
	}

	return Result{
		Outcome:  OutcomeSent,
		Notes:    fmt.Sprintf("winback email sent to %s", strings.TrimSpace(*lead.Email)),
		Response: response,
	}
}

func (h *EmailHandler) renderMessage(lead domain.Lead, step *domain.SequenceStep) (subject, body string, err error) {
	subject = defaultEmailSubject
	bodyTemplate := defaultEmailBody

	if step != nil {
		if step.Subject != nil && strings.TrimSpace(*step.Subject) != "" {
			subject = strings.TrimSpace(*step.Subject)
		}
		if step.MessageTemplate != nil && strings.TrimSpace(*step.MessageTemplate) != "" {
			bodyTemplate = *step.MessageTemplate
		}
	}

	tmpl, err := template.New("winback-email").Parse(bodyTemplate)
	if err != nil {
		return "", "", err
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, templateData{Name: lead.Name}); err != nil {
		return "", "", err
	}

	return subject, rendered.String(), nil
}
