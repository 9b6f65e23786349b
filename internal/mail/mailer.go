package mail

import (
	"context"
	"fmt"
	"strings"
)

// Mailer is the outbound mail delivery port.
type Mailer interface {
	Send(ctx context.Context, msg Message) (*SendReceipt, error)
}

// Message is one outbound email.
type Message struct {
	To      string
	Subject string
	Body    string
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("recipient is required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("subject is required")
	}
	if strings.TrimSpace(m.Body) == "" {
		return fmt.Errorf("body is required")
	}
	return nil
}

// SendReceipt stores delivery metadata for audit persistence.
type SendReceipt struct {
	ProviderMessageID string
	StatusCode        int
}

// MailerError classifies delivery failures. Permanent failures (bad address,
// rejected content) will not succeed on a later identical send.
type MailerError struct {
	StatusCode int
	Message    string
	Permanent  bool
	Cause      error
}

func (e *MailerError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	parts = append(parts, "mailer error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *MailerError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}
