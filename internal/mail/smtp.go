package mail

import (
	"context"
	"fmt"
	"strings"

	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers mail through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(host string, port int, user, password, from string) (*SMTPMailer, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sender address is required")
	}

	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, user, password),
		from:   strings.TrimSpace(from),
	}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (*SendReceipt, error) {
	if m == nil || m.dialer == nil {
		return nil, fmt.Errorf("mailer is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return nil, &MailerError{Message: "invalid message", Permanent: true, Cause: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", m.from)
	gm.SetHeader("To", msg.To)
	gm.SetHeader("Subject", msg.Subject)
	gm.SetBody("text/plain", msg.Body)

	// gomail has no context support; the dialer's own timeouts bound the call.
	if err := m.dialer.DialAndSend(gm); err != nil {
		return nil, &MailerError{Message: "smtp send failed", Cause: err}
	}

	return &SendReceipt{}, nil
}
