package mail

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const defaultWebhookTimeout = 10 * time.Second

type webhookSendRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// WebhookMailer delivers mail through an HTTP transactional-mail endpoint.
type WebhookMailer struct {
	client   *resty.Client
	endpoint string
	from     string
}

func NewWebhookMailer(endpoint, from string) (*WebhookMailer, error) {
	client := resty.New()
	client.SetTimeout(defaultWebhookTimeout)
	client.SetRetryCount(0)

	return NewWebhookMailerWithClient(endpoint, from, client)
}

func NewWebhookMailerWithClient(endpoint, from string, client *resty.Client) (*WebhookMailer, error) {
	trimmedEndpoint := strings.TrimSpace(endpoint)
	if trimmedEndpoint == "" {
		return nil, fmt.Errorf("mail webhook endpoint is required")
	}
	if _, err := url.ParseRequestURI(trimmedEndpoint); err != nil {
		return nil, fmt.Errorf("invalid mail webhook endpoint: %w", err)
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sender address is required")
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	if client.GetClient().Timeout == 0 {
		client.SetTimeout(defaultWebhookTimeout)
	}
	client.SetRetryCount(0)

	return &WebhookMailer{
		client:   client,
		endpoint: trimmedEndpoint,
		from:     strings.TrimSpace(from),
	}, nil
}

func (m *WebhookMailer) Send(ctx context.Context, msg Message) (*SendReceipt, error) {
	if m == nil || m.client == nil {
		return nil, fmt.Errorf("mailer is not initialized")
	}
	if err := msg.Validate(); err != nil {
		return nil, &MailerError{Message: "invalid message", Permanent: true, Cause: err}
	}

	response, err := m.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(webhookSendRequest{
			To:      msg.To,
			From:    m.from,
			Subject: msg.Subject,
			Body:    msg.Body,
		}).
		Post(m.endpoint)
	if err != nil {
		return nil, &MailerError{
			Message:   "mail provider request failed",
			Permanent: errors.Is(err, context.Canceled),
			Cause:     err,
		}
	}
	if response == nil {
		return nil, &MailerError{Message: "mail provider returned empty response"}
	}

	statusCode := response.StatusCode()
	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		return &SendReceipt{
			StatusCode:        statusCode,
			ProviderMessageID: providerMessageID(response),
		}, nil
	}

	return nil, &MailerError{
		StatusCode: statusCode,
		Message:    fmt.Sprintf("mail provider returned status %d", statusCode),
		Permanent:  isPermanentHTTPStatus(statusCode),
	}
}

func isPermanentHTTPStatus(statusCode int) bool {
	if statusCode == http.StatusTooManyRequests {
		return false
	}
	return statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError
}

func providerMessageID(response *resty.Response) string {
	if response == nil {
		return ""
	}

	for _, key := range []string{"X-Message-ID", "X-Message-Id", "X-Request-ID", "X-Request-Id"} {
		if value := strings.TrimSpace(response.Header().Get(key)); value != "" {
			return value
		}
	}

	return ""
}
