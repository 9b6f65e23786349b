package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookMailerSendSuccess(t *testing.T) {
	t.Parallel()

	var gotBody webhookSendRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}

		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}

		w.Header().Set("X-Message-ID", "mail-msg-1")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"accepted":true}`))
	}))
	defer server.Close()

	mailer, err := NewWebhookMailer(server.URL, "outreach@example.com")
	if err != nil {
		t.Fatalf("NewWebhookMailer() error = %v", err)
	}

	msg := Message{
		To:      "lost-lead@example.com",
		Subject: "We'd love to reconnect",
		Body:    "It has been a while.",
	}

	receipt, err := mailer.Send(context.Background(), msg)
	if err != nil {
		t.Fatalf("Send() unexpected error: %v", err)
	}

	if receipt.StatusCode != http.StatusAccepted {
		t.Fatalf("StatusCode = %d, want %d", receipt.StatusCode, http.StatusAccepted)
	}
	if receipt.ProviderMessageID != "mail-msg-1" {
		t.Fatalf("ProviderMessageID = %q, want %q", receipt.ProviderMessageID, "mail-msg-1")
	}

	if gotBody.To != msg.To {
		t.Fatalf("request To = %q, want %q", gotBody.To, msg.To)
	}
	if gotBody.From != "outreach@example.com" {
		t.Fatalf("request From = %q, want %q", gotBody.From, "outreach@example.com")
	}
	if gotBody.Subject != msg.Subject {
		t.Fatalf("request Subject = %q, want %q", gotBody.Subject, msg.Subject)
	}
}

func TestWebhookMailerSendErrorClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		statusCode    int
		wantPermanent bool
	}{
		{name: "bad request is permanent", statusCode: http.StatusBadRequest, wantPermanent: true},
		{name: "unprocessable is permanent", statusCode: http.StatusUnprocessableEntity, wantPermanent: true},
		{name: "too many requests is transient", statusCode: http.StatusTooManyRequests, wantPermanent: false},
		{name: "server error is transient", statusCode: http.StatusServiceUnavailable, wantPermanent: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			mailer, err := NewWebhookMailer(server.URL, "outreach@example.com")
			if err != nil {
				t.Fatalf("NewWebhookMailer() error = %v", err)
			}

			_, err = mailer.Send(context.Background(), Message{
				To:      "lost-lead@example.com",
				Subject: "subject",
				Body:    "body",
			})
			if err == nil {
				t.Fatal("Send() expected error")
			}

			var mailerErr *MailerError
			if !errors.As(err, &mailerErr) {
				t.Fatalf("error type = %T, want *MailerError", err)
			}
			if mailerErr.StatusCode != tt.statusCode {
				t.Fatalf("StatusCode = %d, want %d", mailerErr.StatusCode, tt.statusCode)
			}
			if mailerErr.Permanent != tt.wantPermanent {
				t.Fatalf("Permanent = %v, want %v", mailerErr.Permanent, tt.wantPermanent)
			}
		})
	}
}

func TestWebhookMailerRejectsInvalidMessage(t *testing.T) {
	t.Parallel()

	mailer, err := NewWebhookMailer("https://mail.example.com/v1/send", "outreach@example.com")
	if err != nil {
		t.Fatalf("NewWebhookMailer() error = %v", err)
	}

	_, err = mailer.Send(context.Background(), Message{Subject: "s", Body: "b"})
	var mailerErr *MailerError
	if !errors.As(err, &mailerErr) || !mailerErr.Permanent {
		t.Fatalf("Send() error = %v, want permanent MailerError", err)
	}
}

func TestNewWebhookMailerValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewWebhookMailer("", "outreach@example.com"); err == nil {
		t.Fatal("expected error for empty endpoint")
	}
	if _, err := NewWebhookMailer("not a url", "outreach@example.com"); err == nil {
		t.Fatal("expected error for invalid endpoint")
	}
	if _, err := NewWebhookMailer("https://mail.example.com/v1/send", "  "); err == nil {
		t.Fatal("expected error for empty sender")
	}
}
