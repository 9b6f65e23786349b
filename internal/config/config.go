package config

import (
	"fmt"
	"strings"

	"github.com/Netflix/go-env"
)

// Mail provider selection values.
const (
	MailProviderSMTP    = "smtp"
	MailProviderWebhook = "webhook"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`
	RabbitMQURL string `env:"RABBITMQ_URL,required=true"`

	APIPort  int    `env:"API_PORT,default=8080"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	// Enrollment job.
	EnrollIntervalMinutes  int `env:"ENROLL_INTERVAL_MINUTES,default=1440"`
	EligibilityMinDays     int `env:"ELIGIBILITY_MIN_DAYS,default=30"`
	EligibilityMaxDays     int `env:"ELIGIBILITY_MAX_DAYS,default=365"`
	EnrollmentLeadsPerRun  int `env:"ENROLLMENT_LEADS_PER_RUN,default=500"`

	// Dispatch job.
	DispatchIntervalMinutes int `env:"DISPATCH_INTERVAL_MINUTES,default=15"`
	DispatchBatchSize       int `env:"DISPATCH_BATCH_SIZE,default=50"`
	EmailRatePerSec         int `env:"EMAIL_RATE_PER_SEC,default=25"`
	JobLockTTLSeconds       int `env:"JOB_LOCK_TTL_SECONDS,default=600"`

	// Outbound mail.
	MailProvider   string `env:"MAIL_PROVIDER,default=smtp"`
	MailFrom       string `env:"MAIL_FROM,default=outreach@winback.local"`
	MailWebhookURL string `env:"MAIL_WEBHOOK_URL"`
	SMTPHost       string `env:"SMTP_HOST,default=localhost"`
	SMTPPort       int    `env:"SMTP_PORT,default=587"`
	SMTPUser       string `env:"SMTP_USER"`
	SMTPPassword   string `env:"SMTP_PASSWORD"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(cfg.MailProvider)) {
	case MailProviderSMTP:
		cfg.MailProvider = MailProviderSMTP
	case MailProviderWebhook:
		cfg.MailProvider = MailProviderWebhook
		if strings.TrimSpace(cfg.MailWebhookURL) == "" {
			return nil, fmt.Errorf("MAIL_WEBHOOK_URL is required when MAIL_PROVIDER=webhook")
		}
	default:
		return nil, fmt.Errorf("invalid MAIL_PROVIDER %q", cfg.MailProvider)
	}

	return &cfg, nil
}
