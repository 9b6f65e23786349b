package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kursadbilgin/winback-engine/internal/config"
	"github.com/kursadbilgin/winback-engine/internal/domain"
	"github.com/kursadbilgin/winback-engine/internal/handler"
	"github.com/kursadbilgin/winback-engine/internal/infra/postgresql"
	"github.com/kursadbilgin/winback-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/kursadbilgin/winback-engine/internal/infra/redis"
	"github.com/kursadbilgin/winback-engine/internal/mail"
	"github.com/kursadbilgin/winback-engine/internal/observability"
	"github.com/kursadbilgin/winback-engine/internal/outreach"
	"github.com/kursadbilgin/winback-engine/internal/queue"
	"github.com/kursadbilgin/winback-engine/internal/repository"
	"github.com/kursadbilgin/winback-engine/internal/service"
	"github.com/kursadbilgin/winback-engine/internal/transport"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		logger.Fatal("postgres initialization failed", zap.Error(err))
	}

	if err := migrations.Migrate(db); err != nil {
		logger.Fatal("database migrations failed", zap.Error(err))
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("postgres underlying db init failed", zap.Error(err))
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		logger.Fatal("redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatal("rabbitmq initialization failed", zap.Error(err))
	}
	defer rabbit.Close()

	mailer, err := buildMailer(cfg)
	if err != nil {
		logger.Fatal("mailer initialization failed", zap.Error(err))
	}

	limiter, err := infraredis.NewSendRateLimiter(rdb, cfg.EmailRatePerSec)
	if err != nil {
		logger.Fatal("rate limiter initialization failed", zap.Error(err))
	}

	locker, err := infraredis.NewRunLock(rdb, time.Duration(cfg.JobLockTTLSeconds)*time.Second)
	if err != nil {
		logger.Fatal("job lock initialization failed", zap.Error(err))
	}

	leadRepo := repository.NewGormLeadRepo(db)
	sequenceRepo := repository.NewGormSequenceRepo(db)
	attemptRepo := repository.NewGormAttemptRepo(db)
	enrollmentRepo := repository.NewGormEnrollmentRepo(db)
	taskRepo := repository.NewGormTaskRepo(db)
	jobRunRepo := repository.NewGormJobRunRepo(db)

	emailHandler, err := outreach.NewEmailHandler(mailer, limiter, logger)
	if err != nil {
		logger.Fatal("email handler initialization failed", zap.Error(err))
	}
	callHandler, err := outreach.NewCallHandler(taskRepo)
	if err != nil {
		logger.Fatal("call handler initialization failed", zap.Error(err))
	}
	registry := outreach.NewRegistry(emailHandler, callHandler, outreach.NewLinkedInHandler())

	metrics := observability.NewMetrics()
	publisher := queue.NewRabbitMQPublisher(rabbit)

	window := domain.EligibilityWindow{
		MinDays: cfg.EligibilityMinDays,
		MaxDays: cfg.EligibilityMaxDays,
	}
	if err := window.Validate(); err != nil {
		logger.Fatal("invalid eligibility window", zap.Error(err))
	}

	enrollmentSvc := service.NewEnrollmentService(
		leadRepo, sequenceRepo, enrollmentRepo, jobRunRepo,
		locker, metrics, logger, window, cfg.EnrollmentLeadsPerRun,
	)
	dispatchSvc := service.NewDispatchService(
		attemptRepo, leadRepo, sequenceRepo, jobRunRepo,
		registry, publisher, locker, metrics, logger, cfg.DispatchBatchSize,
	)

	enrollmentRunner, err := service.NewRunner(
		domain.JobEnrollment,
		time.Duration(cfg.EnrollIntervalMinutes)*time.Minute,
		func(ctx context.Context) error {
			_, err := enrollmentSvc.Run(ctx)
			return err
		},
		logger,
	)
	if err != nil {
		logger.Fatal("enrollment runner initialization failed", zap.Error(err))
	}
	dispatchRunner, err := service.NewRunner(
		domain.JobDispatch,
		time.Duration(cfg.DispatchIntervalMinutes)*time.Minute,
		func(ctx context.Context) error {
			_, err := dispatchSvc.Run(ctx)
			return err
		},
		logger,
	)
	if err != nil {
		logger.Fatal("dispatch runner initialization failed", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:      "winback-engine",
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(requestid.New())
	app.Use(metrics.HTTPMiddleware())
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	if err := handler.RegisterJobRoutes(app, enrollmentSvc, dispatchSvc); err != nil {
		logger.Fatal("job route registration failed", zap.Error(err))
	}
	if err := handler.RegisterAttemptRoutes(app, attemptRepo, leadRepo, taskRepo, sequenceRepo); err != nil {
		logger.Fatal("attempt route registration failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, groupCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("winback-engine api started", zap.Int("port", cfg.APIPort))
		return app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	})
	g.Go(func() error {
		return enrollmentRunner.Start(groupCtx)
	})
	g.Go(func() error {
		return dispatchRunner.Start(groupCtx)
	})
	g.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("winback-engine stopped with error", zap.Error(err))
	}
	logger.Info("winback-engine stopped")
}

func buildMailer(cfg *config.Config) (mail.Mailer, error) {
	switch cfg.MailProvider {
	case config.MailProviderWebhook:
		return mail.NewWebhookMailer(cfg.MailWebhookURL, cfg.MailFrom)
	case config.MailProviderSMTP:
		return mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)
	default:
		return nil, fmt.Errorf("unsupported mail provider %q", cfg.MailProvider)
	}
}
