package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/opustools/opustools-go/internal/cache"
	"github.com/opustools/opustools-go/internal/config"
	"github.com/opustools/opustools-go/internal/db"
	workerHandler "github.com/opustools/opustools-go/internal/handler/worker"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/mailer"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/processor"
	"github.com/opustools/opustools-go/internal/repository/mariadb"
	"github.com/opustools/opustools-go/internal/storage"
	"github.com/opustools/opustools-go/internal/task"
	"github.com/opustools/opustools-go/internal/usecase/account"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
	"github.com/opustools/opustools-go/internal/usecase/maintenance"
	"github.com/opustools/opustools-go/internal/usecase/pdftool"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init(logger.ComponentWorker)

	if cfg.RedisAddr == "" {
		logger.Error(ctx, "⚠️  REDIS_ADDR must be set to run the worker")
		os.Exit(1)
	}

	database := initDb(cfg)
	strg := initStorage(cfg)

	ca := cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
	users := mariadb.NewUserRepository(database.DB)
	imageJobs := mariadb.NewImageJobRepository(database.DB)
	pdfJobs := mariadb.NewPdfJobRepository(database.DB)

	imageSvc := imagetool.NewJobProcessor(imageJobs, strg, processor.NewImageProcessor(processor.NewWebPEncoder(), cfg.MaxImagePixels), ca)
	pdfSvc := pdftool.NewJobProcessor(pdfJobs, strg, processor.NewPdfProcessor(processor.NewPDFEngine()), ca)
	mailSvc := account.NewPasswordResetMailer(users, initMailer(cfg), cfg.FrontendURL)
	cleanupSvc := maintenance.NewMediaCleaner(strg, cfg.CleanupMaxAge)

	mux := asynq.NewServeMux()
	mux.HandleFunc(task.TypeProcessImage, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseJobPayload(t)
		if err != nil {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return workerHandler.ProcessImageJobHandler(ctx, p, imageSvc)
	})
	mux.HandleFunc(task.TypeProcessPdf, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParseJobPayload(t)
		if err != nil {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return workerHandler.ProcessPdfJobHandler(ctx, p, pdfSvc)
	})
	mux.HandleFunc(task.TypePasswordResetEmail, func(ctx context.Context, t *asynq.Task) error {
		p, err := task.ParsePasswordResetEmailPayload(t)
		if err != nil {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return workerHandler.SendPasswordResetEmailHandler(ctx, p, mailSvc)
	})
	mux.HandleFunc(task.TypeCleanupMedia, func(ctx context.Context, t *asynq.Task) error {
		return workerHandler.CleanupMediaHandler(ctx, cleanupSvc)
	})

	runWorker(ctx, mux, cfg, database)
}

func initDb(cfg *config.Settings) *db.Database {
	ctx := context.Background()
	logger.Info(ctx, "initialising database...")

	database, err := db.New(ctx, db.Config{
		DSN:             cfg.MariaDBDSN,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	})
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}
	return database
}

func initStorage(cfg *config.Settings) port.Storage {
	ctx := context.Background()
	strg, err := storage.NewStorage(
		cfg.MinioEndpoint,
		cfg.MinioAccessKey,
		cfg.MinioSecretKey,
		cfg.MinioUseSSL,
		cfg.MinioBucket,
	)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize MinIO client: %v", err)
		os.Exit(1)
	}
	if err := strg.InitBucket(ctx); err != nil {
		logger.Errorf(ctx, "❌  Failed to initialize bucket %q: %v", cfg.MinioBucket, err)
		os.Exit(1)
	}

	return strg
}

func initMailer(cfg *config.Settings) port.Mailer {
	if cfg.SMTPHost == "" {
		logger.Warn(context.Background(), "⚠️  SMTP_HOST not set: e-mails are written to the log")
		return mailer.LogMailer{}
	}
	return mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
}

func runWorker(ctx context.Context, mux *asynq.ServeMux, cfg *config.Settings, database *db.Database) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{Concurrency: cfg.WorkerConcurrency})

	scheduler := asynq.NewScheduler(redisOpt, nil)
	entryID, err := scheduler.Register(cfg.CleanupCron, task.NewCleanupMediaTask())
	if err != nil {
		logger.Errorf(ctx, "❌  Invalid CLEANUP_CRON %q: %v", cfg.CleanupCron, err)
		os.Exit(1)
	}
	logger.Infof(ctx, "media cleanup scheduled with %q (entry %s)", cfg.CleanupCron, entryID)

	// Start returns once the processors and the scheduler loop are running;
	// signals are handled below, not by asynq.
	if err := srv.Start(mux); err != nil {
		logger.Errorf(ctx, "❌  Worker failed: %v", err)
		os.Exit(1)
	}
	if err := scheduler.Start(); err != nil {
		logger.Errorf(ctx, "❌  Scheduler failed: %v", err)
		srv.Shutdown()
		os.Exit(1)
	}
	logger.Info(ctx, "🚀 Worker started")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	scheduler.Shutdown()
	srv.Shutdown() // stop accepting new tasks, finish in-flight

	if err := database.Close(); err != nil {
		logger.Warnf(ctx, "DB close error: %v", err)
	}
	logger.Info(ctx, "✅  Worker gracefully stopped")
}
