package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/opustools/opustools-go/internal/cache"
	workerHandler "github.com/opustools/opustools-go/internal/handler/worker"
	"github.com/opustools/opustools-go/internal/logger"
	"github.com/opustools/opustools-go/internal/mailer"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/processor"
	"github.com/opustools/opustools-go/internal/repository/mariadb"
	"github.com/opustools/opustools-go/internal/task"
	"github.com/opustools/opustools-go/internal/usecase/account"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
	"github.com/opustools/opustools-go/internal/usecase/maintenance"
	"github.com/opustools/opustools-go/internal/usecase/pdftool"
)

// StartWorker starts an asynq worker handling every task type the real worker
// registers, with the cache pointed at redisAddr.
// It returns a function to gracefully shut down the worker.
func StartWorker(dbConn *sql.DB, strg port.Storage, redisAddr string) func() {
	ca := cache.NewCache(redisAddr, "")
	imageSvc := imagetool.NewJobProcessor(mariadb.NewImageJobRepository(dbConn), strg,
		processor.NewImageProcessor(processor.NewWebPEncoder(), processor.DefaultMaxPixels), ca)
	pdfSvc := pdftool.NewJobProcessor(mariadb.NewPdfJobRepository(dbConn), strg,
		processor.NewPdfProcessor(processor.NewPDFEngine()), ca)
	mailSvc := account.NewPasswordResetMailer(mariadb.NewUserRepository(dbConn), mailer.LogMailer{}, "http://localhost:3000")
	cleanupSvc := maintenance.NewMediaCleaner(strg, time.Hour)

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

	srv := asynq.NewServer(asynq.RedisClientOpt{Addr: redisAddr}, asynq.Config{Concurrency: 5})
	if err := srv.Start(mux); err != nil {
		logger.Errorf(context.Background(), "worker did not start: %v", err)
		return func() {}
	}

	return func() {
		srv.Shutdown()
	}
}
