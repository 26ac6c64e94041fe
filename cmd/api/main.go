package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/opustools/opustools-go/internal/cache"
	"github.com/opustools/opustools-go/internal/config"
	"github.com/opustools/opustools-go/internal/db"
	"github.com/opustools/opustools-go/internal/handler/api"
	"github.com/opustools/opustools-go/internal/logger"
	cMiddleware "github.com/opustools/opustools-go/internal/middleware"
	"github.com/opustools/opustools-go/internal/port"
	"github.com/opustools/opustools-go/internal/renderer"
	"github.com/opustools/opustools-go/internal/repository/mariadb"
	"github.com/opustools/opustools-go/internal/storage"
	"github.com/opustools/opustools-go/internal/task"
	"github.com/opustools/opustools-go/internal/token"
	"github.com/opustools/opustools-go/internal/usecase/account"
	"github.com/opustools/opustools-go/internal/usecase/imagetool"
	"github.com/opustools/opustools-go/internal/usecase/pdftool"
	"github.com/opustools/opustools-go/internal/uuid"
)

const (
	// room for the non-file form fields
	formOverhead = 1 << 20
	maxPdfFiles  = 20
	authBodySize = 64 << 10
)

type redisDeps interface {
	port.Cache
	port.ConversionCounter
	port.TokenDenyList
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init(logger.ComponentAPI)

	database := initDb(ctx, cfg)
	strg := initStorage(ctx, cfg)

	var ca redisDeps
	var dispatcher port.TaskDispatcher
	if cfg.RedisAddr != "" {
		ca = cache.NewCache(cfg.RedisAddr, cfg.RedisPassword)
		d := task.NewDispatcher(cfg.RedisAddr, cfg.RedisPassword)
		defer func() { _ = d.Close() }()
		dispatcher = d
		logger.Info(ctx, "✅  Redis cache enabled")
	} else {
		ca = cache.NewNoop()
		dispatcher = task.NewNoopDispatcher()
		logger.Warn(ctx, "⚠️  Redis not configured: caching, conversion limits and token revocation are disabled")
	}

	users := mariadb.NewUserRepository(database.DB)
	uploads := mariadb.NewUploadedFileRepository(database.DB)
	imageJobs := mariadb.NewImageJobRepository(database.DB)
	pdfJobs := mariadb.NewPdfJobRepository(database.DB)
	resets := mariadb.NewPasswordResetRepository(database.DB)
	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	rendererSvc := renderer.NewHTTPRenderer(ca, cfg.StatusCacheTTL)

	r := initRouter(ctx, cfg.TrustProxyHeaders)

	optionalAuth := cMiddleware.WithOptionalAuth(tokens, ca)
	requireAuth := cMiddleware.WithAuth(tokens, ca)

	r.Route("/api", func(r chi.Router) {
		r.Route("/image", func(r chi.Router) {
			imgCfg := imagetool.Config{MaxUploadSize: cfg.MaxUploadSize, DownloadURLTTL: cfg.DownloadURLTTL, MaxDimension: cfg.MaxImageDimension}
			creator := imagetool.NewJobCreator(uploads, imageJobs, strg, dispatcher, ca, uuid.NewUUID, imgCfg)
			allowance := cMiddleware.WithConversionAllowance(ca, port.ImageJobKind, cfg.AnonConversionLimit)
			r.With(cMiddleware.WithMaxBodySize(cfg.MaxUploadSize+formOverhead), optionalAuth, allowance).
				Post("/convert", api.CreateImageJobHandler(creator))

			statusSvc := imagetool.NewStatusGetter(imageJobs, strg, cfg.DownloadURLTTL)
			downloadSvc := imagetool.NewDownloader(imageJobs, strg)
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/status", api.GetImageJobStatusHandler(rendererSvc, statusSvc))
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/download", api.DownloadImageJobHandler(downloadSvc))
		})

		r.Route("/pdf", func(r chi.Router) {
			pdfCfg := pdftool.Config{MaxUploadSize: cfg.MaxUploadSize, DownloadURLTTL: cfg.DownloadURLTTL}
			creator := pdftool.NewJobCreator(uploads, pdfJobs, strg, dispatcher, ca, uuid.NewUUID, pdfCfg)
			allowance := cMiddleware.WithConversionAllowance(ca, port.PdfJobKind, cfg.AnonConversionLimit)
			r.With(cMiddleware.WithMaxBodySize(cfg.MaxUploadSize*maxPdfFiles+formOverhead), optionalAuth, allowance).
				Post("/process", api.CreatePdfJobHandler(creator))

			statusSvc := pdftool.NewStatusGetter(pdfJobs, strg, cfg.DownloadURLTTL)
			downloadSvc := pdftool.NewDownloader(pdfJobs, strg)
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/status", api.GetPdfJobStatusHandler(rendererSvc, statusSvc))
			r.With(cMiddleware.WithJobID()).Get("/jobs/{id}/download", api.DownloadPdfJobHandler(downloadSvc))
		})

		r.Route("/auth", func(r chi.Router) {
			r.Use(cMiddleware.WithMaxBodySize(authBodySize))

			r.Post("/register", api.RegisterHandler(account.NewRegisterer(users, tokens, uuid.NewUUID)))
			r.Post("/login", api.LoginHandler(account.NewAuthenticator(users, tokens)))
			r.Post("/password/reset", api.RequestPasswordResetHandler(
				account.NewPasswordResetRequester(users, resets, dispatcher, cfg.PasswordResetTTL)))
			r.Post("/password/reset/confirm", api.ConfirmPasswordResetHandler(
				account.NewPasswordResetConfirmer(users, resets)))

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/logout", api.LogoutHandler(account.NewSessionCloser(ca)))
				r.Get("/user", api.GetUserHandler(account.NewUserGetter(users)))
				r.Patch("/user", api.UpdateUserHandler(account.NewUserUpdater(users)))
			})
		})
	})

	listenRouter(ctx, r, cfg, database)
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
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

func initRouter(ctx context.Context, trustProxy bool) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	if trustProxy {
		logger.Info(ctx, "trusting X-Real-IP / X-Forwarded-For from the fronting proxy")
	}
	r.Use(cMiddleware.WithTrustedProxy(trustProxy))
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

func initStorage(ctx context.Context, cfg *config.Settings) port.Storage {
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

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.ServerPort),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof(ctx, "🚀 API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
	}
}
