package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/urfave/cli/v2"
	"golang.org/x/crypto/bcrypt"

	"github.com/pdt-ict/portal/internal/app"
	"github.com/pdt-ict/portal/internal/auth"
	"github.com/pdt-ict/portal/internal/documents"
	"github.com/pdt-ict/portal/internal/observability"
	"github.com/pdt-ict/portal/internal/platform/cache"
	"github.com/pdt-ict/portal/internal/platform/db"
	"github.com/pdt-ict/portal/internal/shared"
	"github.com/pdt-ict/portal/internal/users"
	"github.com/pdt-ict/portal/jobs"
)

const sessionCookieName = "portal_session"

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "migrate",
				Usage:   "apply pending migrations before serving",
				EnvVars: []string{"PORTAL_AUTO_MIGRATE"},
			},
		},
		Action: func(cCtx *cli.Context) error {
			if app.InTestMode() {
				slog.Default().Info("test mode detected, skipping runtime startup")
				return nil
			}
			cfg, logger, err := bootstrap()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return serve(cCtx.Context, cfg, logger, cCtx.Bool("migrate"))
		},
	}
}

func serve(ctx context.Context, cfg *app.Config, logger *slog.Logger, migrate bool) error {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return err
	}
	defer pool.Close()
	sqlDB := db.OpenSQL(pool)
	defer sqlDB.Close()
	if migrate {
		if err := db.Migrate(ctx, sqlDB); err != nil {
			return err
		}
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer jobClient.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	metrics := observability.NewMetrics()
	sessionManager := shared.NewSessionManager(redisClient, sessionCookieName, cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())

	tokens, err := auth.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return err
	}
	userStore := users.NewRepository(sqlDB)
	authService := auth.NewService(
		userStore,
		tokens,
		jobs.NewMailer(jobClient, cfg.ResetURL, logger),
		metrics,
		logger,
		auth.ServiceConfig{HashCost: bcrypt.DefaultCost, ExposeResetToken: cfg.ExposeDebugFields()},
	)
	authHandler := auth.NewHandler(auth.HandlerParams{
		Logger:            logger,
		Service:           authService,
		Sessions:          sessionManager,
		Tokens:            tokens,
		CredentialLimiter: app.LoginLimiter(cfg),
	})

	objectStore, err := documents.NewS3Store(ctx, documents.S3Config{
		Bucket:       cfg.S3Bucket,
		Region:       cfg.S3Region,
		Endpoint:     cfg.S3Endpoint,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		UsePathStyle: cfg.S3UsePathStyle,
	})
	if err != nil {
		return err
	}
	documentsHandler := documents.NewHandler(documents.NewService(objectStore), cfg.UploadMaxBytes, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		SessionManager:   sessionManager,
		AuthHandler:      authHandler,
		DocumentsHandler: documentsHandler,
		JobHandler:       jobs.NewHandler(inspector, logger),
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
	return nil
}
