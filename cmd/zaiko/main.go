package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/goayasushi/zaiko-be/cmd/zaiko/cli"
	"github.com/goayasushi/zaiko-be/internal/app"
	"github.com/goayasushi/zaiko-be/internal/auth"
	"github.com/goayasushi/zaiko-be/internal/masterdata"
	"github.com/goayasushi/zaiko-be/internal/observability"
	"github.com/goayasushi/zaiko-be/internal/platform/cache"
	"github.com/goayasushi/zaiko-be/internal/platform/db"
	"github.com/goayasushi/zaiko-be/internal/platform/storage"
	"github.com/goayasushi/zaiko-be/internal/shared"
	"github.com/goayasushi/zaiko-be/internal/users"
	"github.com/goayasushi/zaiko-be/jobs"
)

var version = "dev"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}

	if len(os.Args) > 1 && os.Args[1] == "jobs" {
		os.Exit(runJobs(ctx, redisOpts, os.Args[2:]))
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	store, err := storage.NewLocal(cfg.MediaRoot, cfg.MediaURL)
	if err != nil {
		logger.Error("init media store", slog.Any("error", err))
		os.Exit(1)
	}

	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)

	userService := users.NewService(users.NewRepository(dbpool), users.NewCache(redisClient, cfg.UserCacheTTL), logger)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTAccessTTL, nil)
	authService := auth.NewService(userService, issuer)

	masterDataHandler := masterdata.New(masterdata.Deps{
		Pool:     dbpool,
		Users:    userService,
		Store:    store,
		Purger:   jobClient,
		Audit:    auditLogger,
		Observer: metrics,
		Logger:   logger,
	})

	readiness, err := app.NewReadiness(version, dbpool, redisClient)
	if err != nil {
		logger.Error("init readiness", slog.Any("error", err))
		os.Exit(1)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		AuthMiddleware:    auth.NewMiddleware(authService, logger),
		AuthHandler:       auth.NewHandler(logger, authService),
		MasterDataHandler: masterDataHandler,
		JobHandler:        jobs.NewHandler(inspector, logger),
		Readiness:         readiness.Handler(),
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("version", version))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}

func runJobs(ctx context.Context, redisOpts asynq.RedisClientOpt, args []string) int {
	client := jobs.NewClient(redisOpts)
	defer client.Close()
	inspector := asynq.NewInspector(redisOpts)
	defer inspector.Close()

	jobsCLI, err := cli.NewJobsCLI(client, inspector)
	if err != nil {
		slog.Default().Error("init jobs cli", slog.Any("error", err))
		return 1
	}
	return jobsCLI.Run(ctx, args, cli.JobsOptions{Stdout: os.Stdout, Stderr: os.Stderr})
}
