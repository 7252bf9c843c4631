package main

import (
	"compliance_checker/internal/api"
	"compliance_checker/internal/auth"
	"compliance_checker/internal/config"
	"compliance_checker/internal/processor"
	"compliance_checker/internal/repository"
	"compliance_checker/internal/repository/memory"
	"compliance_checker/internal/repository/redisstore"
	"compliance_checker/internal/repository/sqlite"
	"compliance_checker/internal/rules"
	"compliance_checker/internal/service"
	"compliance_checker/pkg/crypto"
	"compliance_checker/pkg/logger"
	"compliance_checker/pkg/metrics"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
)

type stores struct {
	sessions   repository.SessionRepository
	checks     repository.CheckRepository
	challenges repository.ChallengeStore
	closers    []func() error
}

func serveCmd(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to YAML config (optional)")
	_ = fs.Parse(args)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return err
	}

	log := logger.New(cfg.Logging.Format, cfg.Logging.Level, os.Stdout)
	slog.SetDefault(log)
	log.Info("Starting application", slog.String("name", appName), slog.String("version", api.Version))

	ctx := context.Background()

	table, err := loadRules(ctx, cfg, log)
	if err != nil {
		return err
	}

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(log)

	metricsCollector := metrics.NewMetricsCollector(log)
	signer := crypto.NewSigner(cfg.Auth.SecretKey, log)
	notificationService := setupNotificationService(cfg, log)

	checkProcessor := processor.NewCheckProcessor(table, st.checks, metricsCollector, cfg.Check.Delay, log)

	var verifier auth.CodeVerifier = auth.DemoVerifier{}
	if cfg.Auth.Mode == config.AuthModeStrict {
		verifier = auth.NewStoredCodeVerifier(st.challenges, cfg.Auth.MaxAttempts)
	}
	otpService := auth.NewOTPService(st.sessions, st.challenges, verifier, notificationService, metricsCollector, auth.Options{
		CodeTTL:     cfg.Auth.CodeTTL,
		SendLimit:   cfg.Auth.SendLimit,
		SendWindow:  cfg.Auth.SendWindow,
		SendDelay:   cfg.Auth.SendDelay,
		VerifyDelay: cfg.Auth.VerifyDelay,
		ResendDelay: cfg.Auth.ResendDelay,
	}, log)

	apiHandler := api.NewAPIHandler(checkProcessor, otpService, signer, log).
		WithRequestTimeout(cfg.Server.RequestTimeout)

	metricsServer := metricsCollector.StartMetricsServer(cfg.Server.MetricsAddr)
	httpServer, serveErr := startHTTPServer(cfg, apiHandler, log)
	waitForShutdown(log, cfg.Server.ShutdownTimeout, serveErr, httpServer, metricsServer, notificationService, metricsCollector)
	log.Info("Application shutdown complete")
	return nil
}

func loadRules(ctx context.Context, cfg config.Config, log *slog.Logger) (*rules.Table, error) {
	var src rules.Source = rules.StaticSource{}
	switch {
	case cfg.Rules.File != "":
		src = rules.FileSource{Path: cfg.Rules.File}
	case cfg.Rules.S3.Bucket != "":
		s3src, err := rules.NewS3Source(ctx, cfg.Rules.S3.Bucket, cfg.Rules.S3.Key, cfg.Rules.S3.Region)
		if err != nil {
			return nil, err
		}
		src = s3src
	}
	return rules.Load(ctx, src, log)
}

func openStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*stores, error) {
	st := &stores{}

	if cfg.Storage.SQLitePath != "" {
		db, err := sqlite.Open(ctx, cfg.Storage.SQLitePath)
		if err != nil {
			return nil, err
		}
		st.sessions, st.checks = db, db
		st.closers = append(st.closers, db.Close)
		log.Info("Using SQLite storage", slog.String("path", cfg.Storage.SQLitePath))
	} else {
		st.sessions = memory.NewSessionRepository()
		st.checks = memory.NewCheckRepository()
	}

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			st.close(log)
			return nil, fmt.Errorf("connect redis %s: %w", cfg.Redis.Addr, err)
		}
		st.challenges = redisstore.NewChallengeStore(rdb)
		st.closers = append(st.closers, rdb.Close)
		log.Info("Using Redis challenge store", slog.String("addr", cfg.Redis.Addr))
	} else {
		st.challenges = memory.NewChallengeStore()
	}

	return st, nil
}

func (s *stores) close(log *slog.Logger) {
	for _, c := range s.closers {
		if err := c(); err != nil {
			log.Error("Failed to close store", slog.String("error", err.Error()))
		}
	}
	s.closers = nil
}

func setupNotificationService(cfg config.Config, log *slog.Logger) *service.NotificationService {
	emailService := &service.LogEmailService{Logger: log}
	smsService := &service.LogSMSService{Logger: log}

	return service.NewNotificationService(
		emailService,
		smsService,
		cfg.Notifications.Workers,
		log,
	)
}

func startHTTPServer(cfg config.Config, apiHandler *api.APIHandler, log *slog.Logger) (*http.Server, <-chan error) {
	mux := http.NewServeMux()

	apiHandler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.CORS(cfg.Server.AllowedOrigins, mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server failed", slog.String("error", err.Error()))
			errCh <- err
		}
	}()

	return server, errCh
}

func waitForShutdown(
	log *slog.Logger,
	timeout time.Duration,
	serveErr <-chan error,
	httpServer *http.Server,
	metricsServer *http.Server,
	notificationService *service.NotificationService,
	metricsCollector *metrics.MetricsCollector,
) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("Shutdown signal received")
	case <-serveErr:
		log.Info("Shutting down after server failure")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", slog.String("error", err.Error()))
	}

	if err := metricsServer.Shutdown(ctx); err != nil {
		log.Error("Metrics server shutdown failed", slog.String("error", err.Error()))
	}

	if err := notificationService.Shutdown(ctx); err != nil {
		log.Error("Notification service shutdown failed", slog.String("error", err.Error()))
	}
	if err := metricsCollector.Shutdown(ctx); err != nil {
		log.Error("Metrics collector shutdown failed", slog.String("error", err.Error()))
	}
}
