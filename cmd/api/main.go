package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yoyaku/internal/api"
	"yoyaku/internal/config"
	"yoyaku/internal/domain"
	"yoyaku/internal/events"
	"yoyaku/internal/google"
	"yoyaku/internal/logging"
	"yoyaku/internal/metrics"
	"yoyaku/internal/repository"
	"yoyaku/internal/service"
	"yoyaku/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	rules := cfg.Rules()

	calendarService, err := google.NewCalendarService(
		cfg.Google.CredentialsFile,
		cfg.Google.CredentialsJSON,
		cfg.Google.CalendarID,
		rules.Location(),
		&logger,
	)
	if err != nil {
		logger.Error().Err(err).Msg("init calendar service")
		return err
	}

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventBus := events.NewEventBus()
	locker := buildSlotLocker(redisClient, &logger)
	journalQueue := startJournal(ctx, cfg, redisClient, &logger)

	availabilityService := service.NewAvailabilityService(calendarService, rules, eventBus, &logger)
	bookingService := service.NewBookingService(
		calendarService,
		locker,
		eventBus,
		journalQueue,
		rules,
		cfg.Schedule.MeetingLocation,
		&logger,
	)

	httpServer := api.NewHTTPServer(cfg.API, availabilityService, bookingService, &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := baseLogger.With().Str("component", "api-main").Logger()

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(context.Background(), redisClient); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

func buildSlotLocker(redisClient *redis.Client, logger *zerolog.Logger) domain.SlotLocker {
	memory := repository.NewMemorySlotLocker()
	if redisClient == nil {
		return memory
	}
	return repository.NewFailoverSlotLocker(repository.NewRedisSlotLocker(redisClient), memory, logger)
}

func startJournal(ctx context.Context, cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) domain.JournalQueue {
	if !cfg.Journal.Enabled {
		return nil
	}

	journalService, err := google.NewJournalService(
		cfg.Google.CredentialsFile,
		cfg.Google.CredentialsJSON,
		cfg.Journal.SpreadsheetID,
		cfg.Journal.SheetName,
	)
	if err != nil {
		logger.Warn().Err(err).Msg("journal init failed, continuing without journal")
		return nil
	}

	journalWorker := worker.NewJournalWorker(journalService, redisClient, worker.RetryPolicy{}, logger)
	go journalWorker.Start(ctx)

	logger.Info().Str("spreadsheet", cfg.Journal.SpreadsheetID).Msg("booking journal enabled")
	return journalWorker
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("API server stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
