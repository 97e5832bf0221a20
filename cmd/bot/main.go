package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/jotabarber/barberbot/internal/api/router"
	"github.com/jotabarber/barberbot/internal/booking"
	"github.com/jotabarber/barberbot/internal/bot"
	appconfig "github.com/jotabarber/barberbot/internal/config"
	"github.com/jotabarber/barberbot/internal/messaging"
	"github.com/jotabarber/barberbot/internal/observability/metrics"
	"github.com/jotabarber/barberbot/internal/reminder"
	"github.com/jotabarber/barberbot/internal/schedule"
	"github.com/jotabarber/barberbot/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting barberbot",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	loc := cfg.Location()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := prometheus.NewRegistry()
	botMetrics := metrics.NewBotMetrics(reg)

	// Storage: PostgreSQL when configured, in-memory otherwise.
	var repo booking.Repository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		repo = booking.NewPostgresRepository(pool)
		logger.Info("using postgres booking repository")
	} else {
		repo = booking.NewMemoryRepository()
		logger.Warn("DATABASE_URL not set, bookings are held in memory only")
	}

	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb = redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Error("failed to reach redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = rdb.Close() }()
	}

	var locker booking.SlotReserver
	if rdb != nil {
		locker = schedule.NewSlotLocker(rdb, cfg.SlotLockTTL, logger)
	}
	svc := booking.NewService(repo, schedule.NewParser(loc), locker, logger)

	var messenger messaging.Messenger
	if cfg.WhatsAppAccessToken != "" && cfg.WhatsAppPhoneNumberID != "" {
		messenger = messaging.NewCloudAPISender(cfg.WhatsAppAccessToken, cfg.WhatsAppPhoneNumberID, logger)
	} else {
		messenger = messaging.NewLogSender(logger)
		logger.Warn("WhatsApp credentials not set, outbound messages are logged only")
	}

	responder := bot.NewResponder(svc, messenger, cfg.OwnerNumber, loc, botMetrics, logger)

	var worker *bot.Worker
	var publisher *bot.Publisher
	if rdb != nil && !cfg.UseMemoryQueue {
		q := bot.NewRedisQueue(rdb, "")
		publisher = bot.NewPublisher(q, logger)
		worker = bot.NewWorker(responder, q, logger, bot.WithWorkerCount(cfg.WorkerCount))
		logger.Info("using redis inbound queue")
	} else {
		q := bot.NewMemoryQueue(256)
		publisher = bot.NewPublisher(q, logger)
		worker = bot.NewWorker(responder, q, logger, bot.WithWorkerCount(cfg.WorkerCount))
		logger.Info("using in-memory inbound queue")
	}
	worker.Start(ctx)

	notifyCtx, notifyCancel := context.WithTimeout(ctx, 10*time.Second)
	responder.NotifyOnline(notifyCtx)
	notifyCancel()

	sched := reminder.NewScheduler(repo, messenger, cfg.ReminderHour, loc, logger)
	go sched.Run(ctx)

	webhook := messaging.NewWebhookHandler(cfg.WhatsAppVerifyToken, cfg.WhatsAppAppSecret, publisher, botMetrics, logger)

	r := router.New(&router.Config{
		Logger:         logger,
		WebhookHandler: webhook,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")
	cancel()
	worker.Wait()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
