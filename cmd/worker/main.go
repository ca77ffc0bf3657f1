package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/ecopick/recycle-api/internal/channel"
	"github.com/ecopick/recycle-api/internal/config"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository/postgres"
	notificationService "github.com/ecopick/recycle-api/internal/service/notification"
	"github.com/ecopick/recycle-api/pkg/clock"
	"github.com/ecopick/recycle-api/pkg/logger"
	"github.com/ecopick/recycle-api/pkg/messaging/redis"
	"github.com/ecopick/recycle-api/pkg/metrics"
	"github.com/ecopick/recycle-api/pkg/worker"
)

// The worker binary runs only the notification sweep. Deployments that
// want delivery isolated from request handling run this next to an API
// configured with a very long sweep interval.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	m := metrics.New("recycle_worker")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)
	notificationRepo := postgres.NewNotificationRepository(base)
	preferenceRepo := postgres.NewPreferenceRepository(base)
	templateRepo := postgres.NewTemplateRepository(base)

	zl := log.Logger
	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &zl)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	senders := channel.Registry{
		model.ChannelEmail: channel.NewEmailSender(channel.EmailConfig{
			Host:     cfg.Secrets.SMTPHost,
			Port:     cfg.Secrets.SMTPPort,
			User:     cfg.Secrets.SMTPUser,
			Password: cfg.Secrets.SMTPPassword,
			From:     cfg.Secrets.SMTPFrom,
		}, appLogger),
		model.ChannelSMS:      channel.NewSMSSender(appLogger),
		model.ChannelPush:     channel.NewPushSender(appLogger),
		model.ChannelWhatsApp: channel.NewWhatsAppSender(appLogger),
		model.ChannelInApp:    channel.NewInAppSender(broker, appLogger),
		model.ChannelChat:     channel.NewChatSender(broker, appLogger),
	}

	notificationSvc := notificationService.NewService(
		notificationRepo, preferenceRepo, templateRepo, senders,
		clock.New(), appLogger, m,
		notificationService.Config{
			BatchSize:  cfg.Dispatch.BatchSize,
			MaxRetries: cfg.Dispatch.MaxRetries,
		},
	)

	setupOpsEndpoints(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := worker.NewDispatchWorker(notificationSvc, cfg.Dispatch.SweepInterval, appLogger)
	go dispatcher.Start(ctx)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")
	cancel()
}

func setupOpsEndpoints(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error(err, "ops endpoint server failed")
			os.Exit(1)
		}
	}()
}
