package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ecopick/recycle-api/internal/channel"
	"github.com/ecopick/recycle-api/internal/config"
	"github.com/ecopick/recycle-api/internal/handler"
	inventoryHandler "github.com/ecopick/recycle-api/internal/handler/inventory"
	notificationHandler "github.com/ecopick/recycle-api/internal/handler/notification"
	orderHandler "github.com/ecopick/recycle-api/internal/handler/order"
	preferenceHandler "github.com/ecopick/recycle-api/internal/handler/preference"
	routeHandler "github.com/ecopick/recycle-api/internal/handler/route"
	"github.com/ecopick/recycle-api/internal/middleware"
	"github.com/ecopick/recycle-api/internal/model"
	"github.com/ecopick/recycle-api/internal/repository/failover"
	"github.com/ecopick/recycle-api/internal/repository/memory"
	"github.com/ecopick/recycle-api/internal/repository/postgres"
	"github.com/ecopick/recycle-api/internal/router"
	inventoryService "github.com/ecopick/recycle-api/internal/service/inventory"
	notificationService "github.com/ecopick/recycle-api/internal/service/notification"
	orderService "github.com/ecopick/recycle-api/internal/service/order"
	preferenceService "github.com/ecopick/recycle-api/internal/service/preference"
	pricingService "github.com/ecopick/recycle-api/internal/service/pricing"
	routeService "github.com/ecopick/recycle-api/internal/service/route"
	"github.com/ecopick/recycle-api/pkg/auth"
	"github.com/ecopick/recycle-api/pkg/clock"
	"github.com/ecopick/recycle-api/pkg/logger"
	"github.com/ecopick/recycle-api/pkg/messaging/redis"
	"github.com/ecopick/recycle-api/pkg/metrics"
	"github.com/ecopick/recycle-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)
	clk := clock.New()
	m := metrics.New("recycle")

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	base := postgres.NewBaseRepository(db)

	// Order reads/writes fail over to an in-memory mirror when the
	// primary store is down; the other repositories stay on postgres.
	orderRepo := failover.NewOrderRepository(
		postgres.NewOrderRepository(base),
		memory.NewOrderRepository(),
		appLogger,
		m,
	)
	inventoryRepo := postgres.NewInventoryRepository(base)
	routeRepo := postgres.NewRouteRepository(base)
	notificationRepo := postgres.NewNotificationRepository(base)
	preferenceRepo := postgres.NewPreferenceRepository(base)
	templateRepo := postgres.NewTemplateRepository(base)
	userRepo := postgres.NewUserRepository(base)

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

	rateProvider := pricingService.NewHTTPRateProvider(
		cfg.Pricing.RateProviderURL,
		cfg.Secrets.RateProviderKey,
		cfg.Pricing.ProviderTimeout,
		cfg.Pricing.RateCacheTTL,
	)
	distanceProvider := pricingService.NewHTTPDistanceProvider(
		cfg.Pricing.DistanceProviderURL,
		cfg.Pricing.ProviderTimeout,
		cfg.Pricing.RateCacheTTL,
	)

	pricingSvc := pricingService.NewService(rateProvider, distanceProvider, appLogger)
	inventorySvc := inventoryService.NewService(inventoryRepo, appLogger)
	notificationSvc := notificationService.NewService(
		notificationRepo, preferenceRepo, templateRepo, senders, clk, appLogger, m,
		notificationService.Config{
			BatchSize:  cfg.Dispatch.BatchSize,
			MaxRetries: cfg.Dispatch.MaxRetries,
		},
	)
	routeSvc := routeService.NewService(routeRepo, orderRepo, userRepo,
		notificationSvc, distanceProvider, nil, clk, appLogger, "")
	orderSvc := orderService.NewService(orderRepo, userRepo, inventorySvc,
		pricingSvc, routeSvc, notificationSvc, clk, appLogger, m)
	preferenceSvc := preferenceService.NewService(preferenceRepo, clk, appLogger)

	if err := notificationService.SeedDefaultTemplates(context.Background(), templateRepo); err != nil {
		log.Fatal().Err(err).Msg("failed to seed notification templates")
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(
		authMiddleware,
		handler.NewHandler(db),
		orderHandler.NewHandler(orderSvc),
		routeHandler.NewHandler(routeSvc),
		notificationHandler.NewHandler(notificationSvc),
		preferenceHandler.NewHandler(preferenceSvc),
		inventoryHandler.NewHandler(inventorySvc, inventoryRepo),
		router.Config{
			RateLimit:     100,
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "recycle_api",
		},
	)
	r.Setup()

	// The API also runs the dispatch sweep, so a single-binary deploy
	// still delivers notifications.
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	dispatcher := worker.NewDispatchWorker(notificationSvc, cfg.Dispatch.SweepInterval, appLogger)
	go dispatcher.Start(dispatchCtx)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	stopDispatch()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
