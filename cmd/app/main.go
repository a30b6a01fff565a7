package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/harborhop/config"
	"github.com/Domenick1991/harborhop/internal/bootstrap"
	"github.com/Domenick1991/harborhop/internal/cache"
	"github.com/Domenick1991/harborhop/internal/gateway"
	"github.com/Domenick1991/harborhop/internal/kafka"
	"github.com/Domenick1991/harborhop/internal/repository"
	"github.com/Domenick1991/harborhop/internal/service/booking"
	"github.com/Domenick1991/harborhop/internal/service/payment"
	"github.com/Domenick1991/harborhop/internal/voyage"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		slog.Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Database.MigrationsPath != "" {
		if err := repository.Migrate("file://"+cfg.Database.MigrationsPath, cfg.Database.URL()); err != nil {
			logger.Error("migrate database", slog.Any("error", err))
			os.Exit(1)
		}
	}

	pool, err := repository.Open(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.DraftTTL())
	defer redisCache.Close()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Warn("redis unavailable", slog.Any("error", err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()
	if err := producer.CheckConnection(ctx); err != nil {
		logger.Warn("kafka unavailable", slog.Any("error", err))
	}
	notifier := kafka.NewBookingNotifier(producer, cfg.Kafka.BookingTopic,
		kafka.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		kafka.WithPublishRetries(cfg.Kafka.PublishRetries),
	)

	loc, err := cfg.Booking.Location()
	if err != nil {
		logger.Error("booking timezone", slog.Any("error", err))
		os.Exit(1)
	}

	bookingRepo := repository.NewBookingRepository(pool)
	bookingService := booking.NewBookingService(
		bookingRepo,
		redisCache,
		booking.Policy{
			ReserveLead:     cfg.Booking.ReserveLead(),
			Hold:            cfg.Booking.Hold(),
			CutoffLead:      cfg.Booking.Cutoff(),
			LockTTL:         cfg.Booking.LockTTL(),
			Location:        loc,
			ReferencePrefix: cfg.Booking.ReferencePrefix,
		},
		logger,
		booking.WithLocker(redisCache),
		booking.WithNotifier(notifier),
	)

	var checkout payment.Gateway
	if stripeGateway, err := gateway.NewStripeGateway(cfg.Payment.StripeSecretKey); err != nil {
		logger.Warn("hosted checkout disabled", slog.Any("error", err))
	} else {
		checkout = stripeGateway
	}
	paymentService := payment.NewPaymentService(bookingRepo, checkout, logger,
		payment.WithNotifier(notifier),
		payment.WithCurrency(cfg.Payment.Currency),
		payment.WithTimeout(cfg.Payment.Timeout()),
		payment.WithLocation(loc),
	)

	// No upstream voyage client is configured yet; search answers with an
	// upstream error until one is injected here.
	searchService := voyage.NewSearchService(nil, redisCache,
		voyage.NewCutoffFilter(cfg.Booking.Cutoff(), loc, logger),
		logger,
		voyage.WithCacheTTLs(cfg.Voyages.RoutesCacheTTL(), cfg.Voyages.SearchCacheTTL()),
		voyage.WithTimeout(cfg.Voyages.Timeout()),
	)

	services := bootstrap.Services{
		Bookings: bookingService,
		Payments: paymentService,
		Voyages:  searchService,
	}
	if err := bootstrap.Run(ctx, cfg, logger, services); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}
