package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/harborhop/config"
	"github.com/Domenick1991/harborhop/internal/cache"
	"github.com/Domenick1991/harborhop/internal/email"
	"github.com/Domenick1991/harborhop/internal/kafka"
	"github.com/Domenick1991/harborhop/internal/repository"
	"github.com/Domenick1991/harborhop/internal/service/booking"
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := repository.Open(ctx, cfg.Database.DSN())
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
	defer producer.Close()
	redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.DraftTTL())
	defer redisCache.Close()

	loc, err := cfg.Booking.Location()
	if err != nil {
		logger.Error("booking timezone", slog.Any("error", err))
		os.Exit(1)
	}

	bookingService := booking.NewBookingService(
		repository.NewBookingRepository(pool),
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
		booking.WithNotifier(kafka.NewBookingNotifier(producer, cfg.Kafka.BookingTopic,
			kafka.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
			kafka.WithPublishRetries(cfg.Kafka.PublishRetries),
		)),
	)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
	defer consumer.Close()

	emailSender := email.NewSender(logger)

	go func() {
		if err := consumer.ConsumeEvents(ctx, emailSender.Send); err != nil {
			logger.Error("consumer stopped", slog.Any("error", err))
		}
	}()

	expireTicker := time.NewTicker(time.Duration(cfg.Worker.ExpirationSweepMinutes) * time.Minute)
	defer expireTicker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-expireTicker.C:
			if _, err := bookingService.ExpireReservations(ctx); err != nil {
				logger.Error("expire reservations", slog.Any("error", err))
			}
		case s := <-sig:
			logger.Info("shutting down", slog.String("signal", s.String()))
			return
		}
	}
}
