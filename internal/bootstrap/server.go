package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/harborhop/api"
	"github.com/Domenick1991/harborhop/config"
	"github.com/Domenick1991/harborhop/internal/service/booking"
	"github.com/Domenick1991/harborhop/internal/service/payment"
	"github.com/Domenick1991/harborhop/internal/voyage"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const shutdownTimeout = 5 * time.Second

// Services are the use cases exposed over HTTP.
type Services struct {
	Bookings booking.BookingUseCase
	Payments payment.PaymentUseCase
	Voyages  voyage.SearchUseCase
}

// Run serves the HTTP API and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger, services Services) error {
	srv := newServer(cfg, logger, services)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		logger.Info("http server stopped")
		return nil
	}
}

func newServer(cfg *config.Config, logger *slog.Logger, services Services) *http.Server {
	return &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      NewRouter(cfg, logger, services),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSeconds) * time.Second,
	}
}

func NewRouter(cfg *config.Config, logger *slog.Logger, services Services) *gin.Engine {
	gin.SetMode(cfg.HTTP.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/bookings.swagger.json"))))
	}

	v1 := router.Group("/api/v1", api.Auth(cfg.Auth.JWTSecret, nil))
	api.NewBookingHandler(services.Bookings).Register(v1)
	api.NewPaymentHandler(services.Payments).Register(v1)
	api.NewVoyageHandler(services.Voyages).Register(v1)

	return router
}
