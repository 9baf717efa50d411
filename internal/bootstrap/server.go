package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/cabinseats/api"
	"github.com/Domenick1991/cabinseats/config"
	"github.com/Domenick1991/cabinseats/internal/service/registry"
	"github.com/Domenick1991/cabinseats/internal/service/seatmap"
	"github.com/gin-gonic/gin"
)

// Run starts the HTTP API and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, seatSvc seatmap.SeatMapUseCase, bookingSvc registry.BookingUseCase) error {
	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(seatSvc, bookingSvc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

// NewRouter wires the caller-facing operations onto a gin engine.
func NewRouter(seatSvc seatmap.SeatMapUseCase, bookingSvc registry.BookingUseCase) *gin.Engine {
	router := gin.Default()

	seatHandler := api.NewSeatHandler(seatSvc)
	seatHandler.Register(router.Group("/seats"))

	bookingHandler := api.NewBookingHandler(bookingSvc)
	bookingHandler.Register(router.Group("/bookings"))
	bookingHandler.RegisterSeatRoutes(router.Group("/seats"))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
