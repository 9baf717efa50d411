package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/cabinseats/config"
	"github.com/Domenick1991/cabinseats/internal/bootstrap"
	"github.com/Domenick1991/cabinseats/internal/cache"
	"github.com/Domenick1991/cabinseats/internal/kafka"
	"github.com/Domenick1991/cabinseats/internal/layout"
	"github.com/Domenick1991/cabinseats/internal/repository"
	"github.com/Domenick1991/cabinseats/internal/service/registry"
	"github.com/Domenick1991/cabinseats/internal/service/seatmap"
	"github.com/Domenick1991/cabinseats/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.GridCacheTTLSeconds)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	seatRepo := repository.NewSeatRepository(pool)
	travelerRepo := repository.NewTravelerRepository(pool)
	seatService := seatmap.NewSeatMapService(seatRepo, redisCache)
	bookingService := registry.NewBookingService(
		seatService,
		seatRepo,
		travelerRepo,
		redisCache,
		producer,
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.SeatLockTTLSeconds)*time.Second,
		registry.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
	)

	if err := initializeSeatMap(ctx, cfg, seatService); err != nil {
		log.Fatalf("initialize seat map: %v", err)
	}

	if err := bootstrap.Run(ctx, cfg, seatService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func initializeSeatMap(ctx context.Context, cfg *config.Config, seatService *seatmap.SeatMapService) error {
	if cfg.Layout.Path == "" {
		return nil
	}
	rows, err := layout.ParseFile(cfg.Layout.Path)
	if err != nil {
		return err
	}
	categories, err := layout.TableFrom(cfg.Layout.Categories, cfg.Layout.DefaultCategory)
	if err != nil {
		return err
	}
	plan, err := layout.BuildPlan(rows, categories)
	if err != nil {
		return err
	}
	return seatService.Initialize(ctx, plan)
}
