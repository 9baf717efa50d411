package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/cabinseats/config"
	"github.com/Domenick1991/cabinseats/internal/email"
	"github.com/Domenick1991/cabinseats/internal/kafka"
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

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	sender := email.NewSender()

	log.Printf("worker consuming %s", cfg.Kafka.NotificationsTopic)
	if err := consumer.Consume(ctx, func(ctx context.Context, event kafka.BookingEvent) error {
		if err := sender.Send(ctx, event); err != nil {
			log.Printf("send notification for %s: %v", event.Reference, err)
		}
		return nil
	}); err != nil && ctx.Err() == nil {
		log.Printf("consumer stopped: %v", err)
	}
}
