package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/decoder-44/vehicle-service-super-app/internal/config"
	"github.com/decoder-44/vehicle-service-super-app/internal/events"
	kafkax "github.com/decoder-44/vehicle-service-super-app/internal/kafka"
	"github.com/decoder-44/vehicle-service-super-app/internal/notify"
	"github.com/decoder-44/vehicle-service-super-app/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "notifier").Logger()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &notify.Service{
		Redis:       rdb,
		ServiceName: cfg.ServiceName + "-notifier",
	}

	group := getenv("NOTIFIER_GROUP", "notifier-svc")
	workers := mustAtoi(os.Getenv("NOTIFIER_WORKERS"), "4")

	topics := []string{
		events.TopicOrderCreated,
		events.TopicOrderStatus,
		events.TopicBookingStatus,
	}
	for _, topic := range topics {
		cons := kafkax.NewConsumer(cfg.KafkaBrokers, group, topic, workers)
		go func(topic string) {
			logger.Info().Str("group", group).Str("topic", topic).Int("workers", workers).
				Msg("consumer started")
			if err := cons.Start(ctx, svc.Handle); err != nil {
				logger.Error().Err(err).Str("topic", topic).Msg("consumer exit")
				cancel()
			}
		}(topic)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		logger.Info().Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func mustAtoi(s, def string) int {
	if s == "" {
		s = def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return 1
	}
	return i
}
