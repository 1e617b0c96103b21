package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"dancebook/internal/notifier"
	"dancebook/pkg/config"
	"dancebook/pkg/kafka"
	kafka_config "dancebook/pkg/kafka/config"
	kafka_middleware "dancebook/pkg/kafka/middleware"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	if cfg.EventsTopic == "" {
		cfg.Log.Fatal("EVENTS_TOPIC is required")
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	cfg.SetRedis()
	defer cfg.GracefulShutdown()

	var dedupe notifier.Deduper
	if cfg.Client.Redis != nil {
		dedupe = notifier.NewRedisDeduper(cfg.Client.Redis, "dancebook", notifier.DefaultDedupeTTL)
	} else {
		cfg.Log.Warn("REDIS_ADDR not set; duplicate confirmations are only suppressed in process")
	}
	n := notifier.New(dedupe, cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.EventsTopic, kafkaCfg.ConsumerGroupID, cfg.EventsDLQTopic, n.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	metrics := kafka_middleware.NewMetrics()
	if kafkaCfg.EnableMiddleware {
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(metrics.ConsumerMiddleware())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting notifier", "topic", cfg.EventsTopic, "group_id", kafkaCfg.ConsumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}
	cfg.Log.Info("Notifier stopped", metrics.Snapshot().LogValues()...)
}
