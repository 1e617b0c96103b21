package kafka_middleware

import (
	"context"
	"time"

	"dancebook/pkg/kafka"
	"dancebook/pkg/logger"
)

func LoggingProducerMiddleware(log *logger.Logger) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		start := time.Now()
		err := next(ctx, msg)

		l := log.FromContext(ctx)
		attrs := []any{
			"topic", msg.Topic,
			"key", msg.Key,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"duration", time.Since(start),
		}
		if err != nil {
			l.Error("Failed to publish message", append(attrs, "error", err)...)
		} else {
			l.Debug("Published message", attrs...)
		}
		return err
	}
}

func LoggingConsumerMiddleware(log *logger.Logger) kafka.ConsumerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next kafka.MessageHandler) error {
		start := time.Now()
		err := next(ctx, msg)

		l := log
		if id := msg.GetCorrelationID(); id != "" {
			l = log.With(logger.REQUEST_ID, id)
		}
		attrs := []any{
			"topic", msg.Topic,
			"partition", msg.Partition,
			"offset", msg.Offset,
			"event_id", msg.GetEventID(),
			"event_type", msg.GetEventType(),
			"retry", msg.GetRetryCount(),
			"duration", time.Since(start),
		}
		if err != nil {
			l.Warn("Failed to process message", append(attrs, "error", err)...)
		} else {
			l.Debug("Processed message", attrs...)
		}
		return err
	}
}
