package events

import (
	"context"
	"fmt"

	"dancebook/pkg/kafka"
	"dancebook/pkg/logger"
)

const SchemaVersion = "1"

// MessageProducer is the part of kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	producer MessageProducer
	source   string
}

func NewKafkaPublisher(producer MessageProducer, source string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, source: source}
}

// Publish keys messages by subject so events about one entity stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg := kafka.NewMessage().
		WithKey(event.Subject).
		WithEventID(event.ID).
		WithEventType(event.Type).
		WithSource(p.source).
		WithSchemaVersion(SchemaVersion).
		WithCorrelationID(logger.RequestID(ctx)).
		WithValue(event).
		Build()

	if len(msg.Value) == 0 {
		return fmt.Errorf("failed to encode %s event %s", event.Type, event.ID)
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event %s: %w", event.Type, event.ID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
