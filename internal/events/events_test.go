package events

import (
	"context"
	"errors"
	"testing"

	"dancebook/pkg/kafka"
	"dancebook/pkg/logger"
)

type fakeProducer struct {
	messages []kafka.Message
	err      error
}

func (f *fakeProducer) Publish(_ context.Context, msg kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	producer := &fakeProducer{}
	pub := NewKafkaPublisher(producer, "booking")

	ctx := logger.WithRequestID(context.Background(), "req-9")
	event := New(EnrolmentCreated, "enrol-1", EnrolmentPayload{EnrolmentID: "enrol-1", Email: "ann@x.com"})

	if err := pub.Publish(ctx, event); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(producer.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(producer.messages))
	}

	msg := producer.messages[0]
	if msg.Key != "enrol-1" {
		t.Errorf("key = %q", msg.Key)
	}
	if msg.GetEventType() != EnrolmentCreated || msg.GetEventID() != event.ID {
		t.Errorf("unexpected headers: %v", msg.Headers)
	}
	if msg.GetCorrelationID() != "req-9" {
		t.Errorf("correlation id = %q", msg.GetCorrelationID())
	}

	var decoded struct {
		Type string           `json:"type"`
		Data EnrolmentPayload `json:"data"`
	}
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("DecodeValue() error = %v", err)
	}
	if decoded.Type != EnrolmentCreated || decoded.Data.Email != "ann@x.com" {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestKafkaPublisher_WrapsProducerError(t *testing.T) {
	boom := errors.New("broker down")
	pub := NewKafkaPublisher(&fakeProducer{err: boom}, "booking")

	err := pub.Publish(context.Background(), New(CourseAdded, "c1", nil))
	if !errors.Is(err, boom) {
		t.Errorf("expected wrapped producer error, got %v", err)
	}
}

func TestEmit_SwallowsErrors(t *testing.T) {
	rec := &Recorder{Err: errors.New("unavailable")}
	Emit(context.Background(), rec, logger.Discard(), New(ClassAdded, "k1", nil))
	if len(rec.Events()) != 0 {
		t.Error("failed publish should record nothing")
	}

	rec.Err = nil
	Emit(context.Background(), rec, logger.Discard(), New(ClassAdded, "k1", nil))
	if got := rec.Types(); len(got) != 1 || got[0] != ClassAdded {
		t.Errorf("Types() = %v", got)
	}

	Emit(context.Background(), nil, logger.Discard(), New(ClassAdded, "k1", nil))
}
