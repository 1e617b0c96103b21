package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"dancebook/pkg/logger"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu      sync.Mutex
	err     error
	written []kafka.Message
	closed  bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func headers(record kafka.Message) map[string]string {
	out := make(map[string]string)
	for _, h := range record.Headers {
		out[h.Key] = string(h.Value)
	}
	return out
}

func TestMessageBuilder(t *testing.T) {
	msg := NewMessage().
		WithKey("class-1").
		WithValue(map[string]string{"email": "ann@example.com"}).
		WithEventType("enrolment.created").
		WithCorrelationID("").
		Build()

	assert.Equal(t, "class-1", msg.Key)
	assert.JSONEq(t, `{"email":"ann@example.com"}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "enrolment.created", msg.GetEventType())
	_, ok := msg.GetHeader(HeaderCorrelationID)
	assert.False(t, ok, "blank correlation ids are not sent")
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	bad := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	assert.Empty(t, bad.Value)
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())

	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])

	msg.Headers[HeaderRetryCount] = "garbage"
	assert.Equal(t, 0, msg.GetRetryCount())
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"explicit transient", NewTransientError("store down", errors.New("x")), ErrorTypeTransient},
		{"explicit permanent", NewPermanentError("bad payload", errors.New("x")), ErrorTypePermanent},
		{"wrapped deadline", errors.Join(errors.New("write"), context.DeadlineExceeded), ErrorTypeTransient},
		{"connection refused", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"unknown", errors.New("something odd"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}

	assert.False(t, ShouldRetry(NewTransientError("x", nil), 3, 3))
	assert.True(t, ShouldRetry(NewTransientError("x", nil), 2, 3))
}

func TestProducer_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "events", "", logger.Discard())

	var seen []string
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "outer")
		return next(ctx, msg)
	})
	p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
		seen = append(seen, "inner:"+msg.Topic)
		return next(ctx, msg)
	})

	msg := NewMessage().WithKey("k").WithRawValue([]byte(`{}`)).WithEventID("evt-1").Build()
	require.NoError(t, p.Publish(context.Background(), msg))

	assert.Equal(t, []string{"outer", "inner:events"}, seen)
	require.Len(t, w.written, 1)
	assert.Equal(t, "k", string(w.written[0].Key))
	assert.Empty(t, w.written[0].Topic, "topic is owned by the writer")
	assert.Equal(t, "evt-1", headers(w.written[0])[HeaderEventID])
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "events", "", logger.Discard())

	assert.ErrorIs(t, p.Publish(context.Background(), Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k"}), ErrEmptyValue)

	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("x")}), ErrProducerClosed)
}

func TestProducer_DivertsToDLQ(t *testing.T) {
	cause := errors.New("broker unavailable")
	w := &fakeWriter{err: cause}
	dlq := &fakeWriter{}
	p := newProducer(w, dlq, "events", "events.dlq", logger.Discard())
	p.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

	msg := NewMessage().WithKey("k").WithRawValue([]byte(`{}`)).Build()
	err := p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, cause, "the caller still learns the publish failed")

	require.Len(t, dlq.written, 1)
	h := headers(dlq.written[0])
	assert.Equal(t, "events", h[HeaderOriginalTopic])
	assert.Equal(t, "broker unavailable", h[HeaderDLQError])
	assert.Equal(t, "2026-01-02T03:04:05Z", h[HeaderDLQTimestamp])
	_, leaked := msg.Headers[HeaderDLQError]
	assert.False(t, leaked)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
	assert.True(t, dlq.closed)
}

type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	closed    bool
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		next := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return next, nil
	}
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return kafka.Message{}, io.EOF
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func (r *fakeReader) commits() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func record(offset int64, eventType string) kafka.Message {
	return kafka.Message{
		Topic:   "events",
		Offset:  offset,
		Key:     []byte("k"),
		Value:   []byte(`{}`),
		Headers: []kafka.Header{{Key: HeaderEventType, Value: []byte(eventType)}},
	}
}

func runUntilCommitted(t *testing.T, c *Consumer, r *fakeReader, n int) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	require.Eventually(t, func() bool { return len(r.commits()) == n }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{record(1, "a"), record(2, "b")}}
	var mu sync.Mutex
	var handled []string
	handler := func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		handled = append(handled, msg.GetEventType())
		return nil
	}
	c := newConsumer(r, nil, "events", "group", 3, handler, logger.Discard())

	runUntilCommitted(t, c, r, 2)

	assert.Equal(t, []string{"a", "b"}, handled)
	assert.Equal(t, []int64{1, 2}, r.commits())
}

func TestConsumer_RetriesTransientFailures(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{record(7, "a")}}
	var attempts []int
	handler := func(_ context.Context, msg Message) error {
		attempts = append(attempts, msg.GetRetryCount())
		if len(attempts) < 3 {
			return NewTransientError("store busy", nil)
		}
		return nil
	}
	dlq := &fakeWriter{}
	c := newConsumer(r, dlq, "events", "group", 3, handler, logger.Discard())
	c.backoff = time.Millisecond

	runUntilCommitted(t, c, r, 1)

	assert.Equal(t, []int{0, 1, 2}, attempts)
	assert.Empty(t, dlq.written)
}

func TestConsumer_ParksPermanentFailuresOnDLQ(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{record(3, "a")}}
	calls := 0
	handler := func(_ context.Context, msg Message) error {
		calls++
		return NewPermanentError("undecodable", errors.New("bad json"))
	}
	dlq := &fakeWriter{}
	c := newConsumer(r, dlq, "events", "notifier", 3, handler, logger.Discard())
	c.backoff = time.Millisecond

	runUntilCommitted(t, c, r, 1)

	assert.Equal(t, 1, calls, "permanent failures are not retried")
	require.Len(t, dlq.written, 1)
	h := headers(dlq.written[0])
	assert.Equal(t, "events", h[HeaderOriginalTopic])
	assert.Equal(t, "notifier", h[HeaderDLQGroup])
	assert.Contains(t, h[HeaderDLQError], "bad json")
}

func TestConsumer_ExhaustedRetriesGoToDLQ(t *testing.T) {
	r := &fakeReader{queue: []kafka.Message{record(4, "a")}}
	calls := 0
	handler := func(_ context.Context, msg Message) error {
		calls++
		return NewTransientError("still down", nil)
	}
	dlq := &fakeWriter{}
	c := newConsumer(r, dlq, "events", "group", 2, handler, logger.Discard())
	c.backoff = time.Millisecond

	runUntilCommitted(t, c, r, 1)

	assert.Equal(t, 3, calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, "2", headers(dlq.written[0])[HeaderRetryCount])
}

func TestConsumer_Close(t *testing.T) {
	r := &fakeReader{}
	c := newConsumer(r, nil, "events", "group", 0, func(context.Context, Message) error { return nil }, logger.Discard())

	require.NoError(t, c.Close())
	assert.True(t, r.closed)
	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
