// Package notifier turns enrolment.created events into participant
// confirmations. Delivery is at least once, so confirmations are deduplicated
// by event id.
package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"dancebook/internal/events"
	"dancebook/pkg/kafka"
	"dancebook/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const DefaultDedupeTTL = 7 * 24 * time.Hour

// Deduper reports whether an event id is seen for the first time.
type Deduper interface {
	FirstSeen(ctx context.Context, eventID string) (bool, error)
}

type MemoryDeduper struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{seen: make(map[string]struct{})}
}

func (d *MemoryDeduper) FirstSeen(_ context.Context, eventID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[eventID]; ok {
		return false, nil
	}
	d.seen[eventID] = struct{}{}
	return true, nil
}

type RedisDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, prefix string, ttl time.Duration) *RedisDeduper {
	if ttl <= 0 {
		ttl = DefaultDedupeTTL
	}
	return &RedisDeduper{client: client, prefix: prefix, ttl: ttl}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, d.prefix+":notified:"+eventID, 1, d.ttl).Result()
}

type envelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Subject string          `json:"subject"`
	Data    json.RawMessage `json:"data"`
}

type Notifier struct {
	dedupe Deduper
	log    *logger.Logger
}

func New(dedupe Deduper, log *logger.Logger) *Notifier {
	if dedupe == nil {
		dedupe = NewMemoryDeduper()
	}
	return &Notifier{dedupe: dedupe, log: log}
}

// Handle is a kafka.MessageHandler. Undecodable messages are permanent
// failures; a dedupe store outage is transient.
func (n *Notifier) Handle(ctx context.Context, msg kafka.Message) error {
	var env envelope
	if err := msg.DecodeValue(&env); err != nil {
		return kafka.NewPermanentError("failed to decode event", err)
	}
	if env.Type != events.EnrolmentCreated {
		n.log.Debug("Ignoring event", "event_type", env.Type, "event_id", env.ID)
		return nil
	}

	var enrolment events.EnrolmentPayload
	if err := json.Unmarshal(env.Data, &enrolment); err != nil {
		return kafka.NewPermanentError("failed to decode enrolment payload", err)
	}
	if enrolment.Email == "" || enrolment.ClassID == "" {
		return kafka.NewPermanentError("incomplete enrolment payload", errors.New("email and class_id are required"))
	}

	eventID := env.ID
	if eventID == "" {
		eventID = msg.GetEventID()
	}
	first, err := n.dedupe.FirstSeen(ctx, eventID)
	if err != nil {
		return kafka.NewTransientError("failed to check confirmation history", err)
	}
	if !first {
		n.log.Info("Confirmation already sent", "event_id", eventID, "enrolment_id", enrolment.EnrolmentID)
		return nil
	}

	n.log.Info("Enrolment confirmed",
		"event_id", eventID,
		"enrolment_id", enrolment.EnrolmentID,
		"name", enrolment.Name,
		"email", enrolment.Email,
		"class_id", enrolment.ClassID,
		"when", when(enrolment),
		"location", enrolment.Location,
	)
	return nil
}

func when(p events.EnrolmentPayload) string {
	if p.Date == "" {
		return ""
	}
	return fmt.Sprintf("%s %s", p.Date, p.Time)
}
