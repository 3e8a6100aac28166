// Package dlq captures journal records whose store write failed, so they can
// be replayed after the store recovers. The live pipeline never blocks on the
// dead letter queue: a record that cannot be parked is logged and dropped.
package dlq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/carrierlink-systems/carrierlink/common/logging"
	"github.com/carrierlink-systems/carrierlink/common/messaging"
	"github.com/carrierlink-systems/carrierlink/internal/metrics"
	"github.com/carrierlink-systems/carrierlink/internal/models"
)

// Entry is one parked journal record with the failure that sent it here.
type Entry struct {
	Timestamp string          `json:"timestamp"`
	EventType string          `json:"eventType"`
	DedupeKey string          `json:"dedupeKey"`
	Payload   json.RawMessage `json:"payload"`
	Failure   string          `json:"failure"`
	ParkedAt  time.Time       `json:"parkedAt"`
}

// Writer parks failed journal records.
type Writer interface {
	Park(ctx context.Context, rec *models.JournalRecord, cause error) error
}

// Queue parks entries on a durable JetStream stream.
type Queue struct {
	publish func(ctx context.Context, subject string, data []byte) error
	logger  *slog.Logger
}

// NewQueue wraps a synchronous publish function, typically
// a JetStream client's PublishSync bound to the DLQ stream.
func NewQueue(publish func(ctx context.Context, subject string, data []byte) error) *Queue {
	return &Queue{
		publish: publish,
		logger:  slog.Default().With(logging.Component("dlq")),
	}
}

func (q *Queue) Park(ctx context.Context, rec *models.JournalRecord, cause error) error {
	entry := Entry{
		Timestamp: rec.Timestamp,
		EventType: rec.Event,
		DedupeKey: rec.DedupeKey(),
		Payload:   json.RawMessage(rec.Raw),
		Failure:   cause.Error(),
		ParkedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal dlq entry: %w", err)
	}

	if err := q.publish(ctx, messaging.SubjectDLQJournal, data); err != nil {
		return fmt.Errorf("publish dlq entry: %w", err)
	}

	q.logger.Info("parked journal record",
		logging.EventType(rec.Event),
		slog.String("dedupe_key", entry.DedupeKey),
		slog.String("failure", entry.Failure),
	)
	metrics.DLQWritesTotal.Inc()
	return nil
}

// Nop discards entries. Used when the dead letter queue is disabled;
// the original store failure is still logged by the caller.
type Nop struct{}

func (Nop) Park(context.Context, *models.JournalRecord, error) error { return nil }
