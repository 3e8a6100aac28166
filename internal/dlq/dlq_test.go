package dlq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrierlink-systems/carrierlink/internal/models"
)

func TestQueueParksRecordWithCause(t *testing.T) {
	var gotSubject string
	var gotData []byte
	q := NewQueue(func(_ context.Context, subject string, data []byte) error {
		gotSubject = subject
		gotData = data
		return nil
	})

	raw := []byte(`{"timestamp":"2024-03-01T10:00:00Z","event":"CarrierFinance","CarrierID":123,"CarrierBalance":500}`)
	rec := &models.JournalRecord{
		Timestamp: "2024-03-01T10:00:00Z",
		Event:     models.EventCarrierFinance,
		CarrierID: 123,
		Raw:       raw,
	}

	err := q.Park(context.Background(), rec, errors.New("connection refused"))
	require.NoError(t, err)
	assert.Equal(t, "dlq.journal", gotSubject)

	var entry Entry
	require.NoError(t, json.Unmarshal(gotData, &entry))
	assert.Equal(t, "CarrierFinance", entry.EventType)
	assert.Equal(t, "2024-03-01T10:00:00Z", entry.Timestamp)
	assert.Equal(t, rec.DedupeKey(), entry.DedupeKey)
	assert.Equal(t, "connection refused", entry.Failure)
	assert.JSONEq(t, string(raw), string(entry.Payload))
	assert.False(t, entry.ParkedAt.IsZero())
}

func TestQueueReportsPublishFailure(t *testing.T) {
	q := NewQueue(func(context.Context, string, []byte) error {
		return errors.New("no stream")
	})

	rec := &models.JournalRecord{Event: models.EventCarrierJump, Raw: []byte(`{}`)}
	err := q.Park(context.Background(), rec, errors.New("store down"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stream")
}

func TestNopAcceptsAnything(t *testing.T) {
	require.NoError(t, Nop{}.Park(context.Background(), &models.JournalRecord{}, errors.New("x")))
}
