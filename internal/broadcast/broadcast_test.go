package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carrierlink-systems/carrierlink/common/messaging"
)

type capturePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func (p *capturePublisher) PublishMsg(ctx context.Context, msg *messaging.Message) error {
	return p.Publish(ctx, msg.Subject, msg.Data)
}

func (p *capturePublisher) Request(context.Context, string, []byte, time.Duration) (*messaging.Message, error) {
	return nil, errors.New("not supported")
}

func (p *capturePublisher) Close() error { return nil }

func TestPublishRoutesToCallsignSubject(t *testing.T) {
	pub := &capturePublisher{}
	b := New(pub)

	b.Publish(context.Background(), Jump("XZW-331", "Sol", "2024-03-01T10:00:00Z"))

	require.Len(t, pub.subjects, 1)
	assert.Equal(t, "carrier.updates.XZW-331", pub.subjects[0])

	var got Update
	require.NoError(t, json.Unmarshal(pub.payloads[0], &got))
	assert.Equal(t, EventJump, got.Event)
	assert.Equal(t, "XZW-331", got.CarrierID)
	assert.Equal(t, "Sol", got.System)
	assert.Equal(t, "2024-03-01T10:00:00Z", got.Timestamp)
}

func TestPublishFailureDoesNotPanic(t *testing.T) {
	pub := &capturePublisher{err: errors.New("nats: connection closed")}
	b := New(pub)

	b.Publish(context.Background(), NameChanged("XZW-331", "Pequod", "2024-03-01T10:00:00Z"))

	assert.Empty(t, pub.subjects)
}

func TestUpdateOmitsIrrelevantFields(t *testing.T) {
	data, err := json.Marshal(Docking("XZW-331", "squadron", false, "2024-03-01T10:00:00Z"))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	assert.Equal(t, "carrier_docking_permission", m["event"])
	assert.Equal(t, "squadron", m["dockingAccess"])
	assert.Equal(t, false, m["allowNotorious"])
	assert.NotContains(t, m, "balance")
	assert.NotContains(t, m, "fuelLevel")
	assert.NotContains(t, m, "serviceType")
}

func TestFinanceCarriesAllBalances(t *testing.T) {
	data, err := json.Marshal(Finance("XZW-331", 100, 25, 75, "2024-03-01T10:00:00Z"))
	require.NoError(t, err)

	var got Update
	require.NoError(t, json.Unmarshal(data, &got))
	require.NotNil(t, got.Balance)
	require.NotNil(t, got.ReserveBalance)
	require.NotNil(t, got.AvailableBalance)
	assert.EqualValues(t, 100, *got.Balance)
	assert.EqualValues(t, 25, *got.ReserveBalance)
	assert.EqualValues(t, 75, *got.AvailableBalance)
}

func TestNopBroadcasterDrops(t *testing.T) {
	// must be safe with no bus at all
	NopBroadcaster{}.Publish(context.Background(), Stats("XZW-331", "Pequod", 500, 0, "2024-03-01T10:00:00Z"))
}
