// Package broadcast fans carrier state deltas out to subscribers.
//
// Delivery is at-most-once and best-effort: a disconnected subscriber simply
// misses the event. The authoritative state stays in the repository, so
// publish failures are logged and counted but never fail the caller.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/carrierlink-systems/carrierlink/common/logging"
	"github.com/carrierlink-systems/carrierlink/common/messaging"
	"github.com/carrierlink-systems/carrierlink/internal/metrics"
)

// Delta event names, as delivered to subscribers.
const (
	EventJump              = "carrier_jump"
	EventStats             = "carrier_stats"
	EventFinance           = "carrier_finance"
	EventDockingPermission = "carrier_docking_permission"
	EventNameChanged       = "carrier_name_changed"
	EventLocationChanged   = "carrier_location_changed"
	EventServiceChanged    = "carrier_service_changed"
)

// Update is one carrier delta published to that carrier's topic. Only the
// fields relevant to the Event are set; CarrierID always carries the
// callsign, never the game-assigned identifier.
type Update struct {
	Event     string `json:"event"`
	CarrierID string `json:"carrierId"`
	Timestamp string `json:"timestamp"`

	System           string `json:"system,omitempty"`
	CurrentSystem    string `json:"currentSystem,omitempty"`
	Name             string `json:"name,omitempty"`
	FuelLevel        *int   `json:"fuelLevel,omitempty"`
	JumpCooldown     *int   `json:"jumpCooldown,omitempty"`
	Balance          *int64 `json:"balance,omitempty"`
	ReserveBalance   *int64 `json:"reserveBalance,omitempty"`
	AvailableBalance *int64 `json:"availableBalance,omitempty"`
	DockingAccess    string `json:"dockingAccess,omitempty"`
	AllowNotorious   *bool  `json:"allowNotorious,omitempty"`
	ServiceType      string `json:"serviceType,omitempty"`
	Enabled          *bool  `json:"enabled,omitempty"`
	CrewName         string `json:"crewName,omitempty"`
}

// Broadcaster publishes carrier deltas to per-callsign topics.
type Broadcaster interface {
	Publish(ctx context.Context, update Update)
}

// NATSBroadcaster publishes updates over a messaging.Publisher.
type NATSBroadcaster struct {
	pub    messaging.Publisher
	logger *slog.Logger
}

func New(pub messaging.Publisher) *NATSBroadcaster {
	return &NATSBroadcaster{
		pub:    pub,
		logger: slog.Default().With(logging.Component("broadcaster")),
	}
}

func (b *NATSBroadcaster) Publish(ctx context.Context, update Update) {
	data, err := json.Marshal(update)
	if err != nil {
		b.logger.Error("marshal carrier update", logging.Error(err))
		metrics.BroadcastsTotal.WithLabelValues("failed").Inc()
		return
	}

	subject := messaging.CarrierUpdateSubject(update.CarrierID)
	if err := b.pub.Publish(ctx, subject, data); err != nil {
		b.logger.Warn("publish carrier update",
			slog.String("subject", subject),
			slog.String("event", update.Event),
			logging.Error(err),
		)
		metrics.BroadcastsTotal.WithLabelValues("failed").Inc()
		return
	}
	metrics.BroadcastsTotal.WithLabelValues("published").Inc()
}

// NopBroadcaster drops every update. Used when the message bus is disabled.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(context.Context, Update) {
	metrics.BroadcastsTotal.WithLabelValues("skipped").Inc()
}

// Jump builds the delta announcing a completed carrier jump.
func Jump(callsign, system, timestamp string) Update {
	return Update{Event: EventJump, CarrierID: callsign, Timestamp: timestamp, System: system}
}

// Location builds the delta for an explicit location report.
func Location(callsign, system, timestamp string) Update {
	return Update{Event: EventLocationChanged, CarrierID: callsign, Timestamp: timestamp, CurrentSystem: system}
}

// Stats builds the delta for a carrier stats refresh.
func Stats(callsign, name string, fuelLevel, jumpCooldown int, timestamp string) Update {
	return Update{
		Event:        EventStats,
		CarrierID:    callsign,
		Timestamp:    timestamp,
		Name:         name,
		FuelLevel:    &fuelLevel,
		JumpCooldown: &jumpCooldown,
	}
}

// Finance builds the delta for a finance refresh. Reserve and available
// balances ride along for display but are never persisted.
func Finance(callsign string, balance, reserve, available int64, timestamp string) Update {
	return Update{
		Event:            EventFinance,
		CarrierID:        callsign,
		Timestamp:        timestamp,
		Balance:          &balance,
		ReserveBalance:   &reserve,
		AvailableBalance: &available,
	}
}

// Docking builds the delta for a docking permission change.
func Docking(callsign, access string, allowNotorious bool, timestamp string) Update {
	return Update{
		Event:          EventDockingPermission,
		CarrierID:      callsign,
		Timestamp:      timestamp,
		DockingAccess:  access,
		AllowNotorious: &allowNotorious,
	}
}

// NameChanged builds the delta for a carrier rename.
func NameChanged(callsign, name, timestamp string) Update {
	return Update{Event: EventNameChanged, CarrierID: callsign, Timestamp: timestamp, Name: name}
}

// ServiceChanged builds the delta for a crew service toggle. CrewName is
// carried for display only.
func ServiceChanged(callsign, serviceType string, enabled bool, crewName, timestamp string) Update {
	return Update{
		Event:       EventServiceChanged,
		CarrierID:   callsign,
		Timestamp:   timestamp,
		ServiceType: serviceType,
		Enabled:     &enabled,
		CrewName:    crewName,
	}
}
