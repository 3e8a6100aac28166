package models

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Journal event type tags handled by the reconciler. Any other tag is
// stored but otherwise ignored (forward compatibility with unseen events).
const (
	EventCarrierStats             = "CarrierStats"
	EventCarrierJump              = "CarrierJump"
	EventCarrierLocation          = "CarrierLocation"
	EventCarrierFinance           = "CarrierFinance"
	EventCarrierDockingPermission = "CarrierDockingPermission"
	EventCarrierNameChanged       = "CarrierNameChanged"
	EventCarrierCrewServices      = "CarrierCrewServices"
)

// Crew service operations carried by CarrierCrewServices events.
const (
	OperationActivate   = "Activate"
	OperationDeactivate = "Deactivate"
)

// JournalRecord is one parsed line from a journal file. Field names mirror
// the game's journal schema; only the fields relevant to the handled event
// type are populated.
//
// Timestamp is the log-assigned ISO-8601 string. It is kept verbatim: the
// journal gives no monotonicity guarantee across files, so nothing orders on
// it and reformatting it would only lose information.
type JournalRecord struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`

	// CarrierStats
	Callsign     string `json:"Callsign,omitempty"`
	Name         string `json:"Name,omitempty"`
	FuelLevel    int    `json:"FuelLevel,omitempty"`
	JumpCooldown int    `json:"JumpCooldown,omitempty"`

	// All carrier events after the first stats report
	CarrierID int64 `json:"CarrierID,omitempty"`

	// CarrierJump / CarrierLocation
	StarSystem string `json:"StarSystem,omitempty"`

	// CarrierFinance
	CarrierBalance   int64 `json:"CarrierBalance,omitempty"`
	ReserveBalance   int64 `json:"ReserveBalance,omitempty"`
	AvailableBalance int64 `json:"AvailableBalance,omitempty"`

	// CarrierDockingPermission
	DockingAccess  string `json:"DockingAccess,omitempty"`
	AllowNotorious bool   `json:"AllowNotorious,omitempty"`

	// CarrierCrewServices
	CrewRole  string `json:"CrewRole,omitempty"`
	Operation string `json:"Operation,omitempty"`
	CrewName  string `json:"CrewName,omitempty"`

	// Raw is the original line as read from the file.
	Raw []byte `json:"-"`
}

// DedupeKey returns the idempotence key for this record: the hex SHA-256 of
// the raw line, which covers timestamp, event type, and payload. Physical
// re-reads of the same line (the full-file re-read model) hash identically.
func (r *JournalRecord) DedupeKey() string {
	sum := sha256.Sum256(r.Raw)
	return hex.EncodeToString(sum[:])
}

// JournalEvent is a stored journal record, the persisted form of a
// JournalRecord after the idempotence gate.
type JournalEvent struct {
	ID         int64     `json:"id"`
	DedupeKey  string    `json:"-"`
	Timestamp  string    `json:"timestamp"`
	EventType  string    `json:"eventType"`
	Payload    []byte    `json:"payload"`
	IngestedAt time.Time `json:"ingestedAt"`
}
