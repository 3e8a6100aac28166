package models

import "time"

// DockingAccess controls who may dock at a carrier.
type DockingAccess string

const (
	DockingAccessAll             DockingAccess = "all"
	DockingAccessFriends         DockingAccess = "friends"
	DockingAccessSquadron        DockingAccess = "squadron"
	DockingAccessSquadronFriends DockingAccess = "squadronfriends"
)

// Valid reports whether the value is one of the game's docking access settings.
func (d DockingAccess) Valid() bool {
	switch d {
	case DockingAccessAll, DockingAccessFriends, DockingAccessSquadron, DockingAccessSquadronFriends:
		return true
	}
	return false
}

// Carrier is the aggregate root for fleet carrier state.
//
// Callsign is the stable, user-facing identifier and the primary key; it is
// assigned once and never changes. CarrierID is the game-assigned identifier
// seen in raw journal events. It is learned from CarrierStats events and may
// be reassigned across game sessions, so it serves only as an index back to
// the callsign. A CarrierID of zero means no association is currently held.
type Carrier struct {
	Callsign        string        `json:"callsign"`
	CarrierID       int64         `json:"carrierId,omitempty"`
	Name            string        `json:"name"`
	CurrentSystem   string        `json:"currentSystem,omitempty"`
	DockingAccess   DockingAccess `json:"dockingAccess"`
	NotoriousAccess bool          `json:"notoriousAccess"`
	FuelLevel       int           `json:"fuelLevel"`
	JumpCooldown    int           `json:"jumpCooldown"`
	LastUpdated     time.Time     `json:"lastUpdated"`
}

// CarrierFinance holds the persisted balance for a carrier (1:1 by callsign).
// Reserve and available balances are broadcast-only and never stored.
type CarrierFinance struct {
	Callsign string `json:"callsign"`
	Balance  int64  `json:"balance"`
}

// CarrierService is one optional crew service aboard a carrier, keyed by
// (callsign, serviceType). Latest journal event for the pair wins.
type CarrierService struct {
	Callsign    string `json:"callsign"`
	ServiceType string `json:"serviceType"`
	Enabled     bool   `json:"enabled"`
}

// CarrierDetail is the full read model served to clients for initial
// hydration before they switch to the per-callsign update stream.
type CarrierDetail struct {
	Carrier
	Balance  *int64           `json:"balance,omitempty"`
	Services []CarrierService `json:"services"`
}
