package models

// DockingUpdateRequest is the body of PUT /api/carriers/{callsign}/docking.
type DockingUpdateRequest struct {
	DockingAccess   DockingAccess `json:"dockingAccess"`
	NotoriousAccess bool          `json:"notoriousAccess"`
}

// JumpRequest is the body of POST /api/carriers/{callsign}/jump.
type JumpRequest struct {
	TargetSystem string `json:"targetSystem"`
}

// ServiceToggle is one entry in a ServicesUpdateRequest.
type ServiceToggle struct {
	Type    string `json:"type"`
	Enabled bool   `json:"enabled"`
}

// ServicesUpdateRequest is the body of PUT /api/carriers/{callsign}/services.
type ServicesUpdateRequest struct {
	Services []ServiceToggle `json:"services"`
}

// NameUpdateRequest is the body of PUT /api/carriers/{callsign}/name.
type NameUpdateRequest struct {
	Name string `json:"name"`
}
