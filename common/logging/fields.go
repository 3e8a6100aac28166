package logging

import "log/slog"

// Common field names for consistent logging across components.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldCallsign  = "callsign"
	FieldCarrierID = "carrier_id"
	FieldEventType = "event_type"
	FieldSystem    = "system"
	FieldFile      = "file"
	FieldIP        = "ip"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// Component returns a slog attribute for a pipeline component name.
func Component(name string) slog.Attr {
	return slog.String(FieldComponent, name)
}

// Callsign returns a slog attribute for a carrier callsign.
func Callsign(callsign string) slog.Attr {
	return slog.String(FieldCallsign, callsign)
}

// CarrierID returns a slog attribute for the game-assigned carrier identifier.
func CarrierID(id int64) slog.Attr {
	return slog.Int64(FieldCarrierID, id)
}

// EventType returns a slog attribute for a journal event type.
func EventType(event string) slog.Attr {
	return slog.String(FieldEventType, event)
}

// System returns a slog attribute for a star system name.
func System(name string) slog.Attr {
	return slog.String(FieldSystem, name)
}

// File returns a slog attribute for a journal file path.
func File(path string) slog.Attr {
	return slog.String(FieldFile, path)
}

// IP returns a slog attribute for the IP address.
func IP(ip string) slog.Attr {
	return slog.String(FieldIP, ip)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Path returns a slog attribute for the HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for duration in milliseconds.
func Duration(ms int64) slog.Attr {
	return slog.Int64(FieldDuration, ms)
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}
