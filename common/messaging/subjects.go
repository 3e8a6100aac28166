// Package messaging defines standard subject names for the CarrierLink message bus.
package messaging

// Subject constants for the CarrierLink message bus.
// Follow the pattern: {domain}.{action}.{resource}
const (
	// Carrier update subjects - per-callsign deltas published by the
	// reconciler (append .{callsign} for a specific carrier's topic).
	SubjectCarrierUpdates = "carrier.updates"

	// Dead-letter subjects - journal records whose store write failed.
	SubjectDLQJournal = "dlq.journal"
)

// Queue group names for load-balanced consumers.
const (
	QueueDLQWorkers = "dlq-workers" // Pool of dead-letter reprocessors
)

// CarrierUpdateSubject returns the subject carrying deltas for one carrier.
// Example: carrier.updates.K2X-94Z
func CarrierUpdateSubject(callsign string) string {
	return SubjectCarrierUpdates + "." + callsign
}

// CarrierUpdateWildcard matches every carrier's update subject.
func CarrierUpdateWildcard() string {
	return SubjectCarrierUpdates + ".>"
}
