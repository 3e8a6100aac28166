package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Journal pipeline metrics
	RecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrierlink_journal_records_total",
			Help: "Total journal records seen, by outcome",
		},
		[]string{"outcome"}, // processed, duplicate, malformed, unresolved, error
	)

	FilesProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carrierlink_journal_files_processed_total",
			Help: "Total journal file reads triggered by watch events",
		},
	)

	EventsByType = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrierlink_journal_events_by_type_total",
			Help: "Handled journal records by event type",
		},
		[]string{"event_type"},
	)

	// Broadcast metrics
	BroadcastsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrierlink_broadcasts_total",
			Help: "Carrier delta broadcasts, by delivery status",
		},
		[]string{"status"}, // published, failed, skipped
	)

	// Store metrics
	StoreErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carrierlink_store_errors_total",
			Help: "Repository write failures in the ingestion path",
		},
	)

	DLQWritesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "carrierlink_dlq_writes_total",
			Help: "Journal records diverted to the dead-letter queue",
		},
	)

	// HTTP metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "carrierlink_ratelimit_hits_total",
			Help: "API requests rejected by the rate limiter",
		},
		[]string{"key"},
	)
)

// Record outcome label values for RecordsTotal.
const (
	OutcomeProcessed  = "processed"
	OutcomeDuplicate  = "duplicate"
	OutcomeMalformed  = "malformed"
	OutcomeUnresolved = "unresolved"
	OutcomeError      = "error"
)
