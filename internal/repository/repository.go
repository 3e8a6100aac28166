package repository

import (
	"context"
	"errors"

	"github.com/carrierlink-systems/carrierlink/internal/models"
)

var (
	ErrCarrierNotFound = errors.New("carrier not found")
)

// Repository is the persistent store for carrier aggregate state and the
// journal event log.
//
// All carrier writes are last-write-wins per field, keyed by callsign. The
// journal is a single ordered stream per game installation, so there is no
// optimistic-concurrency check; concurrent writers for the same callsign are
// out of scope.
type Repository interface {
	// UpsertCarrier creates or updates a carrier by callsign and re-points
	// the CarrierID association to this callsign, clearing it from any
	// other carrier that previously held it. Only docking fields survive an
	// update untouched (they arrive on their own event).
	UpsertCarrier(ctx context.Context, c *models.Carrier) error

	// GetCarrier returns a carrier by its callsign.
	GetCarrier(ctx context.Context, callsign string) (*models.Carrier, error)

	// FindByCarrierID resolves a game-assigned carrier identifier to the
	// carrier that most recently reported it via a stats event. Returns
	// ErrCarrierNotFound when no association is held; callers treat that as
	// a normal outcome, not a failure.
	FindByCarrierID(ctx context.Context, carrierID int64) (*models.Carrier, error)

	// UpdateSystem sets the carrier's current star system.
	UpdateSystem(ctx context.Context, callsign, system string) error

	// UpdateDocking sets docking access and notorious access flags.
	UpdateDocking(ctx context.Context, callsign string, access models.DockingAccess, notorious bool) error

	// UpdateName sets the carrier's display name.
	UpdateName(ctx context.Context, callsign, name string) error

	// UpsertFinance stores the carrier's balance (1:1 by callsign).
	UpsertFinance(ctx context.Context, callsign string, balance int64) error

	// UpsertService stores one (callsign, serviceType) service flag;
	// the latest write wins.
	UpsertService(ctx context.Context, callsign, serviceType string, enabled bool) error

	// ListServices returns all service flags for a carrier.
	ListServices(ctx context.Context, callsign string) ([]models.CarrierService, error)

	// GetCarrierDetail returns the full read model for one carrier:
	// aggregate fields, balance if known, and service flags.
	GetCarrierDetail(ctx context.Context, callsign string) (*models.CarrierDetail, error)

	// ListCarriers returns the full read model for every known carrier.
	ListCarriers(ctx context.Context) ([]models.CarrierDetail, error)

	// RecordJournalEvent appends a raw journal record to the event store,
	// keyed by its dedupe key. It reports true when the record is new and
	// false when an identical record was already stored; the caller must
	// skip all downstream processing for duplicates.
	RecordJournalEvent(ctx context.Context, rec *models.JournalRecord) (bool, error)

	// Close releases any resources held by the repository.
	Close()
}
