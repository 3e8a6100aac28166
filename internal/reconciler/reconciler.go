// Package reconciler applies parsed journal records to carrier state.
//
// Each record passes an idempotence gate (the journal event store) before any
// mutation, then dispatches on its event tag to a handler that mutates the
// repository and emits a delta on the carrier's update topic. Handlers are
// last-write-wins per field, so replaying a stream of records converges on
// the same state regardless of how often individual lines are re-read.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/carrierlink-systems/carrierlink/common/logging"
	"github.com/carrierlink-systems/carrierlink/internal/broadcast"
	"github.com/carrierlink-systems/carrierlink/internal/dlq"
	"github.com/carrierlink-systems/carrierlink/internal/metrics"
	"github.com/carrierlink-systems/carrierlink/internal/models"
	"github.com/carrierlink-systems/carrierlink/internal/repository"
)

// Reconciler consumes journal records and keeps carrier state current.
type Reconciler struct {
	repo   repository.Repository
	bus    broadcast.Broadcaster
	dlq    dlq.Writer
	logger *slog.Logger
}

func New(repo repository.Repository, bus broadcast.Broadcaster, deadLetter dlq.Writer) *Reconciler {
	if deadLetter == nil {
		deadLetter = dlq.Nop{}
	}
	return &Reconciler{
		repo:   repo,
		bus:    bus,
		dlq:    deadLetter,
		logger: slog.Default().With(logging.Component("reconciler")),
	}
}

// Process runs one record through the gate, the classifier, and its handler.
// Errors are reported for logging only: the caller continues with the next
// record either way.
func (r *Reconciler) Process(ctx context.Context, rec *models.JournalRecord) error {
	inserted, err := r.repo.RecordJournalEvent(ctx, rec)
	if err != nil {
		metrics.StoreErrorsTotal.Inc()
		metrics.RecordsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		r.logger.Error("append journal event",
			logging.EventType(rec.Event),
			logging.Error(err),
		)
		if parkErr := r.dlq.Park(ctx, rec, err); parkErr != nil {
			r.logger.Error("park journal record", logging.Error(parkErr))
		}
		return fmt.Errorf("append journal event: %w", err)
	}
	if !inserted {
		metrics.RecordsTotal.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		r.logger.Debug("duplicate journal record skipped",
			logging.EventType(rec.Event),
			slog.String("timestamp", rec.Timestamp),
		)
		return nil
	}

	metrics.EventsByType.WithLabelValues(rec.Event).Inc()

	var handlerErr error
	switch rec.Event {
	case models.EventCarrierStats:
		handlerErr = r.handleStats(ctx, rec)
	case models.EventCarrierJump:
		handlerErr = r.handleMove(ctx, rec, broadcast.EventJump)
	case models.EventCarrierLocation:
		handlerErr = r.handleMove(ctx, rec, broadcast.EventLocationChanged)
	case models.EventCarrierFinance:
		handlerErr = r.handleFinance(ctx, rec)
	case models.EventCarrierDockingPermission:
		handlerErr = r.handleDocking(ctx, rec)
	case models.EventCarrierNameChanged:
		handlerErr = r.handleName(ctx, rec)
	case models.EventCarrierCrewServices:
		handlerErr = r.handleCrewServices(ctx, rec)
	default:
		// Stored above for forward compatibility, otherwise ignored.
		r.logger.Debug("unhandled journal event", logging.EventType(rec.Event))
		metrics.RecordsTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
		return nil
	}

	if handlerErr != nil {
		metrics.StoreErrorsTotal.Inc()
		metrics.RecordsTotal.WithLabelValues(metrics.OutcomeError).Inc()
		r.logger.Error("apply journal event",
			logging.EventType(rec.Event),
			logging.Error(handlerErr),
		)
		return handlerErr
	}
	return nil
}

// resolve maps a game-assigned carrier identifier back to its carrier. A
// missing association is a normal outcome: the carrier has not reported a
// stats event yet, so the record is dropped with a warning and no error.
func (r *Reconciler) resolve(ctx context.Context, rec *models.JournalRecord) (*models.Carrier, error) {
	carrier, err := r.repo.FindByCarrierID(ctx, rec.CarrierID)
	if errors.Is(err, repository.ErrCarrierNotFound) {
		metrics.RecordsTotal.WithLabelValues(metrics.OutcomeUnresolved).Inc()
		r.logger.Warn("no carrier holds this identifier, dropping event",
			logging.CarrierID(rec.CarrierID),
			logging.EventType(rec.Event),
		)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve carrier %d: %w", rec.CarrierID, err)
	}
	return carrier, nil
}

// handleStats is the only handler allowed to create a carrier. It also
// refreshes the identifier association: a carrier identifier reported for a
// new callsign is re-pointed there, leaving the previous holder's fields
// untouched.
func (r *Reconciler) handleStats(ctx context.Context, rec *models.JournalRecord) error {
	if rec.Callsign == "" {
		metrics.RecordsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		r.logger.Warn("stats event without callsign, dropping",
			logging.CarrierID(rec.CarrierID),
		)
		return nil
	}

	carrier := &models.Carrier{
		Callsign:     rec.Callsign,
		CarrierID:    rec.CarrierID,
		Name:         rec.Name,
		FuelLevel:    rec.FuelLevel,
		JumpCooldown: rec.JumpCooldown,
		LastUpdated:  time.Now().UTC(),
	}
	if err := r.repo.UpsertCarrier(ctx, carrier); err != nil {
		return fmt.Errorf("upsert carrier %s: %w", rec.Callsign, err)
	}

	r.bus.Publish(ctx, broadcast.Stats(rec.Callsign, rec.Name, rec.FuelLevel, rec.JumpCooldown, rec.Timestamp))
	metrics.RecordsTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
	return nil
}

func (r *Reconciler) handleMove(ctx context.Context, rec *models.JournalRecord, event string) error {
	carrier, err := r.resolve(ctx, rec)
	if err != nil || carrier == nil {
		return err
	}

	if err := r.repo.UpdateSystem(ctx, carrier.Callsign, rec.StarSystem); err != nil {
		return fmt.Errorf("update system for %s: %w", carrier.Callsign, err)
	}

	if event == broadcast.EventJump {
		r.bus.Publish(ctx, broadcast.Jump(carrier.Callsign, rec.StarSystem, rec.Timestamp))
	} else {
		r.bus.Publish(ctx, broadcast.Location(carrier.Callsign, rec.StarSystem, rec.Timestamp))
	}
	metrics.RecordsTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
	return nil
}

// handleFinance persists the main balance only. Reserve and available
// balances ride on the broadcast for display but are derived values the game
// re-reports constantly, so they are never stored.
func (r *Reconciler) handleFinance(ctx context.Context, rec *models.JournalRecord) error {
	carrier, err := r.resolve(ctx, rec)
	if err != nil || carrier == nil {
		return err
	}

	if err := r.repo.UpsertFinance(ctx, carrier.Callsign, rec.CarrierBalance); err != nil {
		return fmt.Errorf("upsert finance for %s: %w", carrier.Callsign, err)
	}

	r.bus.Publish(ctx, broadcast.Finance(carrier.Callsign, rec.CarrierBalance, rec.ReserveBalance, rec.AvailableBalance, rec.Timestamp))
	metrics.RecordsTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
	return nil
}

func (r *Reconciler) handleDocking(ctx context.Context, rec *models.JournalRecord) error {
	carrier, err := r.resolve(ctx, rec)
	if err != nil || carrier == nil {
		return err
	}

	access := models.DockingAccess(strings.ToLower(rec.DockingAccess))
	if !access.Valid() {
		metrics.RecordsTotal.WithLabelValues(metrics.OutcomeMalformed).Inc()
		r.logger.Warn("unknown docking access value, dropping event",
			logging.Callsign(carrier.Callsign),
			slog.String("docking_access", rec.DockingAccess),
		)
		return nil
	}

	if err := r.repo.UpdateDocking(ctx, carrier.Callsign, access, rec.AllowNotorious); err != nil {
		return fmt.Errorf("update docking for %s: %w", carrier.Callsign, err)
	}

	r.bus.Publish(ctx, broadcast.Docking(carrier.Callsign, string(access), rec.AllowNotorious, rec.Timestamp))
	metrics.RecordsTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
	return nil
}

func (r *Reconciler) handleName(ctx context.Context, rec *models.JournalRecord) error {
	carrier, err := r.resolve(ctx, rec)
	if err != nil || carrier == nil {
		return err
	}

	if err := r.repo.UpdateName(ctx, carrier.Callsign, rec.Name); err != nil {
		return fmt.Errorf("update name for %s: %w", carrier.Callsign, err)
	}

	r.bus.Publish(ctx, broadcast.NameChanged(carrier.Callsign, rec.Name, rec.Timestamp))
	metrics.RecordsTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
	return nil
}

func (r *Reconciler) handleCrewServices(ctx context.Context, rec *models.JournalRecord) error {
	carrier, err := r.resolve(ctx, rec)
	if err != nil || carrier == nil {
		return err
	}

	enabled := strings.EqualFold(rec.Operation, models.OperationActivate)
	if err := r.repo.UpsertService(ctx, carrier.Callsign, rec.CrewRole, enabled); err != nil {
		return fmt.Errorf("upsert service %s for %s: %w", rec.CrewRole, carrier.Callsign, err)
	}

	r.bus.Publish(ctx, broadcast.ServiceChanged(carrier.Callsign, rec.CrewRole, enabled, rec.CrewName, rec.Timestamp))
	metrics.RecordsTotal.WithLabelValues(metrics.OutcomeProcessed).Inc()
	return nil
}
