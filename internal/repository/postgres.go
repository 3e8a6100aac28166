package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carrierlink-systems/carrierlink/internal/models"
)

// PostgresRepository implements Repository on a pgx connection pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() { r.pool.Close() }

func (r *PostgresRepository) UpsertCarrier(ctx context.Context, c *models.Carrier) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// The CarrierID may have been reassigned since another carrier reported
	// it; release it from the previous holder without touching anything else
	// on that row.
	_, err = tx.Exec(ctx,
		`UPDATE carriers SET carrier_id = NULL WHERE carrier_id = $1 AND callsign <> $2`,
		c.CarrierID, c.Callsign,
	)
	if err != nil {
		return fmt.Errorf("release carrier id: %w", err)
	}

	// Zero means no association; store NULL so the partial unique index and
	// FindByCarrierID never match it.
	var carrierID *int64
	if c.CarrierID != 0 {
		carrierID = &c.CarrierID
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO carriers (callsign, carrier_id, name, fuel_level, jump_cooldown, last_updated)
        VALUES ($1, $2, $3, $4, $5, now())
        ON CONFLICT (callsign) DO UPDATE SET
            carrier_id    = EXCLUDED.carrier_id,
            name          = EXCLUDED.name,
            fuel_level    = EXCLUDED.fuel_level,
            jump_cooldown = EXCLUDED.jump_cooldown,
            last_updated  = now()`,
		c.Callsign, carrierID, c.Name, c.FuelLevel, c.JumpCooldown,
	)
	if err != nil {
		return fmt.Errorf("upsert carrier: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetCarrier(ctx context.Context, callsign string) (*models.Carrier, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT callsign, carrier_id, name, current_system, docking_access,
               notorious_access, fuel_level, jump_cooldown, last_updated
        FROM carriers WHERE callsign = $1`,
		callsign,
	)
	return scanCarrier(row)
}

func (r *PostgresRepository) FindByCarrierID(ctx context.Context, carrierID int64) (*models.Carrier, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT callsign, carrier_id, name, current_system, docking_access,
               notorious_access, fuel_level, jump_cooldown, last_updated
        FROM carriers WHERE carrier_id = $1`,
		carrierID,
	)
	return scanCarrier(row)
}

func scanCarrier(row pgx.Row) (*models.Carrier, error) {
	var c models.Carrier
	var carrierID *int64
	var system *string
	err := row.Scan(
		&c.Callsign, &carrierID, &c.Name, &system, &c.DockingAccess,
		&c.NotoriousAccess, &c.FuelLevel, &c.JumpCooldown, &c.LastUpdated,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarrierNotFound
		}
		return nil, fmt.Errorf("scan carrier: %w", err)
	}
	if carrierID != nil {
		c.CarrierID = *carrierID
	}
	if system != nil {
		c.CurrentSystem = *system
	}
	return &c, nil
}

func (r *PostgresRepository) UpdateSystem(ctx context.Context, callsign, system string) error {
	return r.updateCarrier(ctx,
		`UPDATE carriers SET current_system = $2, last_updated = now() WHERE callsign = $1`,
		callsign, system,
	)
}

func (r *PostgresRepository) UpdateDocking(ctx context.Context, callsign string, access models.DockingAccess, notorious bool) error {
	return r.updateCarrier(ctx,
		`UPDATE carriers SET docking_access = $2, notorious_access = $3, last_updated = now() WHERE callsign = $1`,
		callsign, access, notorious,
	)
}

func (r *PostgresRepository) UpdateName(ctx context.Context, callsign, name string) error {
	return r.updateCarrier(ctx,
		`UPDATE carriers SET name = $2, last_updated = now() WHERE callsign = $1`,
		callsign, name,
	)
}

func (r *PostgresRepository) updateCarrier(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update carrier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCarrierNotFound
	}
	return nil
}

func (r *PostgresRepository) UpsertFinance(ctx context.Context, callsign string, balance int64) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO carrier_finance (callsign, balance)
        VALUES ($1, $2)
        ON CONFLICT (callsign) DO UPDATE SET balance = EXCLUDED.balance`,
		callsign, balance,
	)
	if err != nil {
		return fmt.Errorf("upsert finance: %w", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertService(ctx context.Context, callsign, serviceType string, enabled bool) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO carrier_services (callsign, service_type, enabled)
        VALUES ($1, $2, $3)
        ON CONFLICT (callsign, service_type) DO UPDATE SET enabled = EXCLUDED.enabled`,
		callsign, serviceType, enabled,
	)
	if err != nil {
		return fmt.Errorf("upsert service: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListServices(ctx context.Context, callsign string) ([]models.CarrierService, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT callsign, service_type, enabled FROM carrier_services WHERE callsign = $1 ORDER BY service_type`,
		callsign,
	)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	defer rows.Close()

	out := []models.CarrierService{}
	for rows.Next() {
		var s models.CarrierService
		if err := rows.Scan(&s.Callsign, &s.ServiceType, &s.Enabled); err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) GetCarrierDetail(ctx context.Context, callsign string) (*models.CarrierDetail, error) {
	row := r.pool.QueryRow(ctx, `
        SELECT c.callsign, c.carrier_id, c.name, c.current_system, c.docking_access,
               c.notorious_access, c.fuel_level, c.jump_cooldown, c.last_updated,
               cf.balance
        FROM carriers c
        LEFT JOIN carrier_finance cf ON c.callsign = cf.callsign
        WHERE c.callsign = $1`,
		callsign,
	)

	detail, err := scanCarrierDetail(row)
	if err != nil {
		return nil, err
	}

	services, err := r.ListServices(ctx, callsign)
	if err != nil {
		return nil, err
	}
	detail.Services = services
	return detail, nil
}

func (r *PostgresRepository) ListCarriers(ctx context.Context) ([]models.CarrierDetail, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT c.callsign, c.carrier_id, c.name, c.current_system, c.docking_access,
               c.notorious_access, c.fuel_level, c.jump_cooldown, c.last_updated,
               cf.balance
        FROM carriers c
        LEFT JOIN carrier_finance cf ON c.callsign = cf.callsign
        ORDER BY c.callsign`,
	)
	if err != nil {
		return nil, fmt.Errorf("list carriers: %w", err)
	}
	defer rows.Close()

	out := []models.CarrierDetail{}
	for rows.Next() {
		detail, err := scanCarrierDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *detail)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		services, err := r.ListServices(ctx, out[i].Callsign)
		if err != nil {
			return nil, err
		}
		out[i].Services = services
	}
	return out, nil
}

func scanCarrierDetail(row pgx.Row) (*models.CarrierDetail, error) {
	var d models.CarrierDetail
	var carrierID, balance *int64
	var system *string
	err := row.Scan(
		&d.Callsign, &carrierID, &d.Name, &system, &d.DockingAccess,
		&d.NotoriousAccess, &d.FuelLevel, &d.JumpCooldown, &d.LastUpdated,
		&balance,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCarrierNotFound
		}
		return nil, fmt.Errorf("scan carrier detail: %w", err)
	}
	if carrierID != nil {
		d.CarrierID = *carrierID
	}
	if system != nil {
		d.CurrentSystem = *system
	}
	d.Balance = balance
	d.Services = []models.CarrierService{}
	return &d, nil
}

func (r *PostgresRepository) RecordJournalEvent(ctx context.Context, rec *models.JournalRecord) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
        INSERT INTO journal_events (dedupe_key, event_timestamp, event_type, payload)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (dedupe_key) DO NOTHING`,
		rec.DedupeKey(), rec.Timestamp, rec.Event, rec.Raw,
	)
	if err != nil {
		return false, fmt.Errorf("record journal event: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
