package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/carrierlink-systems/carrierlink/internal/models"
)

// setupTestDatabase creates a PostgreSQL testcontainer and runs migrations.
func setupTestDatabase(t *testing.T) (*PostgresRepository, func()) {
	if testing.Short() {
		t.Skip("Skipping container test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("carrierlink_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	if err := runMigrations(connStr); err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo, err := NewPostgresRepository(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		t.Fatalf("Failed to create repository: %v", err)
	}

	cleanup := func() {
		repo.pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return repo, cleanup
}

func runMigrations(connStr string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	migrationPath := filepath.Join("..", "..", "migrations", "0001_init.up.sql")
	migrationSQL, err := os.ReadFile(migrationPath)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	if _, err := db.Exec(string(migrationSQL)); err != nil {
		return fmt.Errorf("failed to execute migration: %w", err)
	}

	return nil
}

func TestPostgresCarrierLifecycle(t *testing.T) {
	repo, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	err := repo.UpsertCarrier(ctx, &models.Carrier{
		Callsign:  "XZW-331",
		CarrierID: 123,
		Name:      "Pequod",
		FuelLevel: 500,
	})
	if err != nil {
		t.Fatalf("UpsertCarrier() error = %v", err)
	}

	c, err := repo.GetCarrier(ctx, "XZW-331")
	if err != nil {
		t.Fatalf("GetCarrier() error = %v", err)
	}
	if c.Name != "Pequod" || c.CarrierID != 123 {
		t.Errorf("GetCarrier() = %+v, want Pequod/123", c)
	}
	if c.DockingAccess != models.DockingAccessAll {
		t.Errorf("DockingAccess = %q, want default %q", c.DockingAccess, models.DockingAccessAll)
	}

	// Docking survives a stats refresh.
	if err := repo.UpdateDocking(ctx, "XZW-331", models.DockingAccessFriends, true); err != nil {
		t.Fatalf("UpdateDocking() error = %v", err)
	}
	if err := repo.UpsertCarrier(ctx, &models.Carrier{Callsign: "XZW-331", CarrierID: 123, Name: "Pequod", FuelLevel: 450}); err != nil {
		t.Fatalf("UpsertCarrier() refresh error = %v", err)
	}
	c, err = repo.GetCarrier(ctx, "XZW-331")
	if err != nil {
		t.Fatalf("GetCarrier() error = %v", err)
	}
	if c.FuelLevel != 450 {
		t.Errorf("FuelLevel = %d, want 450", c.FuelLevel)
	}
	if c.DockingAccess != models.DockingAccessFriends || !c.NotoriousAccess {
		t.Errorf("docking fields lost on refresh: %+v", c)
	}

	if err := repo.UpdateSystem(ctx, "XZW-331", "Sol"); err != nil {
		t.Fatalf("UpdateSystem() error = %v", err)
	}
	if err := repo.UpdateName(ctx, "XZW-331", "Rocinante"); err != nil {
		t.Fatalf("UpdateName() error = %v", err)
	}

	c, _ = repo.GetCarrier(ctx, "XZW-331")
	if c.CurrentSystem != "Sol" || c.Name != "Rocinante" {
		t.Errorf("updates not applied: %+v", c)
	}
}

func TestPostgresAssociationRepointing(t *testing.T) {
	repo, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.UpsertCarrier(ctx, &models.Carrier{Callsign: "XZW-331", CarrierID: 123, Name: "Pequod"}); err != nil {
		t.Fatalf("UpsertCarrier() error = %v", err)
	}
	if err := repo.UpsertCarrier(ctx, &models.Carrier{Callsign: "QQT-904", CarrierID: 123, Name: "Nostromo"}); err != nil {
		t.Fatalf("UpsertCarrier() repoint error = %v", err)
	}

	c, err := repo.FindByCarrierID(ctx, 123)
	if err != nil {
		t.Fatalf("FindByCarrierID() error = %v", err)
	}
	if c.Callsign != "QQT-904" {
		t.Errorf("FindByCarrierID() = %s, want QQT-904", c.Callsign)
	}

	old, err := repo.GetCarrier(ctx, "XZW-331")
	if err != nil {
		t.Fatalf("GetCarrier() old holder error = %v", err)
	}
	if old.CarrierID != 0 {
		t.Errorf("old holder CarrierID = %d, want 0", old.CarrierID)
	}
	if old.Name != "Pequod" {
		t.Errorf("old holder fields must be untouched, Name = %s", old.Name)
	}
}

func TestPostgresFinanceAndServices(t *testing.T) {
	repo, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	if err := repo.UpsertCarrier(ctx, &models.Carrier{Callsign: "XZW-331", CarrierID: 123}); err != nil {
		t.Fatalf("UpsertCarrier() error = %v", err)
	}

	for _, balance := range []int64{100, 50} {
		if err := repo.UpsertFinance(ctx, "XZW-331", balance); err != nil {
			t.Fatalf("UpsertFinance(%d) error = %v", balance, err)
		}
	}
	if err := repo.UpsertService(ctx, "XZW-331", "refuel", true); err != nil {
		t.Fatalf("UpsertService() error = %v", err)
	}
	if err := repo.UpsertService(ctx, "XZW-331", "refuel", false); err != nil {
		t.Fatalf("UpsertService() flip error = %v", err)
	}

	detail, err := repo.GetCarrierDetail(ctx, "XZW-331")
	if err != nil {
		t.Fatalf("GetCarrierDetail() error = %v", err)
	}
	if detail.Balance == nil || *detail.Balance != 50 {
		t.Errorf("Balance = %v, want 50", detail.Balance)
	}
	if len(detail.Services) != 1 || detail.Services[0].Enabled {
		t.Errorf("Services = %+v, want single disabled refuel", detail.Services)
	}
}

func TestPostgresRecordJournalEventIdempotence(t *testing.T) {
	repo, cleanup := setupTestDatabase(t)
	defer cleanup()
	ctx := context.Background()

	rec := &models.JournalRecord{
		Timestamp: "2024-03-01T10:00:00Z",
		Event:     models.EventCarrierJump,
		Raw:       []byte(`{"timestamp":"2024-03-01T10:00:00Z","event":"CarrierJump","CarrierID":123,"StarSystem":"Sol"}`),
	}

	inserted, err := repo.RecordJournalEvent(ctx, rec)
	if err != nil {
		t.Fatalf("RecordJournalEvent() error = %v", err)
	}
	if !inserted {
		t.Error("first insert reported as duplicate")
	}

	inserted, err = repo.RecordJournalEvent(ctx, rec)
	if err != nil {
		t.Fatalf("RecordJournalEvent() replay error = %v", err)
	}
	if inserted {
		t.Error("replayed record reported as new")
	}
}
