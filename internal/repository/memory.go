package repository

import (
	"context"
	"sync"
	"time"

	"github.com/carrierlink-systems/carrierlink/internal/models"
)

// InMemoryRepository is a map-backed Repository for development and tests.
type InMemoryRepository struct {
	mu         sync.RWMutex
	carriers   map[string]*models.Carrier        // callsign -> carrier
	byID       map[int64]string                  // carrier ID -> callsign
	finance    map[string]int64                  // callsign -> balance
	services   map[string]map[string]bool        // callsign -> service type -> enabled
	seen       map[string]struct{}               // dedupe keys of stored journal records
	journal    []models.JournalEvent
	nextSerial int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		carriers: make(map[string]*models.Carrier),
		byID:     make(map[int64]string),
		finance:  make(map[string]int64),
		services: make(map[string]map[string]bool),
		seen:     make(map[string]struct{}),
	}
}

func (r *InMemoryRepository) UpsertCarrier(_ context.Context, c *models.Carrier) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-point the association; the previous holder keeps its own fields.
	if prev, ok := r.byID[c.CarrierID]; ok && prev != c.Callsign {
		if old := r.carriers[prev]; old != nil {
			old.CarrierID = 0
		}
	}
	if c.CarrierID != 0 {
		r.byID[c.CarrierID] = c.Callsign
	}

	existing, ok := r.carriers[c.Callsign]
	if !ok {
		cp := *c
		cp.DockingAccess = models.DockingAccessAll
		cp.LastUpdated = time.Now().UTC()
		r.carriers[c.Callsign] = &cp
		return nil
	}

	if existing.CarrierID != 0 && existing.CarrierID != c.CarrierID {
		if holder, ok := r.byID[existing.CarrierID]; ok && holder == c.Callsign {
			delete(r.byID, existing.CarrierID)
		}
	}
	existing.CarrierID = c.CarrierID
	existing.Name = c.Name
	existing.FuelLevel = c.FuelLevel
	existing.JumpCooldown = c.JumpCooldown
	existing.LastUpdated = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) GetCarrier(_ context.Context, callsign string) (*models.Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carriers[callsign]
	if !ok {
		return nil, ErrCarrierNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryRepository) FindByCarrierID(_ context.Context, carrierID int64) (*models.Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	callsign, ok := r.byID[carrierID]
	if !ok {
		return nil, ErrCarrierNotFound
	}
	c, ok := r.carriers[callsign]
	if !ok {
		return nil, ErrCarrierNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *InMemoryRepository) UpdateSystem(_ context.Context, callsign, system string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carriers[callsign]
	if !ok {
		return ErrCarrierNotFound
	}
	c.CurrentSystem = system
	c.LastUpdated = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) UpdateDocking(_ context.Context, callsign string, access models.DockingAccess, notorious bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carriers[callsign]
	if !ok {
		return ErrCarrierNotFound
	}
	c.DockingAccess = access
	c.NotoriousAccess = notorious
	c.LastUpdated = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) UpdateName(_ context.Context, callsign, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carriers[callsign]
	if !ok {
		return ErrCarrierNotFound
	}
	c.Name = name
	c.LastUpdated = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) UpsertFinance(_ context.Context, callsign string, balance int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carriers[callsign]; !ok {
		return ErrCarrierNotFound
	}
	r.finance[callsign] = balance
	return nil
}

func (r *InMemoryRepository) UpsertService(_ context.Context, callsign, serviceType string, enabled bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carriers[callsign]; !ok {
		return ErrCarrierNotFound
	}
	svcs, ok := r.services[callsign]
	if !ok {
		svcs = make(map[string]bool)
		r.services[callsign] = svcs
	}
	svcs[serviceType] = enabled
	return nil
}

func (r *InMemoryRepository) ListServices(_ context.Context, callsign string) ([]models.CarrierService, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.CarrierService, 0, len(r.services[callsign]))
	for svcType, enabled := range r.services[callsign] {
		out = append(out, models.CarrierService{
			Callsign:    callsign,
			ServiceType: svcType,
			Enabled:     enabled,
		})
	}
	return out, nil
}

func (r *InMemoryRepository) GetCarrierDetail(ctx context.Context, callsign string) (*models.CarrierDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.carriers[callsign]
	if !ok {
		return nil, ErrCarrierNotFound
	}

	detail := &models.CarrierDetail{Carrier: *c, Services: []models.CarrierService{}}
	if balance, ok := r.finance[callsign]; ok {
		b := balance
		detail.Balance = &b
	}
	for svcType, enabled := range r.services[callsign] {
		detail.Services = append(detail.Services, models.CarrierService{
			Callsign:    callsign,
			ServiceType: svcType,
			Enabled:     enabled,
		})
	}
	return detail, nil
}

func (r *InMemoryRepository) ListCarriers(ctx context.Context) ([]models.CarrierDetail, error) {
	r.mu.RLock()
	callsigns := make([]string, 0, len(r.carriers))
	for cs := range r.carriers {
		callsigns = append(callsigns, cs)
	}
	r.mu.RUnlock()

	out := make([]models.CarrierDetail, 0, len(callsigns))
	for _, cs := range callsigns {
		detail, err := r.GetCarrierDetail(ctx, cs)
		if err != nil {
			continue
		}
		out = append(out, *detail)
	}
	return out, nil
}

func (r *InMemoryRepository) RecordJournalEvent(_ context.Context, rec *models.JournalRecord) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := rec.DedupeKey()
	if _, dup := r.seen[key]; dup {
		return false, nil
	}
	r.seen[key] = struct{}{}
	r.nextSerial++
	r.journal = append(r.journal, models.JournalEvent{
		ID:         r.nextSerial,
		DedupeKey:  key,
		Timestamp:  rec.Timestamp,
		EventType:  rec.Event,
		Payload:    rec.Raw,
		IngestedAt: time.Now().UTC(),
	})
	return true, nil
}

// JournalEvents returns a copy of the stored journal log, oldest first.
// Used by tests to assert on event-store contents.
func (r *InMemoryRepository) JournalEvents() []models.JournalEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.JournalEvent, len(r.journal))
	copy(out, r.journal)
	return out
}

func (r *InMemoryRepository) Close() {}
