// Package gamelink is the outbound command channel toward the running game
// client. The game has no real remote-control API, so the production
// implementation is a simulator that acknowledges commands after a realistic
// delay; HTTP handlers depend only on the Commander interface.
package gamelink

import (
	"context"
	"log/slog"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/carrierlink-systems/carrierlink/common/logging"
	"github.com/carrierlink-systems/carrierlink/internal/models"
)

// MarketEntry is one commodity listing aboard a carrier.
type MarketEntry struct {
	Commodity string `json:"commodity"`
	Category  string `json:"category"`
	BuyPrice  int    `json:"buyPrice"`
	SellPrice int    `json:"sellPrice"`
	Stock     int    `json:"stock"`
	Demand    int    `json:"demand"`
}

// Commander issues carrier management commands to the game client.
type Commander interface {
	SetDockingAccess(ctx context.Context, callsign string, access models.DockingAccess, allowNotorious bool) error
	Jump(ctx context.Context, callsign, system string) error
	SetService(ctx context.Context, callsign, serviceType string, enabled bool) error
	Rename(ctx context.Context, callsign, name string) error
	MarketData(ctx context.Context, callsign string) ([]MarketEntry, error)
}

// Simulator acknowledges every command after a short delay, mimicking the
// round trip through the game's management screens.
type Simulator struct {
	// Delay before each command acknowledges. Zero means no wait.
	Delay  time.Duration
	logger *slog.Logger
}

func NewSimulator(delay time.Duration) *Simulator {
	return &Simulator{
		Delay:  delay,
		logger: slog.Default().With(logging.Component("gamelink")),
	}
}

func (s *Simulator) wait(ctx context.Context) error {
	if s.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(s.Delay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Simulator) SetDockingAccess(ctx context.Context, callsign string, access models.DockingAccess, allowNotorious bool) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.logger.Info("docking access command acknowledged",
		logging.Callsign(callsign),
		slog.String("docking_access", string(access)),
		slog.Bool("allow_notorious", allowNotorious),
	)
	return nil
}

func (s *Simulator) Jump(ctx context.Context, callsign, system string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.logger.Info("jump command acknowledged",
		logging.Callsign(callsign),
		logging.System(system),
	)
	return nil
}

func (s *Simulator) SetService(ctx context.Context, callsign, serviceType string, enabled bool) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.logger.Info("service command acknowledged",
		logging.Callsign(callsign),
		slog.String("service_type", serviceType),
		slog.Bool("enabled", enabled),
	)
	return nil
}

func (s *Simulator) Rename(ctx context.Context, callsign, name string) error {
	if err := s.wait(ctx); err != nil {
		return err
	}
	s.logger.Info("rename command acknowledged",
		logging.Callsign(callsign),
		slog.String("name", name),
	)
	return nil
}

var marketCommodities = []struct {
	name     string
	category string
}{
	{"Tritium", "Chemicals"},
	{"Gold", "Metals"},
	{"Silver", "Metals"},
	{"Palladium", "Metals"},
	{"Agronomic Treatment", "Chemicals"},
	{"Ceramic Composites", "Industrial Materials"},
	{"Insulating Membrane", "Industrial Materials"},
	{"Medical Diagnostic Equipment", "Technology"},
	{"Advanced Catalysers", "Technology"},
	{"Performance Enhancers", "Medicines"},
}

// MarketData returns a synthetic commodity listing. Prices and quantities
// are random per call, which is enough for clients exercising the market
// screen.
func (s *Simulator) MarketData(ctx context.Context, callsign string) ([]MarketEntry, error) {
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	entries := make([]MarketEntry, 0, len(marketCommodities))
	for _, c := range marketCommodities {
		buy := gofakeit.Number(500, 55000)
		entries = append(entries, MarketEntry{
			Commodity: c.name,
			Category:  c.category,
			BuyPrice:  buy,
			SellPrice: buy - gofakeit.Number(10, 400),
			Stock:     gofakeit.Number(0, 20000),
			Demand:    gofakeit.Number(0, 20000),
		})
	}

	s.logger.Debug("market data served", logging.Callsign(callsign))
	return entries, nil
}
