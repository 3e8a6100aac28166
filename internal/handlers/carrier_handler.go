// Package handlers implements the HTTP API for carrier state and commands.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carrierlink-systems/carrierlink/common/httputil"
	"github.com/carrierlink-systems/carrierlink/common/logging"
	"github.com/carrierlink-systems/carrierlink/internal/broadcast"
	"github.com/carrierlink-systems/carrierlink/internal/gamelink"
	"github.com/carrierlink-systems/carrierlink/internal/models"
	"github.com/carrierlink-systems/carrierlink/internal/repository"
)

// minJumpFuel is the tritium a carrier burns per jump; commands below this
// level are rejected before reaching the game.
const minJumpFuel = 50

type CarrierHandler struct {
	repo   repository.Repository
	game   gamelink.Commander
	bus    broadcast.Broadcaster
	logger *slog.Logger
}

func NewCarrierHandler(repo repository.Repository, game gamelink.Commander, bus broadcast.Broadcaster) *CarrierHandler {
	return &CarrierHandler{
		repo:   repo,
		game:   game,
		bus:    bus,
		logger: slog.Default().With(logging.Component("api")),
	}
}

func (h *CarrierHandler) ListCarriers(w http.ResponseWriter, r *http.Request) {
	carriers, err := h.repo.ListCarriers(r.Context())
	if err != nil {
		h.logger.Error("list carriers", logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list carriers")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"carriers": carriers})
}

func (h *CarrierHandler) GetCarrier(w http.ResponseWriter, r *http.Request) {
	callsign := r.PathValue("callsign")

	detail, err := h.repo.GetCarrierDetail(r.Context(), callsign)
	if errors.Is(err, repository.ErrCarrierNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "carrier not found")
		return
	}
	if err != nil {
		h.logger.Error("get carrier", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to load carrier")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, detail)
}

func (h *CarrierHandler) UpdateDocking(w http.ResponseWriter, r *http.Request) {
	callsign := r.PathValue("callsign")

	var req models.DockingUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !req.DockingAccess.Valid() {
		httputil.WriteError(w, http.StatusBadRequest, "invalid docking access value")
		return
	}

	if _, err := h.repo.GetCarrier(r.Context(), callsign); err != nil {
		h.writeLookupError(w, callsign, err)
		return
	}

	if err := h.game.SetDockingAccess(r.Context(), callsign, req.DockingAccess, req.NotoriousAccess); err != nil {
		h.logger.Error("docking command failed", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusBadGateway, "game did not accept the command")
		return
	}

	if err := h.repo.UpdateDocking(r.Context(), callsign, req.DockingAccess, req.NotoriousAccess); err != nil {
		h.logger.Error("persist docking update", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to persist docking update")
		return
	}

	h.bus.Publish(r.Context(), broadcast.Docking(callsign, string(req.DockingAccess), req.NotoriousAccess, now()))
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"callsign":        callsign,
		"dockingAccess":   req.DockingAccess,
		"notoriousAccess": req.NotoriousAccess,
	})
}

func (h *CarrierHandler) Jump(w http.ResponseWriter, r *http.Request) {
	callsign := r.PathValue("callsign")

	var req models.JumpRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.TargetSystem) == "" {
		httputil.WriteError(w, http.StatusBadRequest, "targetSystem is required")
		return
	}

	carrier, err := h.repo.GetCarrier(r.Context(), callsign)
	if err != nil {
		h.writeLookupError(w, callsign, err)
		return
	}
	if carrier.FuelLevel < minJumpFuel {
		httputil.WriteError(w, http.StatusConflict, "insufficient fuel for jump")
		return
	}

	if err := h.game.Jump(r.Context(), callsign, req.TargetSystem); err != nil {
		h.logger.Error("jump command failed", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusBadGateway, "game did not accept the command")
		return
	}

	// The journal will confirm the jump; the API reports the request as
	// scheduled rather than completed.
	httputil.WriteJSON(w, http.StatusAccepted, map[string]any{
		"callsign":     callsign,
		"targetSystem": req.TargetSystem,
		"status":       "scheduled",
	})
}

func (h *CarrierHandler) UpdateServices(w http.ResponseWriter, r *http.Request) {
	callsign := r.PathValue("callsign")

	var req models.ServicesUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Services) == 0 {
		httputil.WriteError(w, http.StatusBadRequest, "services list is empty")
		return
	}
	for _, svc := range req.Services {
		if strings.TrimSpace(svc.Type) == "" {
			httputil.WriteError(w, http.StatusBadRequest, "service type is required")
			return
		}
	}

	if _, err := h.repo.GetCarrier(r.Context(), callsign); err != nil {
		h.writeLookupError(w, callsign, err)
		return
	}

	for _, svc := range req.Services {
		if err := h.game.SetService(r.Context(), callsign, svc.Type, svc.Enabled); err != nil {
			h.logger.Error("service command failed",
				logging.Callsign(callsign),
				slog.String("service_type", svc.Type),
				logging.Error(err),
			)
			httputil.WriteError(w, http.StatusBadGateway, "game did not accept the command")
			return
		}
		if err := h.repo.UpsertService(r.Context(), callsign, svc.Type, svc.Enabled); err != nil {
			h.logger.Error("persist service update", logging.Callsign(callsign), logging.Error(err))
			httputil.WriteError(w, http.StatusInternalServerError, "failed to persist service update")
			return
		}
		h.bus.Publish(r.Context(), broadcast.ServiceChanged(callsign, svc.Type, svc.Enabled, "", now()))
	}

	services, err := h.repo.ListServices(r.Context(), callsign)
	if err != nil {
		h.logger.Error("list services", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to list services")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"callsign": callsign, "services": services})
}

func (h *CarrierHandler) UpdateName(w http.ResponseWriter, r *http.Request) {
	callsign := r.PathValue("callsign")

	var req models.NameUpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	if _, err := h.repo.GetCarrier(r.Context(), callsign); err != nil {
		h.writeLookupError(w, callsign, err)
		return
	}

	if err := h.game.Rename(r.Context(), callsign, name); err != nil {
		h.logger.Error("rename command failed", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusBadGateway, "game did not accept the command")
		return
	}

	if err := h.repo.UpdateName(r.Context(), callsign, name); err != nil {
		h.logger.Error("persist name update", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusInternalServerError, "failed to persist name update")
		return
	}

	h.bus.Publish(r.Context(), broadcast.NameChanged(callsign, name, now()))
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"callsign": callsign, "name": name})
}

func (h *CarrierHandler) Market(w http.ResponseWriter, r *http.Request) {
	callsign := r.PathValue("callsign")

	if _, err := h.repo.GetCarrier(r.Context(), callsign); err != nil {
		h.writeLookupError(w, callsign, err)
		return
	}

	entries, err := h.game.MarketData(r.Context(), callsign)
	if err != nil {
		h.logger.Error("market data failed", logging.Callsign(callsign), logging.Error(err))
		httputil.WriteError(w, http.StatusBadGateway, "market data unavailable")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"callsign": callsign, "market": entries})
}

func (h *CarrierHandler) writeLookupError(w http.ResponseWriter, callsign string, err error) {
	if errors.Is(err, repository.ErrCarrierNotFound) {
		httputil.WriteError(w, http.StatusNotFound, "carrier not found")
		return
	}
	h.logger.Error("load carrier", logging.Callsign(callsign), logging.Error(err))
	httputil.WriteError(w, http.StatusInternalServerError, "failed to load carrier")
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
