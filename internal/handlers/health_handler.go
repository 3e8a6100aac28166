package handlers

import (
	"net/http"

	"github.com/carrierlink-systems/carrierlink/common/httputil"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	// ready reports whether dependencies are usable; nil means always ready.
	ready func() bool
}

func NewHealthHandler(ready func() bool) *HealthHandler {
	return &HealthHandler{ready: ready}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, _ *http.Request) {
	if h.ready != nil && !h.ready() {
		httputil.WriteError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
