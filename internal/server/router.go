// Package server wires the HTTP API together.
package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carrierlink-systems/carrierlink/common/httputil"
	"github.com/carrierlink-systems/carrierlink/common/middleware"
	"github.com/carrierlink-systems/carrierlink/internal/handlers"
	"github.com/carrierlink-systems/carrierlink/internal/ratelimit"
)

// NewRouter constructs a ServeMux with carrier API routes registered.
// API routes sit behind the rate limiter; probes and metrics do not.
func NewRouter(h *handlers.CarrierHandler, health *handlers.HealthHandler, limiter ratelimit.RateLimiter) http.Handler {
	mux := http.NewServeMux()

	limited := rateLimited(limiter)

	mux.HandleFunc("GET /api/carriers", limited(h.ListCarriers))
	mux.HandleFunc("GET /api/carriers/{callsign}", limited(h.GetCarrier))
	mux.HandleFunc("PUT /api/carriers/{callsign}/docking", limited(h.UpdateDocking))
	mux.HandleFunc("POST /api/carriers/{callsign}/jump", limited(h.Jump))
	mux.HandleFunc("PUT /api/carriers/{callsign}/services", limited(h.UpdateServices))
	mux.HandleFunc("PUT /api/carriers/{callsign}/name", limited(h.UpdateName))
	mux.HandleFunc("GET /api/carriers/{callsign}/market", limited(h.Market))

	mux.HandleFunc("GET /healthz", health.Healthz)
	mux.HandleFunc("GET /readyz", health.Readyz)
	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}

// rateLimited throttles per client IP. A limiter backend failure fails open:
// the API stays usable when Redis is down.
func rateLimited(limiter ratelimit.RateLimiter) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			allowed, err := limiter.Allow(r.Context(), httputil.GetClientIP(r))
			if err == nil && !allowed {
				httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next(w, r)
		}
	}
}
