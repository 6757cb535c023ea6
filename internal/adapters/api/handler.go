// Package api exposes the operational HTTP surface: health checks and
// Prometheus metrics. It carries no bot functionality.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vbilous/signalbot/internal/core/ports"
)

// Pinger is implemented by adapters with a liveness probe, such as the Redis
// flood limiter.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsHandler handles health and metrics requests.
type OpsHandler struct {
	svc    ports.AccessService
	extras map[string]Pinger
}

// NewOpsHandler creates and returns a new OpsHandler instance. extras holds
// optional named probes beyond the primary store.
func NewOpsHandler(svc ports.AccessService, extras map[string]Pinger) *OpsHandler {
	return &OpsHandler{svc: svc, extras: extras}
}

// RegisterRoutes registers the ops routes with the provided ServeMux.
func (h *OpsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("GET /metrics", h.Metrics)
}

// Metrics handles Prometheus metrics scraping requests.
func (h *OpsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// HealthCheck handles health check requests.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "UP"
	details := make(map[string]string)

	checks := map[string]error{
		"store": h.svc.HealthCheck(r.Context()),
	}
	for name, p := range h.extras {
		checks[name] = p.Ping(r.Context())
	}

	for name, checkErr := range checks {
		if checkErr != nil {
			status = "DEGRADED"
			details[name] = checkErr.Error()
		} else {
			details[name] = "OK"
		}
	}

	resp := map[string]interface{}{
		"status":  status,
		"details": details,
	}

	w.Header().Set("Content-Type", "application/json")
	if status == "DEGRADED" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("failed to encode health check response: %v", err)
	}
}
