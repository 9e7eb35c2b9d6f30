package server

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	healthStatusOK           = "ok"
	healthStatusNotReady     = "not ready"
	healthStatusShuttingDown = "shutting down"
	healthStatusMissing      = "missing"
)

// HealthChecker backs the /healthz and /readyz endpoints consumed by
// Kubernetes probes and load balancers.
type HealthChecker struct {
	ready         atomic.Bool
	serverContext *ServerContext
	startTime     time.Time
}

// NewHealthChecker builds a checker tied to the server context. The server
// reports ready from the start; SetReady(false) flips it during drains.
func NewHealthChecker(sc *ServerContext) *HealthChecker {
	h := &HealthChecker{
		serverContext: sc,
		startTime:     time.Now(),
	}
	h.ready.Store(true)
	return h
}

// SetReady updates the readiness state.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// IsReady reports whether the server is accepting traffic.
func (h *HealthChecker) IsReady() bool {
	return h.ready.Load()
}

// A nil serverContext counts as not shutting down, tests construct checkers
// without one.
func (h *HealthChecker) isServerShuttingDown() bool {
	return h.serverContext != nil && h.serverContext.IsShutdown()
}

// hasTokenProvider reports whether a token source for the Google API clients
// is wired up. Without one every Sheets, Forms, and Drive call fails.
func (h *HealthChecker) hasTokenProvider() bool {
	return h.serverContext != nil && h.serverContext.TokenProvider() != nil
}

// HealthResponse is the JSON body for the probe endpoints.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// DetailedHealthResponse adds service identity and uptime for humans.
type DetailedHealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Uptime  string `json:"uptime"`
}

// LivenessHandler serves /healthz. Liveness only answers "is the process
// alive", so it never fails while the server is running.
func (h *HealthChecker) LivenessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(HealthResponse{Status: healthStatusOK})
	})
}

// ReadinessHandler serves /readyz. Any failing check returns 503 so traffic
// is routed away while the server drains or lacks a token source.
func (h *HealthChecker) ReadinessHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		checks := make(map[string]string)
		allOk := true

		fail := func(name, status string) {
			checks[name] = status
			allOk = false
		}

		if h.ready.Load() {
			checks["ready"] = healthStatusOK
		} else {
			fail("ready", healthStatusNotReady)
		}

		if h.isServerShuttingDown() {
			fail("shutdown", healthStatusShuttingDown)
		} else {
			checks["shutdown"] = healthStatusOK
		}

		if h.hasTokenProvider() {
			checks["token_provider"] = healthStatusOK
		} else {
			fail("token_provider", healthStatusMissing)
		}

		response := HealthResponse{Checks: checks}
		if allOk {
			response.Status = healthStatusOK
			w.WriteHeader(http.StatusOK)
		} else {
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}

// RegisterHealthEndpoints mounts the probe handlers on the mux.
func (h *HealthChecker) RegisterHealthEndpoints(mux *http.ServeMux) {
	mux.Handle("/healthz", h.LivenessHandler())
	mux.Handle("/readyz", h.ReadinessHandler())
	mux.Handle("/healthz/detailed", h.DetailedHealthHandler())
}

// DetailedHealthHandler serves /healthz/detailed with uptime included.
func (h *HealthChecker) DetailedHealthHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		response := DetailedHealthResponse{
			Status:  healthStatusOK,
			Service: "gsheets",
			Uptime:  time.Since(h.startTime).Truncate(time.Second).String(),
		}

		switch {
		case !h.ready.Load():
			response.Status = healthStatusNotReady
			w.WriteHeader(http.StatusServiceUnavailable)
		case h.isServerShuttingDown():
			response.Status = healthStatusShuttingDown
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			w.WriteHeader(http.StatusOK)
		}

		_ = json.NewEncoder(w).Encode(response)
	})
}
