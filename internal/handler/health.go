// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is a dependency the readiness probe checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

// Ping calls f.
func (f PingerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler handles liveness and readiness probes.
type HealthHandler struct {
	sessionStore Pinger
	version      string
	startTime    time.Time
	timeout      time.Duration
}

// NewHealthHandler creates a new health handler. sessionStore may be nil
// for the in-memory store.
func NewHealthHandler(sessionStore Pinger, version string) *HealthHandler {
	if version == "" {
		version = "dev"
	}
	return &HealthHandler{
		sessionStore: sessionStore,
		version:      version,
		startTime:    time.Now(),
		timeout:      2 * time.Second,
	}
}

// HealthStatus is the probe response body.
type HealthStatus struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Uptime  string            `json:"uptime"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Live reports that the process is serving.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.status("ok", nil))
}

// Ready reports whether the session store is reachable. The remote admin
// API is not probed; pages surface its failures themselves.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"session_store": "ok"}
	code := http.StatusOK
	overall := "ok"

	if h.sessionStore != nil {
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		if err := h.sessionStore.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "session store not ready", "error", err)
			checks["session_store"] = "unavailable"
			code = http.StatusServiceUnavailable
			overall = "unavailable"
		}
	}

	writeJSON(w, code, h.status(overall, checks))
}

func (h *HealthHandler) status(overall string, checks map[string]string) HealthStatus {
	return HealthStatus{
		Status:  overall,
		Version: h.version,
		Uptime:  time.Since(h.startTime).Round(time.Second).String(),
		Checks:  checks,
	}
}
