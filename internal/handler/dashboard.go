// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/render"
)

// DashboardHandler renders the stats overview.
type DashboardHandler struct {
	base
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(d Deps) *DashboardHandler {
	return &DashboardHandler{base: newBase(d)}
}

// Dashboard fetches the stats once. Missing figures show as a dash; a failed
// fetch shows the error and all dashes. There is no retry.
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx, tk := h.beginRefresh(r, viewDashboard)
	defer tk.Done()

	data := render.TemplateData{
		Title: i18n.T(lang(r), "dashboard.title"),
		Nav:   viewDashboard,
	}

	stats, err := h.api.Stats(ctx, credential(r))
	if h.abandonIfStale(w, r, tk, viewDashboard, "") {
		return
	}
	if err != nil {
		data.Flash = h.apiFailed(r, "stats", err)
		data.FlashType = render.FlashError
	}
	data.Data = DashboardView{Stats: stats}

	h.render(w, r, tmplDashboard, data)
}
