// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/model"
	"github.com/olegiv/kanri-go/internal/render"
)

// RolesHandler handles the role capability matrix.
type RolesHandler struct {
	base
}

// NewRolesHandler creates a new RolesHandler.
func NewRolesHandler(d Deps) *RolesHandler {
	return &RolesHandler{base: newBase(d)}
}

// List renders one row per role with its five capability checkboxes.
func (h *RolesHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, tk := h.beginRefresh(r, viewRoles)
	defer tk.Done()

	data := render.TemplateData{
		Title: i18n.T(lang(r), "roles.title"),
		Nav:   viewRoles,
	}

	rows, err := h.api.ListPermissions(ctx, credential(r))
	if h.abandonIfStale(w, r, tk, viewRoles, "") {
		return
	}
	if err != nil {
		data.Flash = h.apiFailed(r, "list permissions", err)
		data.FlashType = render.FlashError
	}
	data.Data = RolesView{Rows: rows}

	h.render(w, r, tmplRoles, data)
}

// Action saves one role row. Each row is its own form, so only that row's
// checkboxes are submitted.
//
//	act=save&role=..&cap=dashboard&cap=users...
func (h *RolesHandler) Action(w http.ResponseWriter, r *http.Request) {
	lng := lang(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminRoles, err.Error())
		return
	}

	if act := r.FormValue("act"); act != actSave {
		h.logger.WarnContext(r.Context(), "unknown roles action", "act", act)
		flashError(w, r, h.renderer, redirectAdminRoles, i18n.T(lng, "action.unknown"))
		return
	}

	row := permissionRowFromForm(r.FormValue("role"), r.Form["cap"])
	if err := h.api.UpdatePermission(r.Context(), credential(r), row); err != nil {
		flashError(w, r, h.renderer, redirectAdminRoles, h.apiFailed(r, "update permission", err))
		return
	}

	h.logger.InfoContext(r.Context(), "role permissions saved", "role", row.Role)
	flashSuccess(w, r, h.renderer, redirectAdminRoles, i18n.T(lng, "roles.saved"))
}

// permissionRowFromForm builds the row for role with every capability in
// checked granted and the rest denied.
func permissionRowFromForm(role string, checked []string) model.PermissionRow {
	row := model.PermissionRow{Role: role}
	granted := make(map[string]bool, len(checked))
	for _, c := range checked {
		granted[c] = true
	}
	for _, c := range model.Capabilities {
		row.Set(c, granted[c])
	}
	return row
}
