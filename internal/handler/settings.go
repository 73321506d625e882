// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/model"
	"github.com/olegiv/kanri-go/internal/render"
)

// SettingsHandler handles the singleton site settings.
type SettingsHandler struct {
	base
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(d Deps) *SettingsHandler {
	return &SettingsHandler{base: newBase(d)}
}

// Show fetches the settings and fills the form. The Reload button is a plain
// link back here, discarding unsaved edits.
func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, tk := h.beginRefresh(r, viewSettings)
	defer tk.Done()

	data := render.TemplateData{
		Title: i18n.T(lang(r), "settings.title"),
		Nav:   viewSettings,
	}

	settings, err := h.api.GetSettings(ctx, credential(r))
	if h.abandonIfStale(w, r, tk, viewSettings, "") {
		return
	}
	if err != nil {
		data.Flash = h.apiFailed(r, "get settings", err)
		data.FlashType = render.FlashError
		settings = model.Settings{DisplayConfig: model.DefaultDisplayConfig}
	}
	data.Data = SettingsView{Settings: settings}

	h.render(w, r, tmplSettings, data)
}

// Save validates the display config as JSON and sends all four fields as
// submitted. Invalid JSON fails without calling the API. Either way the page
// is re-rendered with the submitted values.
func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	lng := lang(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminSettings, err.Error())
		return
	}

	submitted := model.Settings{
		SiteName:      r.FormValue("siteName"),
		LogoURL:       r.FormValue("logoUrl"),
		MailFrom:      r.FormValue("mailFrom"),
		DisplayConfig: r.FormValue("displayConfig"),
	}

	data := render.TemplateData{
		Title: i18n.T(lng, "settings.title"),
		Nav:   viewSettings,
		Data:  SettingsView{Settings: submitted},
	}

	if err := validateDisplayConfig(lng, submitted.DisplayConfig); err != nil {
		h.logger.DebugContext(r.Context(), "display config rejected", "error", err)
		data.Flash = err.Error()
		data.FlashType = render.FlashError
		h.render(w, r, tmplSettings, data)
		return
	}

	if err := h.api.UpdateSettings(r.Context(), credential(r), submitted); err != nil {
		data.Flash = h.apiFailed(r, "update settings", err)
		data.FlashType = render.FlashError
		h.render(w, r, tmplSettings, data)
		return
	}

	h.logger.InfoContext(r.Context(), "settings saved")
	data.Flash = i18n.T(lng, "settings.saved")
	data.FlashType = render.FlashSuccess
	h.render(w, r, tmplSettings, data)
}

// validateDisplayConfig checks that raw parses as JSON. Only the empty
// string counts as "{}"; whitespace alone is rejected.
func validateDisplayConfig(lng, raw string) error {
	if raw == "" {
		raw = model.DefaultDisplayConfig
	}
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return adminapi.NewValidationError("displayConfig", i18n.T(lng, "settings.invalid_json", err.Error()))
	}
	return nil
}
