// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler implements the console's HTTP handlers. Each page fetches
// fresh data from the remote admin API on every request; mutations follow
// Post/Redirect/Get.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/inflight"
	"github.com/olegiv/kanri-go/internal/render"
	"github.com/olegiv/kanri-go/internal/session"
)

// Deps are the collaborators shared by the admin page handlers.
type Deps struct {
	API      *adminapi.Client
	Sessions *session.Manager
	Renderer *render.Renderer
	Inflight *inflight.Tracker
	Logger   *slog.Logger
}

// base is embedded by every page handler.
type base struct {
	api      *adminapi.Client
	sessions *session.Manager
	renderer *render.Renderer
	inflight *inflight.Tracker
	logger   *slog.Logger
	validate *validator.Validate
}

func newBase(d Deps) base {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracker := d.Inflight
	if tracker == nil {
		tracker = inflight.New()
	}
	return base{
		api:      d.API,
		sessions: d.Sessions,
		renderer: d.Renderer,
		inflight: tracker,
		logger:   logger,
		validate: validator.New(),
	}
}

// credential returns the credential placed in the request by the auth middleware.
func credential(r *http.Request) adminapi.Credential {
	return session.CredentialFromContext(r.Context())
}

// lang returns the UI language of the request.
func lang(r *http.Request) string {
	return i18n.FromContext(r.Context())
}

// beginRefresh registers a page refresh for the operator's session. Any
// older refresh of the same view is cancelled.
func (b *base) beginRefresh(r *http.Request, view string) (context.Context, *inflight.Ticket) {
	return b.inflight.Begin(r.Context(), b.sessions.Token(r.Context()), view)
}

// abandonIfStale answers 204 for a refresh that a newer one has replaced.
// It reports whether the caller must stop. A refresh carrying a pending
// message is always rendered so the operator sees it.
func (b *base) abandonIfStale(w http.ResponseWriter, r *http.Request, tk *inflight.Ticket, view, pending string) bool {
	if !tk.Stale() {
		return false
	}
	if pending != "" {
		b.logger.DebugContext(r.Context(), "rendering stale refresh with pending message", "view", view, "seq", tk.Seq())
		return false
	}
	b.logger.DebugContext(r.Context(), "dropping stale refresh", "view", view, "seq", tk.Seq())
	w.WriteHeader(http.StatusNoContent)
	return true
}

// render executes a page template, answering 500 if the template fails.
func (b *base) render(w http.ResponseWriter, r *http.Request, name string, data render.TemplateData) {
	if err := b.renderer.Render(w, r, name, data); err != nil {
		logAndInternalError(w, r, "failed to render template", "template", name, "error", err)
	}
}

// apiFailed logs a failed API call. The returned message is shown to the
// operator verbatim.
func (b *base) apiFailed(r *http.Request, op string, err error) string {
	var httpErr *adminapi.HTTPError
	var netErr *adminapi.NetworkError
	switch {
	case adminapi.IsValidation(err):
		b.logger.DebugContext(r.Context(), "admin API call rejected locally", "op", op, "error", err)
	case adminapi.IsHTTPStatus(err, http.StatusUnauthorized):
		b.logger.WarnContext(r.Context(), "admin API rejected credential", "op", op)
	case errors.As(err, &httpErr):
		b.logger.WarnContext(r.Context(), "admin API rejected request", "op", op, "status", httpErr.Status)
	case errors.As(err, &netErr):
		b.logger.ErrorContext(r.Context(), "admin API unreachable", "op", op, "error", err)
	case errors.Is(err, context.Canceled):
		b.logger.DebugContext(r.Context(), "admin API call cancelled", "op", op)
	default:
		b.logger.WarnContext(r.Context(), "admin API call failed", "op", op, "error", err)
	}
	return err.Error()
}

// requiredFieldsError turns validator failures on a form struct into a
// ValidationError naming the first empty field.
func requiredFieldsError(lng string, err error, labels map[string]string) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	field := verrs[0].Field()
	label := labels[field]
	if label == "" {
		label = strings.ToLower(field)
	}
	return adminapi.NewValidationError(strings.ToLower(field), i18n.T(lng, "users.field_required", label))
}

// formValue returns a trimmed form value.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}
