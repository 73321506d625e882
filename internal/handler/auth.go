// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/middleware"
	"github.com/olegiv/kanri-go/internal/render"
)

// AuthHandler handles login, logout and the language picker.
type AuthHandler struct {
	base
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler. loginProtection may be nil.
func NewAuthHandler(d Deps, loginProtection *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		base:            newBase(d),
		loginProtection: loginProtection,
	}
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderLogin(w, r, LoginView{}, "")
}

// Login exchanges the submitted credentials with the remote API.
// On success the credential is stored and the operator is sent to the
// dashboard. Any failure re-renders the form with the entered email and the
// error message; nothing is stored.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lng := lang(r)

	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, LoginView{}, i18n.T(lng, "login.failed"))
		return
	}

	email := formValue(r, "email")
	password := formValue(r, "password")
	view := LoginView{Email: email}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.logger.WarnContext(r.Context(), "login attempt on locked email", "email", email)
			h.renderLogin(w, r, view, i18n.T(lng, "login.locked", formatDuration(remaining)))
			return
		}
	}

	cred, err := h.api.Login(r.Context(), email, password)
	if err != nil {
		msg := h.apiFailed(r, "login", err)
		if h.loginProtection != nil && countsAsFailedLogin(err) {
			if locked, d := h.loginProtection.RecordFailedAttempt(email); locked {
				msg = i18n.T(lng, "login.locked", formatDuration(d))
			} else {
				msg = i18n.T(lng, "login.remaining", msg, h.loginProtection.GetRemainingAttempts(email))
			}
		}
		h.renderLogin(w, r, view, msg)
		return
	}

	if err := h.sessions.StoreCredential(r.Context(), cred); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to store credential", "error", err)
		h.renderLogin(w, r, view, i18n.T(lng, "error.internal"))
		return
	}
	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	h.logger.InfoContext(r.Context(), "operator logged in", "email", email, "mode", string(h.sessions.Mode()))
	http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Logout(w, r)
}

// SetLanguage stores the operator's UI language and goes back to the page
// named in the "next" field.
func (h *AuthHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	if !middleware.SetAdminLang(h.sessions.SessionManager, r, r.FormValue("lang")) {
		h.logger.DebugContext(r.Context(), "ignoring unsupported language", "lang", r.FormValue("lang"))
	}
	http.Redirect(w, r, safeNext(r.FormValue("next")), http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, view LoginView, errMsg string) {
	data := render.TemplateData{
		Title: i18n.T(lang(r), "login.title"),
		Data:  view,
	}
	if errMsg != "" {
		data.Flash = errMsg
		data.FlashType = render.FlashError
	}
	h.render(w, r, tmplLogin, data)
}

// countsAsFailedLogin reports whether err reflects the credentials rather
// than the API being unreachable or failing. Only 4xx responses and a
// missing token count.
func countsAsFailedLogin(err error) bool {
	var httpErr *adminapi.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status >= 400 && httpErr.Status < 500
	}
	return adminapi.IsValidation(err)
}

// safeNext only allows local absolute paths as redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return redirectAdmin
	}
	return next
}

// formatDuration renders a lockout duration rounded to the minute, or to the
// second below one minute.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return d.Round(time.Second).String()
	}
	return d.Round(time.Minute).String()
}
