// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/kanri-go/internal/logging"
	"github.com/olegiv/kanri-go/internal/middleware"
)

// RouterConfig wires the console's routes.
type RouterConfig struct {
	Deps
	UserRoles       []string
	PostStatuses    []string
	LoginProtection *middleware.LoginProtection
	CSRF            middleware.CSRFConfig
	Security        middleware.SecurityHeadersConfig
	Health          *HealthHandler
	// Static holds the embedded assets served under /static/.
	Static fs.FS
	// AccessLog enables chi's request logger.
	AccessLog bool
}

// NewRouter builds the console's chi router with the full middleware stack.
func NewRouter(cfg RouterConfig) http.Handler {
	sm := cfg.Sessions

	authHandler := NewAuthHandler(cfg.Deps, cfg.LoginProtection)
	dashboardHandler := NewDashboardHandler(cfg.Deps)
	usersHandler := NewUsersHandler(cfg.Deps, cfg.UserRoles)
	contentHandler := NewContentHandler(cfg.Deps, cfg.PostStatuses)
	rolesHandler := NewRolesHandler(cfg.Deps)
	settingsHandler := NewSettingsHandler(cfg.Deps)
	healthHandler := cfg.Health
	if healthHandler == nil {
		healthHandler = NewHealthHandler(nil, "")
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(logging.Middleware)
	if cfg.AccessLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(middleware.TracingIngress)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)

	// Probes stay outside sessions and CSRF.
	r.Get(RouteHealthLive, healthHandler.Live)
	r.Get(RouteHealthReady, healthHandler.Ready)

	if cfg.Static != nil {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(cfg.Static)))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.SecurityHeaders(cfg.Security))
		// The preview only renders the posted fields; it changes nothing.
		r.Use(middleware.SkipCSRF(RouteAdmin + RouteContent + RouteSuffixPreview))
		r.Use(middleware.CSRF(cfg.CSRF))
		r.Use(sm.LoadAndSave)
		r.Use(middleware.Language(sm.SessionManager))

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		})

		r.Route(RouteLogin, func(r chi.Router) {
			r.Use(middleware.RedirectIfAuthenticated(sm, redirectAdmin))
			if cfg.LoginProtection != nil {
				r.Use(cfg.LoginProtection.Middleware())
			}
			r.Get("/", authHandler.LoginForm)
			r.Post("/", authHandler.Login)
		})
		r.Get(RouteLogout, authHandler.Logout)
		r.Post(RouteLogout, authHandler.Logout)
		r.Post(RouteLanguage, authHandler.SetLanguage)

		r.Route(RouteAdmin, func(r chi.Router) {
			r.Use(middleware.Auth(sm))

			r.Get("/", dashboardHandler.Dashboard)

			r.Get(RouteUsers, usersHandler.List)
			r.Post(RouteUsers, usersHandler.Create)
			r.Post(RouteUsers+RouteSuffixActions, usersHandler.Action)

			r.Get(RouteContent, contentHandler.List)
			r.Post(RouteContent, contentHandler.Save)
			r.Post(RouteContent+RouteSuffixActions, contentHandler.Action)
			r.Post(RouteContent+RouteSuffixPreview, contentHandler.Preview)

			r.Get(RouteRoles, rolesHandler.List)
			r.Post(RouteRoles+RouteSuffixActions, rolesHandler.Action)

			r.Get(RouteSettings, settingsHandler.Show)
			r.Post(RouteSettings, settingsHandler.Save)
		})
	})

	return r
}
