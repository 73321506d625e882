// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// language selection and request hardening.
package middleware

import (
	"net/http"

	"github.com/olegiv/kanri-go/internal/session"
)

// Auth creates middleware that requires a stored credential.
// Unauthenticated requests are redirected to the login page. Authorized
// requests carry the credential in their context.
func Auth(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch res := sm.RequireAuth(w, r).(type) {
			case session.Authorized:
				ctx := session.WithCredential(r.Context(), res.Credential)
				next.ServeHTTP(w, r.WithContext(ctx))
			case session.Redirected:
				// Response already written.
			}
		})
	}
}

// RedirectIfAuthenticated sends operators that already hold a credential to
// target. Cookie mode cannot tell, so it always passes through there.
func RedirectIfAuthenticated(sm *session.Manager, target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cred, ok := sm.Credential(r.Context()); ok && cred.Token != "" {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
