// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/kanri-go/internal/i18n"
)

// SessionKeyAdminLang is the session key holding the operator's UI language.
const SessionKeyAdminLang = "admin_lang"

// Language creates middleware that picks the UI language for the request.
// Priority order:
// 1. Language stored in the session (set by the language picker)
// 2. Accept-Language header
// 3. Default language
func Language(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := ""
			if sm != nil {
				if stored := sm.GetString(r.Context(), SessionKeyAdminLang); i18n.IsSupported(stored) {
					lang = stored
				}
			}
			if lang == "" {
				lang = i18n.MatchLanguage(r.Header.Get("Accept-Language"))
			}

			ctx := i18n.WithLanguage(r.Context(), lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SetAdminLang stores the operator's UI language in the session.
// Unsupported codes are ignored and false is returned.
func SetAdminLang(sm *scs.SessionManager, r *http.Request, lang string) bool {
	if !i18n.IsSupported(lang) {
		return false
	}
	sm.Put(r.Context(), SessionKeyAdminLang, lang)
	return true
}
