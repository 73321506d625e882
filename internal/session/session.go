// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session keeps operator state between console requests: the remote
// API credential, flash messages, the UI language and per-page form state.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// Lifetime is the absolute lifetime of an operator session.
const Lifetime = 24 * time.Hour

// New creates a new scs session manager on top of the given store.
// A nil store keeps sessions in memory.
func New(store scs.Store, isDev bool) *scs.SessionManager {
	sm := scs.New()

	if store == nil {
		store = memstore.New()
	}
	sm.Store = store

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev // Secure cookies in production only
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// NewSQLiteStore returns a durable store backed by the sessions table.
func NewSQLiteStore(db *sql.DB) scs.Store {
	return sqlite3store.New(db)
}
