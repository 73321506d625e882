// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/kanri-go/internal/adminapi"
)

// CredentialKey is the session key under which the sealed credential lives.
const CredentialKey = "admin_v2_token"

// AuthResult is the outcome of RequireAuth: either Authorized or Redirected.
type AuthResult interface {
	authResult()
}

// Authorized means the request may proceed with Credential.
type Authorized struct {
	Credential adminapi.Credential
}

// Redirected means a redirect to Location has already been written and the
// caller must stop.
type Redirected struct {
	Location string
}

func (Authorized) authResult() {}
func (Redirected) authResult() {}

// Manager owns the operator's credential inside the scs session.
//
// Lifecycle: StoreCredential at login, Credential/RequireAuth on every gated
// request, Logout destroys the session.
type Manager struct {
	*scs.SessionManager

	mode      adminapi.AuthMode
	sealer    *Sealer
	loginPath string
	logger    *slog.Logger
}

// NewManager creates a Manager. loginPath is where unauthenticated requests
// are sent.
func NewManager(sm *scs.SessionManager, mode adminapi.AuthMode, sealer *Sealer, loginPath string, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		SessionManager: sm,
		mode:           mode,
		sealer:         sealer,
		loginPath:      loginPath,
		logger:         logger,
	}
}

// Mode returns the auth mode the manager was built for.
func (m *Manager) Mode() adminapi.AuthMode {
	return m.mode
}

// LoginPath returns the login page path.
func (m *Manager) LoginPath() string {
	return m.loginPath
}

// IsAuthenticated reports whether gated pages may render. In cookie mode the
// remote API is the authority, so this is always true; in token mode a
// non-empty token must be stored.
func (m *Manager) IsAuthenticated(ctx context.Context) bool {
	if m.mode == adminapi.AuthModeCookie {
		return true
	}
	cred, ok := m.Credential(ctx)
	return ok && cred.Token != ""
}

// Credential returns the stored credential. A value that cannot be unsealed
// is treated as absent.
func (m *Manager) Credential(ctx context.Context) (adminapi.Credential, bool) {
	sealed := m.GetBytes(ctx, CredentialKey)
	if len(sealed) == 0 {
		return adminapi.Credential{}, false
	}

	plain, err := m.sealer.Open(sealed)
	if err != nil {
		m.logger.WarnContext(ctx, "discarding unreadable session credential", "error", err)
		m.Remove(ctx, CredentialKey)
		return adminapi.Credential{}, false
	}

	var cred adminapi.Credential
	if err := json.Unmarshal(plain, &cred); err != nil {
		m.logger.WarnContext(ctx, "discarding malformed session credential", "error", err)
		m.Remove(ctx, CredentialKey)
		return adminapi.Credential{}, false
	}
	return cred, !cred.IsZero()
}

// StoreCredential renews the session token and stores the credential.
func (m *Manager) StoreCredential(ctx context.Context, cred adminapi.Credential) error {
	if err := m.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}

	plain, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encoding credential: %w", err)
	}
	sealed, err := m.sealer.Seal(plain)
	if err != nil {
		return fmt.Errorf("sealing credential: %w", err)
	}
	m.Put(ctx, CredentialKey, sealed)
	return nil
}

// ClearCredential removes the credential but keeps the session.
func (m *Manager) ClearCredential(ctx context.Context) {
	m.Remove(ctx, CredentialKey)
}

// RequireAuth gates a request. When the operator is not authenticated it
// writes a 303 redirect to the login page and returns Redirected.
func (m *Manager) RequireAuth(w http.ResponseWriter, r *http.Request) AuthResult {
	if !m.IsAuthenticated(r.Context()) {
		http.Redirect(w, r, m.loginPath, http.StatusSeeOther)
		return Redirected{Location: m.loginPath}
	}
	cred, _ := m.Credential(r.Context())
	return Authorized{Credential: cred}
}

// Logout clears the credential, destroys the session and redirects to the
// login page. The remote API is not contacted.
func (m *Manager) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m.ClearCredential(ctx)
	if err := m.Destroy(ctx); err != nil {
		m.logger.ErrorContext(ctx, "failed to destroy session", "error", err)
	}
	http.Redirect(w, r, m.loginPath, http.StatusSeeOther)
}

type credentialKey struct{}

// WithCredential returns a copy of ctx carrying an authorized credential.
func WithCredential(ctx context.Context, cred adminapi.Credential) context.Context {
	return context.WithValue(ctx, credentialKey{}, cred)
}

// CredentialFromContext returns the credential placed by WithCredential.
func CredentialFromContext(ctx context.Context) adminapi.Credential {
	cred, _ := ctx.Value(credentialKey{}).(adminapi.Credential)
	return cred
}
