// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/model"
)

func TestRolesList(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.login()
	env.api.JSON(http.MethodGet, apiPermissions, http.StatusOK, []map[string]any{
		{"role": "ADMIN", "dashboard": true, "users": true, "content": true, "roles": true, "settings": true},
		{"role": "EDITOR", "dashboard": true, "content": true},
	})

	rec := env.get(RouteAdmin + RouteRoles)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assertContains(t, body,
		`id="role-0"`,
		`id="role-1"`,
		`aria-label="ADMIN settings" checked`,
		`aria-label="EDITOR content" checked`,
		`name="role" value="EDITOR"`,
	)
	assertNotContains(t, body, `aria-label="EDITOR users" checked`, `aria-label="EDITOR settings" checked`)
}

func TestRolesSave(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.login()
	env.api.JSON(http.MethodPatch, apiPermissions, http.StatusOK, map[string]any{})
	env.api.JSON(http.MethodGet, apiPermissions, http.StatusOK, []map[string]any{})

	rec := env.post(RouteAdmin+RouteRoles+RouteSuffixActions, url.Values{
		"act":  {actSave},
		"role": {"EDITOR"},
		"cap":  {"dashboard", "users"},
	})
	rec = env.followRedirect(rec, redirectAdminRoles)
	assertContains(t, rec.Body.String(), "Saved", "status-success")

	patches := env.api.CallsTo(http.MethodPatch, apiPermissions)
	require.Len(t, patches, 1)
	assert.Equal(t, map[string]any{
		"role":      "EDITOR",
		"dashboard": true,
		"users":     true,
		"content":   false,
		"roles":     false,
		"settings":  false,
	}, patches[0].JSON(t))
}

func TestRolesSave_APIError(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.login()
	env.api.Raw(http.MethodPatch, apiPermissions, http.StatusForbidden, "text/plain", "not allowed")
	env.api.JSON(http.MethodGet, apiPermissions, http.StatusOK, []map[string]any{})

	rec := env.post(RouteAdmin+RouteRoles+RouteSuffixActions, url.Values{"act": {actSave}, "role": {"ADMIN"}})
	rec = env.followRedirect(rec, redirectAdminRoles)

	assertContains(t, rec.Body.String(), "HTTP 403: not allowed", "status-error")
}

func TestPermissionRowFromForm(t *testing.T) {
	row := permissionRowFromForm("VIEWER", []string{"dashboard", "bogus"})

	assert.Equal(t, "VIEWER", row.Role)
	assert.True(t, row.Has(model.CapabilityDashboard))
	for _, c := range model.Capabilities[1:] {
		assert.False(t, row.Has(c), c)
	}

	none := permissionRowFromForm("VIEWER", nil)
	for _, c := range model.Capabilities {
		assert.False(t, none.Has(c), c)
	}
}
