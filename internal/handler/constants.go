// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route patterns.
const (
	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteLanguage = "/language"
	RouteAdmin    = "/admin"

	RouteUsers    = "/users"
	RouteContent  = "/content"
	RouteRoles    = "/roles"
	RouteSettings = "/settings"

	RouteSuffixActions = "/actions"
	RouteSuffixPreview = "/preview"

	RouteHealthLive  = "/health/live"
	RouteHealthReady = "/health/ready"
)

const (
	redirectAdmin         = RouteAdmin
	redirectAdminUsers    = RouteAdmin + RouteUsers
	redirectAdminContent  = RouteAdmin + RouteContent
	redirectAdminRoles    = RouteAdmin + RouteRoles
	redirectAdminSettings = RouteAdmin + RouteSettings
	redirectLogin         = RouteLogin
)

// Form actions dispatched by the per-page action endpoints.
const (
	actToggle = "toggle"
	actDelete = "del"
	actEdit   = "edit"
	actClear  = "clear"
	actSave   = "save"
)

// Views tracked for refresh sequencing.
const (
	viewDashboard = "dashboard"
	viewUsers     = "users"
	viewContent   = "content"
	viewRoles     = "roles"
	viewSettings  = "settings"
)

// Template names.
const (
	tmplLogin     = "auth/login"
	tmplDashboard = "admin/dashboard"
	tmplUsers     = "admin/users"
	tmplContent   = "admin/content"
	tmplRoles     = "admin/roles"
	tmplSettings  = "admin/settings"
	partialPrev   = "preview"
)

// Session keys owned by handlers.
const (
	sessionKeyContentState = "content_state"
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
