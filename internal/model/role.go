// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// Capability keys in display order.
const (
	CapabilityDashboard = "dashboard"
	CapabilityUsers     = "users"
	CapabilityContent   = "content"
	CapabilityRoles     = "roles"
	CapabilitySettings  = "settings"
)

// Capabilities is the fixed capability set rendered for every role.
var Capabilities = []string{
	CapabilityDashboard,
	CapabilityUsers,
	CapabilityContent,
	CapabilityRoles,
	CapabilitySettings,
}

// PermissionRow holds the capability flags of one role.
type PermissionRow struct {
	Role      string `json:"role"`
	Dashboard bool   `json:"dashboard"`
	Users     bool   `json:"users"`
	Content   bool   `json:"content"`
	Roles     bool   `json:"roles"`
	Settings  bool   `json:"settings"`
}

// Has reports whether the capability is granted.
func (p PermissionRow) Has(capability string) bool {
	switch capability {
	case CapabilityDashboard:
		return p.Dashboard
	case CapabilityUsers:
		return p.Users
	case CapabilityContent:
		return p.Content
	case CapabilityRoles:
		return p.Roles
	case CapabilitySettings:
		return p.Settings
	default:
		return false
	}
}

// Set grants or revokes a capability. Unknown capabilities are ignored.
func (p *PermissionRow) Set(capability string, granted bool) {
	switch capability {
	case CapabilityDashboard:
		p.Dashboard = granted
	case CapabilityUsers:
		p.Users = granted
	case CapabilityContent:
		p.Content = granted
	case CapabilityRoles:
		p.Roles = granted
	case CapabilitySettings:
		p.Settings = granted
	}
}
