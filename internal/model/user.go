// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the remote admin API records rendered by the console:
// users, posts and their revisions, role permissions, settings and stats.
package model

// User statuses
const (
	UserStatusActive    = "ACTIVE"
	UserStatusSuspended = "SUSPENDED"
)

// RoleViewer is the lowest role and the default for newly created users.
const RoleViewer = "VIEWER"

// User represents an admin API user.
type User struct {
	ID     ID     `json:"id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}

// IsActive returns true if the user is not suspended.
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// NextUserStatus returns the status a toggle moves to: ACTIVE becomes
// SUSPENDED, anything else becomes ACTIVE.
func NextUserStatus(current string) string {
	if current == UserStatusActive {
		return UserStatusSuspended
	}
	return UserStatusActive
}

// NewUser is the body of a user creation request.
type NewUser struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// UserStatusChange is the body of a user status update.
type UserStatusChange struct {
	ID     ID     `json:"id"`
	Status string `json:"status"`
}
