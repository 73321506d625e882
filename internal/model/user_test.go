// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"testing"
)

func TestUserIsActive(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{name: "active", status: UserStatusActive, want: true},
		{name: "suspended", status: UserStatusSuspended, want: false},
		{name: "lowercase active", status: "active", want: false},
		{name: "empty", status: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Status: tt.status}
			if got := u.IsActive(); got != tt.want {
				t.Errorf("IsActive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNextUserStatus(t *testing.T) {
	tests := []struct {
		current string
		want    string
	}{
		{UserStatusActive, UserStatusSuspended},
		{UserStatusSuspended, UserStatusActive},
		{"", UserStatusActive},
		{"UNKNOWN", UserStatusActive},
	}

	for _, tt := range tests {
		t.Run(tt.current, func(t *testing.T) {
			if got := NextUserStatus(tt.current); got != tt.want {
				t.Errorf("NextUserStatus(%q) = %q, want %q", tt.current, got, tt.want)
			}
		})
	}
}

func TestNextUserStatus_RoundTrip(t *testing.T) {
	for _, start := range []string{UserStatusActive, UserStatusSuspended} {
		if got := NextUserStatus(NextUserStatus(start)); got != start {
			t.Errorf("toggling %q twice gave %q", start, got)
		}
	}
}
