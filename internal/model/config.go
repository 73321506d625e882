// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// DefaultDisplayConfig is shown when the API has no display configuration.
const DefaultDisplayConfig = "{}"

// Settings is the singleton site settings record. DisplayConfig is JSON text
// and is always sent back verbatim.
type Settings struct {
	SiteName      string `json:"siteName"`
	LogoURL       string `json:"logoUrl"`
	MailFrom      string `json:"mailFrom"`
	DisplayConfig string `json:"displayConfig"`
}

// Stats holds the dashboard aggregates. Empty fields were absent in the
// API response.
type Stats struct {
	PostCount   string
	UserCount   string
	LastUpdated string
}
