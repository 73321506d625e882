// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package adminapi

import (
	"net/url"
	"strings"
)

// Endpoints holds the admin API paths relative to the base URL.
// Single post and revision paths are derived from Posts.
type Endpoints struct {
	Stats       string `env:"STATS" envDefault:"/api/admin/stats"`
	Users       string `env:"USERS" envDefault:"/api/admin/users"`
	Posts       string `env:"POSTS" envDefault:"/api/admin/posts"`
	Permissions string `env:"PERMISSIONS" envDefault:"/api/admin/permissions"`
	Settings    string `env:"SETTINGS" envDefault:"/api/admin/settings"`
	Login       string `env:"LOGIN" envDefault:"/api/admin/login"`
}

// DefaultEndpoints returns the stock admin API layout.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Stats:       "/api/admin/stats",
		Users:       "/api/admin/users",
		Posts:       "/api/admin/posts",
		Permissions: "/api/admin/permissions",
		Settings:    "/api/admin/settings",
		Login:       "/api/admin/login",
	}
}

// Post returns the path of a single post.
func (e Endpoints) Post(id string) string {
	return strings.TrimSuffix(e.Posts, "/") + "/" + url.PathEscape(id)
}

// Revisions returns the revision history path of a post.
func (e Endpoints) Revisions(id string) string {
	return e.Post(id) + "/revisions"
}

// UserByQuery returns the users path with the id as a query parameter.
func (e Endpoints) UserByQuery(id string) string {
	return e.Users + "?id=" + url.QueryEscape(id)
}
