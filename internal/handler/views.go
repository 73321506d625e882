// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/model"
	"github.com/olegiv/kanri-go/internal/preview"
)

// LoginView is the login page state.
type LoginView struct {
	Email string
}

// DashboardView holds the three dashboard figures. Empty values render as
// the placeholder dash.
type DashboardView struct {
	Stats model.Stats
}

// UserRow is one row of the users table.
type UserRow struct {
	ID         string
	Email      string
	Role       string
	Status     string
	Active     bool
	NextStatus string
}

// UserForm is the create-user form. The password is never echoed back.
type UserForm struct {
	Email string
	Role  string
}

// UsersView is the users page state.
type UsersView struct {
	Users  []UserRow
	Active int
	Total  int
	Form   UserForm
	Roles  []string
}

// buildUsersView is a pure projection of the user list into table rows and
// the active/total summary.
func buildUsersView(users []model.User, form UserForm, roles []string) UsersView {
	v := UsersView{
		Users: make([]UserRow, 0, len(users)),
		Total: len(users),
		Form:  form,
		Roles: roles,
	}
	for _, u := range users {
		row := UserRow{
			ID:         u.ID.String(),
			Email:      u.Email,
			Role:       u.Role,
			Status:     u.Status,
			Active:     u.IsActive(),
			NextStatus: model.NextUserStatus(u.Status),
		}
		if row.Active {
			v.Active++
		}
		v.Users = append(v.Users, row)
	}
	return v
}

// PostCard is one summary card of the post list.
type PostCard struct {
	ID        string
	Title     string
	Slug      string
	Status    string
	UpdatedAt string
	Draft     bool
	Editing   bool
}

// buildPostCards projects the post list into cards, marking the one under edit.
func buildPostCards(posts []model.Post, editingID string) []PostCard {
	cards := make([]PostCard, 0, len(posts))
	for _, p := range posts {
		cards = append(cards, PostCard{
			ID:        p.ID.String(),
			Title:     p.Title,
			Slug:      p.Slug,
			Status:    p.Status,
			UpdatedAt: p.UpdatedAt,
			Draft:     p.IsDraft(),
			Editing:   editingID != "" && p.ID.String() == editingID,
		})
	}
	return cards
}

// ContentState is the content editor's per-session state. An empty
// EditingID means create mode.
type ContentState struct {
	EditingID string       `json:"editingId,omitempty"`
	Form      preview.Form `json:"form"`
}

// newContentState returns the create-mode state with the default status.
func newContentState() ContentState {
	return ContentState{Form: preview.Form{Status: model.PostStatusDraft}}
}

// Editing reports whether an existing post is being edited.
func (s ContentState) Editing() bool {
	return s.EditingID != ""
}

// PreviewPane is the data of the preview partial.
type PreviewPane struct {
	Lang string
	View preview.View
}

// buildPreviewPane renders the form into the preview pane for lng.
func buildPreviewPane(lng string, f preview.Form) PreviewPane {
	return PreviewPane{
		Lang: lng,
		View: preview.Build(f, preview.Placeholders{
			Title: i18n.T(lng, "content.placeholder_title"),
			Body:  i18n.T(lng, "content.placeholder_body"),
		}),
	}
}

// ContentView is the content page state.
type ContentView struct {
	Posts     []PostCard
	State     ContentState
	Statuses  []string
	Revisions []model.Revision
	// ShowRevisions is true only while editing an existing post.
	ShowRevisions bool
	Preview       PreviewPane
}

// RolesView is the roles page state.
type RolesView struct {
	Rows []model.PermissionRow
}

// SettingsView is the settings page state.
type SettingsView struct {
	Settings model.Settings
}
