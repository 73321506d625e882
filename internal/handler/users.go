// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/model"
	"github.com/olegiv/kanri-go/internal/render"
)

// UsersHandler handles the user list and its mutations.
type UsersHandler struct {
	base
	roles []string
}

// NewUsersHandler creates a new UsersHandler. roles are offered in the
// create form.
func NewUsersHandler(d Deps, roles []string) *UsersHandler {
	if len(roles) == 0 {
		roles = []string{model.RoleViewer}
	}
	return &UsersHandler{base: newBase(d), roles: roles}
}

// List fetches all users and renders the table and summary.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, UserForm{Role: h.defaultRole()}, "", "")
}

// Create adds a user. Fields are trimmed and must be non-empty. On success
// the form is reset; on failure the entered email and role stay.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	lng := lang(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, err.Error())
		return
	}

	input := model.NewUser{
		Email:    formValue(r, "email"),
		Password: formValue(r, "password"),
		Role:     formValue(r, "role"),
	}
	form := UserForm{Email: input.Email, Role: input.Role}

	if err := h.validate.Struct(input); err != nil {
		verr := requiredFieldsError(lng, err, map[string]string{
			"Email":    i18n.T(lng, "users.email"),
			"Password": i18n.T(lng, "users.password"),
			"Role":     i18n.T(lng, "users.role"),
		})
		h.renderList(w, r, form, verr.Error(), render.FlashError)
		return
	}

	if err := h.api.CreateUser(r.Context(), credential(r), input); err != nil {
		h.renderList(w, r, form, h.apiFailed(r, "create user", err), render.FlashError)
		return
	}

	h.logger.InfoContext(r.Context(), "user created", "email", input.Email, "role", input.Role)
	flashSuccess(w, r, h.renderer, redirectAdminUsers, i18n.T(lng, "users.created"))
}

// Action dispatches the row buttons of the users table on act and id.
//
//	act=toggle&id=..&status=<current>  flips ACTIVE <-> SUSPENDED
//	act=del&id=..                      deletes the user
func (h *UsersHandler) Action(w http.ResponseWriter, r *http.Request) {
	lng := lang(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminUsers, err.Error())
		return
	}

	id := model.ID(formValue(r, "id"))
	switch act := r.FormValue("act"); act {
	case actToggle:
		next := model.NextUserStatus(r.FormValue("status"))
		if err := h.api.SetUserStatus(r.Context(), credential(r), id, next); err != nil {
			flashError(w, r, h.renderer, redirectAdminUsers, h.apiFailed(r, "set user status", err))
			return
		}
		h.logger.InfoContext(r.Context(), "user status changed", "user_id", id, "status", next)
		flashSuccess(w, r, h.renderer, redirectAdminUsers, i18n.T(lng, "users.updated"))

	case actDelete:
		if err := h.api.DeleteUser(r.Context(), credential(r), id); err != nil {
			flashError(w, r, h.renderer, redirectAdminUsers, h.apiFailed(r, "delete user", err))
			return
		}
		h.logger.InfoContext(r.Context(), "user deleted", "user_id", id)
		flashSuccess(w, r, h.renderer, redirectAdminUsers, i18n.T(lng, "users.deleted"))

	default:
		h.logger.WarnContext(r.Context(), "unknown users action", "act", act)
		flashError(w, r, h.renderer, redirectAdminUsers, i18n.T(lng, "action.unknown"))
	}
}

// renderList refreshes the user list and renders the page. A message passed
// in wins over a fetch error.
func (h *UsersHandler) renderList(w http.ResponseWriter, r *http.Request, form UserForm, msg, msgType string) {
	ctx, tk := h.beginRefresh(r, viewUsers)
	defer tk.Done()

	users, err := h.api.ListUsers(ctx, credential(r))
	if h.abandonIfStale(w, r, tk, viewUsers, msg) {
		return
	}
	if err != nil {
		fetchMsg := h.apiFailed(r, "list users", err)
		if msg == "" {
			msg, msgType = fetchMsg, render.FlashError
		}
		users = nil
	}

	h.render(w, r, tmplUsers, render.TemplateData{
		Title:     i18n.T(lang(r), "users.title"),
		Nav:       viewUsers,
		Flash:     msg,
		FlashType: msgType,
		Data:      buildUsersView(users, form, h.roles),
	})
}

func (h *UsersHandler) defaultRole() string {
	for _, role := range h.roles {
		if role == model.RoleViewer {
			return role
		}
	}
	return h.roles[len(h.roles)-1]
}
