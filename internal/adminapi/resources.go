// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package adminapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/olegiv/kanri-go/internal/model"
)

// Login exchanges email and password for a credential.
// In token mode the reply must carry a non-empty "token" field, otherwise
// ErrNoToken is returned. In cookie mode any 2xx reply succeeds and the
// cookies it sets become the credential.
func (c *Client) Login(ctx context.Context, email, password string) (Credential, error) {
	resp, err := c.Do(ctx, Credential{}, Request{
		Method: http.MethodPost,
		Path:   c.endpoints.Login,
		Body: map[string]string{
			"email":    email,
			"password": password,
		},
	})
	if err != nil {
		return Credential{}, err
	}

	if c.mode == AuthModeCookie {
		cred := Credential{}
		for _, ck := range resp.Cookies {
			if ck.Name == "" || ck.MaxAge < 0 {
				continue
			}
			cred.Cookies = append(cred.Cookies, Cookie{Name: ck.Name, Value: ck.Value})
		}
		return cred, nil
	}

	if !resp.IsJSON() {
		return Credential{}, ErrNoToken
	}
	token := gjson.GetBytes(resp.Raw, "token")
	if !token.Exists() || token.Type == gjson.Null || token.String() == "" {
		return Credential{}, ErrNoToken
	}
	return Credential{Token: token.String()}, nil
}

// Stats fetches the dashboard aggregates. Fields missing from the reply are
// returned empty.
func (c *Client) Stats(ctx context.Context, cred Credential) (model.Stats, error) {
	resp, err := c.Do(ctx, cred, Request{Path: c.endpoints.Stats})
	if err != nil {
		return model.Stats{}, err
	}
	if !resp.IsJSON() {
		return model.Stats{}, nil
	}
	return model.Stats{
		PostCount:   presentString(resp.Raw, "postCount"),
		UserCount:   presentString(resp.Raw, "userCount"),
		LastUpdated: presentString(resp.Raw, "lastUpdated"),
	}, nil
}

// ListUsers fetches all users.
func (c *Client) ListUsers(ctx context.Context, cred Credential) ([]model.User, error) {
	var users []model.User
	if err := c.getJSON(ctx, cred, c.endpoints.Users, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser creates a user.
func (c *Client) CreateUser(ctx context.Context, cred Credential, user model.NewUser) error {
	return c.send(ctx, cred, http.MethodPost, c.endpoints.Users, user)
}

// SetUserStatus changes a user's status.
func (c *Client) SetUserStatus(ctx context.Context, cred Credential, id model.ID, status string) error {
	return c.send(ctx, cred, http.MethodPatch, c.endpoints.Users, model.UserStatusChange{ID: id, Status: status})
}

// DeleteUser deletes a user. The id travels as a query parameter.
func (c *Client) DeleteUser(ctx context.Context, cred Credential, id model.ID) error {
	return c.send(ctx, cred, http.MethodDelete, c.endpoints.UserByQuery(id.String()), nil)
}

// ListPosts fetches all posts. List entries may omit the content.
func (c *Client) ListPosts(ctx context.Context, cred Credential) ([]model.Post, error) {
	var posts []model.Post
	if err := c.getJSON(ctx, cred, c.endpoints.Posts, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post including its content.
func (c *Client) GetPost(ctx context.Context, cred Credential, id model.ID) (model.Post, error) {
	var post model.Post
	if err := c.getJSON(ctx, cred, c.endpoints.Post(id.String()), &post); err != nil {
		return model.Post{}, err
	}
	return post, nil
}

// CreatePost creates a post.
func (c *Client) CreatePost(ctx context.Context, cred Credential, in model.PostInput) error {
	return c.send(ctx, cred, http.MethodPost, c.endpoints.Posts, in)
}

// UpdatePost updates a post.
func (c *Client) UpdatePost(ctx context.Context, cred Credential, id model.ID, in model.PostInput) error {
	return c.send(ctx, cred, http.MethodPatch, c.endpoints.Post(id.String()), in)
}

// DeletePost deletes a post.
func (c *Client) DeletePost(ctx context.Context, cred Credential, id model.ID) error {
	return c.send(ctx, cred, http.MethodDelete, c.endpoints.Post(id.String()), nil)
}

// ListRevisions fetches the revision history of a post, oldest first as
// delivered by the API.
func (c *Client) ListRevisions(ctx context.Context, cred Credential, id model.ID) ([]model.Revision, error) {
	var revs []model.Revision
	if err := c.getJSON(ctx, cred, c.endpoints.Revisions(id.String()), &revs); err != nil {
		return nil, err
	}
	return revs, nil
}

// ListPermissions fetches one permission row per role.
func (c *Client) ListPermissions(ctx context.Context, cred Credential) ([]model.PermissionRow, error) {
	var rows []model.PermissionRow
	if err := c.getJSON(ctx, cred, c.endpoints.Permissions, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdatePermission saves the flags of one role.
func (c *Client) UpdatePermission(ctx context.Context, cred Credential, row model.PermissionRow) error {
	return c.send(ctx, cred, http.MethodPatch, c.endpoints.Permissions, row)
}

// GetSettings fetches the settings record. Missing text fields are empty and
// a missing display config becomes "{}". A display config delivered as a
// JSON object or array is returned as its raw JSON text.
func (c *Client) GetSettings(ctx context.Context, cred Credential) (model.Settings, error) {
	resp, err := c.Do(ctx, cred, Request{Path: c.endpoints.Settings})
	if err != nil {
		return model.Settings{}, err
	}

	settings := model.Settings{DisplayConfig: model.DefaultDisplayConfig}
	if !resp.IsJSON() {
		return settings, nil
	}

	settings.SiteName = presentString(resp.Raw, "siteName")
	settings.LogoURL = presentString(resp.Raw, "logoUrl")
	settings.MailFrom = presentString(resp.Raw, "mailFrom")

	dc := gjson.GetBytes(resp.Raw, "displayConfig")
	switch {
	case !dc.Exists() || dc.Type == gjson.Null:
	case dc.IsObject() || dc.IsArray():
		settings.DisplayConfig = strings.TrimSpace(dc.Raw)
	default:
		settings.DisplayConfig = dc.String()
	}
	return settings, nil
}

// UpdateSettings saves the settings record. All fields, including the display
// config text, are sent as plain strings.
func (c *Client) UpdateSettings(ctx context.Context, cred Credential, s model.Settings) error {
	return c.send(ctx, cred, http.MethodPatch, c.endpoints.Settings, s)
}

// getJSON issues a GET and decodes the JSON reply into v.
func (c *Client) getJSON(ctx context.Context, cred Credential, path string, v any) error {
	resp, err := c.Do(ctx, cred, Request{Path: path})
	if err != nil {
		return err
	}
	return resp.Decode(v)
}

// send issues a mutation and discards the reply body.
func (c *Client) send(ctx context.Context, cred Credential, method, path string, body any) error {
	_, err := c.Do(ctx, cred, Request{Method: method, Path: path, Body: body})
	return err
}

// presentString returns the field as text, or "" when absent or null.
func presentString(raw []byte, field string) string {
	r := gjson.GetBytes(raw, field)
	if !r.Exists() || r.Type == gjson.Null {
		return ""
	}
	return r.String()
}
