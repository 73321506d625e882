// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/model"
	"github.com/olegiv/kanri-go/internal/preview"
	"github.com/olegiv/kanri-go/internal/render"
)

// ContentHandler handles the post list, the editor and its preview.
type ContentHandler struct {
	base
	statuses []string
}

// NewContentHandler creates a new ContentHandler. statuses are offered in
// the editor's status select.
func NewContentHandler(d Deps, statuses []string) *ContentHandler {
	if len(statuses) == 0 {
		statuses = []string{model.PostStatusDraft}
	}
	return &ContentHandler{base: newBase(d), statuses: statuses}
}

// List renders the post cards and the editor. While a post is being edited
// its revision history is fetched as well.
func (h *ContentHandler) List(w http.ResponseWriter, r *http.Request) {
	st := h.loadState(r.Context())
	h.renderPage(w, r, st, "", "")
}

// Save creates or updates a post from the editor. An empty title fails
// locally. The edit path re-fetches the revision history after the update.
// Both paths reset the editor on success.
func (h *ContentHandler) Save(w http.ResponseWriter, r *http.Request) {
	lng := lang(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminContent, err.Error())
		return
	}

	st := h.loadState(r.Context())
	submitted := st
	submitted.Form = preview.Form{
		Title:   r.FormValue("title"),
		Status:  r.FormValue("status"),
		Content: r.FormValue("content"),
	}

	input := model.PostInput{
		Title:   strings.TrimSpace(submitted.Form.Title),
		Status:  submitted.Form.Status,
		Content: submitted.Form.Content,
	}
	if err := h.validate.Struct(input); err != nil {
		verr := adminapi.NewValidationError("title", i18n.T(lng, "content.title_required"))
		h.renderPage(w, r, submitted, verr.Error(), render.FlashError)
		return
	}

	cred := credential(r)
	if st.Editing() {
		id := model.ID(st.EditingID)
		if err := h.api.UpdatePost(r.Context(), cred, id, input); err != nil {
			h.renderPage(w, r, submitted, h.apiFailed(r, "update post", err), render.FlashError)
			return
		}
		revisions, err := h.api.ListRevisions(r.Context(), cred, id)
		if err != nil {
			h.renderPage(w, r, submitted, h.apiFailed(r, "list revisions", err), render.FlashError)
			return
		}
		h.logger.InfoContext(r.Context(), "post updated", "post_id", id, "revisions", len(revisions))
	} else {
		if err := h.api.CreatePost(r.Context(), cred, input); err != nil {
			h.renderPage(w, r, submitted, h.apiFailed(r, "create post", err), render.FlashError)
			return
		}
		h.logger.InfoContext(r.Context(), "post created", "title", input.Title)
	}

	h.resetState(r.Context())
	flashSuccess(w, r, h.renderer, redirectAdminContent, i18n.T(lng, "content.saved"))
}

// Action dispatches the card buttons and the clear button on act and id.
//
//	act=edit&id=..  loads the post into the editor
//	act=del&id=..   deletes the post, resetting the editor if it was open
//	act=clear       resets the editor to create mode
func (h *ContentHandler) Action(w http.ResponseWriter, r *http.Request) {
	lng := lang(r)

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, redirectAdminContent, err.Error())
		return
	}

	id := model.ID(formValue(r, "id"))
	switch act := r.FormValue("act"); act {
	case actEdit:
		post, err := h.api.GetPost(r.Context(), credential(r), id)
		if err != nil {
			flashError(w, r, h.renderer, redirectAdminContent, h.apiFailed(r, "get post", err))
			return
		}
		editingID := post.ID.String()
		if editingID == "" {
			editingID = id.String()
		}
		h.saveState(r.Context(), ContentState{
			EditingID: editingID,
			Form: preview.Form{
				Title:   post.Title,
				Status:  post.Status,
				Content: post.Content,
			},
		})
		http.Redirect(w, r, redirectAdminContent, http.StatusSeeOther)

	case actDelete:
		err := h.api.DeletePost(r.Context(), credential(r), id)
		if err != nil {
			flashError(w, r, h.renderer, redirectAdminContent, h.apiFailed(r, "delete post", err))
			return
		}
		if st := h.loadState(r.Context()); st.EditingID == id.String() {
			h.resetState(r.Context())
		}
		h.logger.InfoContext(r.Context(), "post deleted", "post_id", id)
		flashSuccess(w, r, h.renderer, redirectAdminContent, i18n.T(lng, "content.deleted"))

	case actClear:
		h.resetState(r.Context())
		http.Redirect(w, r, redirectAdminContent, http.StatusSeeOther)

	default:
		h.logger.WarnContext(r.Context(), "unknown content action", "act", act)
		flashError(w, r, h.renderer, redirectAdminContent, i18n.T(lng, "action.unknown"))
	}
}

// Preview renders the preview pane for the submitted editor fields. It is
// called by the page script on every input change.
func (h *ContentHandler) Preview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	pane := buildPreviewPane(lang(r), preview.Form{
		Title:   r.FormValue("title"),
		Status:  r.FormValue("status"),
		Content: r.FormValue("content"),
	})
	if err := h.renderer.RenderPartial(w, partialPrev, pane); err != nil {
		logAndInternalError(w, r, "failed to render preview", "error", err)
	}
}

// renderPage refreshes the post list (and revisions while editing) and
// renders the page with st in the editor.
func (h *ContentHandler) renderPage(w http.ResponseWriter, r *http.Request, st ContentState, msg, msgType string) {
	ctx, tk := h.beginRefresh(r, viewContent)
	defer tk.Done()

	pending := msg
	cred := credential(r)
	fail := func(op string, err error) {
		fetchMsg := h.apiFailed(r, op, err)
		if msg == "" {
			msg, msgType = fetchMsg, render.FlashError
		}
	}

	posts, err := h.api.ListPosts(ctx, cred)
	if err != nil {
		fail("list posts", err)
		posts = nil
	}

	var revisions []model.Revision
	if st.Editing() && err == nil {
		revisions, err = h.api.ListRevisions(ctx, cred, model.ID(st.EditingID))
		if err != nil {
			fail("list revisions", err)
		}
	}

	if h.abandonIfStale(w, r, tk, viewContent, pending) {
		return
	}

	lng := lang(r)
	h.render(w, r, tmplContent, render.TemplateData{
		Title:     i18n.T(lng, "content.title"),
		Nav:       viewContent,
		Flash:     msg,
		FlashType: msgType,
		Data: ContentView{
			Posts:         buildPostCards(posts, st.EditingID),
			State:         st,
			Statuses:      statusOptions(h.statuses, st.Form.Status),
			Revisions:     revisions,
			ShowRevisions: st.Editing(),
			Preview:       buildPreviewPane(lng, st.Form),
		},
	})
}

// loadState returns the editor state of the session, create mode if none.
func (h *ContentHandler) loadState(ctx context.Context) ContentState {
	raw := h.sessions.GetBytes(ctx, sessionKeyContentState)
	if len(raw) == 0 {
		return newContentState()
	}
	var st ContentState
	if err := json.Unmarshal(raw, &st); err != nil {
		h.logger.WarnContext(ctx, "discarding malformed editor state", "error", err)
		return newContentState()
	}
	return st
}

func (h *ContentHandler) saveState(ctx context.Context, st ContentState) {
	raw, err := json.Marshal(st)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode editor state", "error", err)
		return
	}
	h.sessions.Put(ctx, sessionKeyContentState, raw)
}

// resetState returns the editor to create mode with a blank draft.
func (h *ContentHandler) resetState(ctx context.Context) {
	h.sessions.Remove(ctx, sessionKeyContentState)
}

// statusOptions returns the configured statuses, plus current when a post
// carries a status the console does not list.
func statusOptions(statuses []string, current string) []string {
	if current == "" {
		return statuses
	}
	for _, s := range statuses {
		if s == current {
			return statuses
		}
	}
	out := make([]string, 0, len(statuses)+1)
	out = append(out, statuses...)
	return append(out, current)
}
