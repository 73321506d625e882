// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

// PostStatusDraft is the default status of a new post.
const PostStatusDraft = "DRAFT"

// Post represents a content post. The list endpoint may omit Content.
type Post struct {
	ID        ID     `json:"id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	Status    string `json:"status"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updatedAt"`
}

// IsDraft returns true if the post is a draft.
func (p *Post) IsDraft() bool {
	return p.Status == PostStatusDraft
}

// PostInput is the body of post create and update requests.
type PostInput struct {
	Title   string `json:"title" validate:"required"`
	Status  string `json:"status"`
	Content string `json:"content"`
}

// Revision is an immutable snapshot of a post.
type Revision struct {
	CreatedAt string `json:"createdAt"`
	Status    string `json:"status"`
	Title     string `json:"title"`
}
