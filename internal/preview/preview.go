// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package preview projects the post editor form into the live preview pane.
package preview

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Form is the editor state the preview is computed from.
type Form struct {
	Title   string
	Status  string
	Content string
}

// View is what the preview pane shows.
type View struct {
	Status     string
	Title      string
	TitleEmpty bool
	Body       string
	BodyEmpty  bool
	// BodyHTML is the body rendered as sanitized markdown. Empty when the
	// body is empty or cannot be rendered.
	BodyHTML template.HTML
}

// Placeholders are shown for an empty title or body.
type Placeholders struct {
	Title string
	Body  string
}

// Build is a pure function of the form: status label, title or placeholder,
// body or placeholder. Values are shown as typed, without trimming.
func Build(f Form, ph Placeholders) View {
	v := View{
		Status: f.Status,
		Title:  f.Title,
		Body:   f.Content,
	}
	if v.Title == "" {
		v.Title = ph.Title
		v.TitleEmpty = true
	}
	if v.Body == "" {
		v.Body = ph.Body
		v.BodyEmpty = true
	} else {
		v.BodyHTML = Markdown(f.Content)
	}
	return v
}

// htmlSanitizer allows the safe subset of HTML for user-generated content.
var htmlSanitizer = bluemonday.UGCPolicy()

var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Markdown renders markdown source to sanitized HTML.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return ""
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes()))
}
