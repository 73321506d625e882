// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render executes the console's html/template pages.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/kanri-go/internal/i18n"
	"github.com/olegiv/kanri-go/internal/model"
)

// Session keys for flash messages.
const (
	FlashKey     = "flash"
	FlashTypeKey = "flash_type"
)

// Flash types map to CSS classes of the status region.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Placeholder is shown for values the API did not send.
const Placeholder = "-"

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses all templates from the filesystem.
// Pages under admin/ get the admin layout, pages under auth/ only the base
// layout. Every page sees all partials.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := r.getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	const baseLayout = "layouts/base.html"
	layouts := map[string][]string{
		"admin": {baseLayout, "layouts/admin.html"},
		"auth":  {baseLayout},
	}

	for dir, layoutFiles := range layouts {
		pages, err := r.getTemplateFiles(templatesFS, dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}

		for _, tmplPath := range pages {
			name := dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := append([]string{}, layoutFiles...)
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	// Partials on their own, for fragment responses.
	if len(partials) > 0 {
		tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, partials...)
		if err != nil {
			return fmt.Errorf("parsing partials: %w", err)
		}
		r.templates["partials"] = tmpl
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory.
func (r *Renderer) getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// Directory might not exist, that's ok
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"T": i18n.T,
		"dash": func(s string) string {
			if s == "" {
				return Placeholder
			}
			return s
		},
		"hasCap": func(row model.PermissionRow, capability string) bool {
			return row.Has(capability)
		},
		"capabilities": func() []string {
			return model.Capabilities
		},
		"languageName": i18n.LanguageName,
	}
}

// LanguageOption is one entry of the language picker.
type LanguageOption struct {
	Code     string
	Name     string
	Selected bool
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	Nav         string
	Path        string
	Lang        string
	Languages   []LanguageOption
	CurrentYear int
	IsDev       bool
}

// Render renders a page template with the given data.
// A flash already set on data wins over one stored in the session.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.IsDev = r.isDev
	data.Path = req.URL.Path
	if data.Lang == "" {
		data.Lang = i18n.FromContext(req.Context())
	}
	data.Languages = languageOptions(data.Lang)

	if data.Flash == "" && r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), FlashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), FlashTypeKey)
		}
	}
	if data.Flash != "" && data.FlashType == "" {
		data.FlashType = FlashInfo
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	return nil
}

// RenderPartial renders a single named partial without any layout.
func (r *Renderer) RenderPartial(w http.ResponseWriter, name string, data any) error {
	tmpl, ok := r.templates["partials"]
	if !ok || tmpl.Lookup(name) == nil {
		return fmt.Errorf("partial %s not found", name)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, name, data); err != nil {
		return fmt.Errorf("executing partial %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash stores a message to be shown by the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), FlashKey, message)
		r.sessionManager.Put(req.Context(), FlashTypeKey, flashType)
	}
}

// Has reports whether a page template is loaded.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

func languageOptions(current string) []LanguageOption {
	opts := make([]LanguageOption, 0, len(i18n.SupportedLanguages))
	for _, code := range i18n.SupportedLanguages {
		opts = append(opts, LanguageOption{
			Code:     code,
			Name:     i18n.LanguageName(code),
			Selected: code == current,
		})
	}
	return opts
}
