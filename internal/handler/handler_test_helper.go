// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/inflight"
	"github.com/olegiv/kanri-go/internal/middleware"
	"github.com/olegiv/kanri-go/internal/render"
	"github.com/olegiv/kanri-go/internal/session"
	"github.com/olegiv/kanri-go/internal/testutil"
	"github.com/olegiv/kanri-go/web"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

// Paths of the fake admin API (the client's default endpoints).
const (
	apiLogin       = "/api/admin/login"
	apiStats       = "/api/admin/stats"
	apiUsers       = "/api/admin/users"
	apiPosts       = "/api/admin/posts"
	apiPermissions = "/api/admin/permissions"
	apiSettings    = "/api/admin/settings"
)

// testEnv is a console wired to a fake admin API, driven like a browser:
// the session cookie is carried between requests.
type testEnv struct {
	t        *testing.T
	api      *testutil.FakeAPI
	client   *adminapi.Client
	sessions *session.Manager
	tracker  *inflight.Tracker
	router   http.Handler
	cookie   *http.Cookie
}

type testEnvOption func(*RouterConfig)

func withLoginProtection(lp *middleware.LoginProtection) testEnvOption {
	return func(c *RouterConfig) { c.LoginProtection = lp }
}

func newTestEnv(t *testing.T, mode adminapi.AuthMode, opts ...testEnvOption) *testEnv {
	t.Helper()

	api := testutil.NewFakeAPI(t)
	client, err := adminapi.New(adminapi.Config{
		BaseURL: api.URL(),
		Mode:    mode,
		Logger:  testutil.TestLoggerSilent(),
	})
	if err != nil {
		t.Fatalf("adminapi.New: %v", err)
	}

	sealer, err := session.NewSealer(testSecret)
	if err != nil {
		t.Fatalf("NewSealer: %v", err)
	}
	sm := session.New(nil, true)
	sessions := session.NewManager(sm, mode, sealer, redirectLogin, testutil.TestLoggerSilent())

	renderer, err := render.New(render.Config{
		TemplatesFS:    mustSub(t, web.Templates, "templates"),
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	tracker := inflight.New()
	cfg := RouterConfig{
		Deps: Deps{
			API:      client,
			Sessions: sessions,
			Renderer: renderer,
			Inflight: tracker,
			Logger:   testutil.TestLoggerSilent(),
		},
		UserRoles:    []string{"ADMIN", "EDITOR", "VIEWER"},
		PostStatuses: []string{"DRAFT", "PUBLISHED"},
		CSRF:         middleware.DefaultCSRFConfig([]byte(testSecret), true, 8080),
		Security:     middleware.DefaultSecurityHeadersConfig(true),
		Static:       mustSub(t, web.Static, "static"),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &testEnv{
		t:        t,
		api:      api,
		client:   client,
		sessions: sessions,
		tracker:  tracker,
		router:   NewRouter(cfg),
	}
}

func mustSub(t *testing.T, fsys fs.FS, dir string) fs.FS {
	t.Helper()
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		t.Fatalf("fs.Sub(%s): %v", dir, err)
	}
	return sub
}

// do sends a same-origin request with the current session cookie and keeps
// any new session cookie from the response.
func (e *testEnv) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()

	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Sec-Fetch-Site", "same-origin")
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == e.sessions.Cookie.Name {
			if c.MaxAge < 0 {
				e.cookie = nil
			} else {
				e.cookie = c
			}
		}
	}
	return rec
}

func (e *testEnv) get(path string) *httptest.ResponseRecorder {
	e.t.Helper()
	return e.do(http.MethodGet, path, nil)
}

func (e *testEnv) post(path string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	return e.do(http.MethodPost, path, form)
}

// login signs in through the console with a token issued by the fake API
// and forgets the calls made so far.
func (e *testEnv) login() {
	e.t.Helper()

	if e.sessions.Mode() == adminapi.AuthModeCookie {
		e.api.JSON(http.MethodPost, apiLogin, http.StatusOK, map[string]any{"ok": true})
		e.api.SetCookie(http.MethodPost, apiLogin, &http.Cookie{Name: "admin_sid", Value: "sid-1"})
	} else {
		e.api.JSON(http.MethodPost, apiLogin, http.StatusOK, map[string]string{"token": "tok-1"})
	}

	rec := e.post(RouteLogin, url.Values{"email": {"ops@example.com"}, "password": {"pw"}})
	if rec.Code != http.StatusSeeOther {
		e.t.Fatalf("login: status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	e.api.Reset()
}

// followRedirect asserts a 303 to location and GETs it.
func (e *testEnv) followRedirect(rec *httptest.ResponseRecorder, location string) *httptest.ResponseRecorder {
	e.t.Helper()
	if rec.Code != http.StatusSeeOther {
		e.t.Fatalf("status = %d, want 303; body: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		e.t.Fatalf("Location = %q, want %q", got, location)
	}
	return e.get(location)
}

// assertContains fails unless body contains every want.
func assertContains(t *testing.T, body string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q\n%s", want, body)
		}
	}
}

func assertNotContains(t *testing.T, body string, unwanted ...string) {
	t.Helper()
	for _, u := range unwanted {
		if strings.Contains(body, u) {
			t.Errorf("body unexpectedly contains %q", u)
		}
	}
}
