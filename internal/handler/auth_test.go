// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/olegiv/kanri-go/internal/adminapi"
	"github.com/olegiv/kanri-go/internal/middleware"
)

func TestLogin_TokenMode(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.api.JSON(http.MethodPost, apiLogin, http.StatusOK, map[string]string{"token": "tok-1"})
	env.api.JSON(http.MethodGet, apiStats, http.StatusOK, map[string]any{"postCount": 3})

	rec := env.post(RouteLogin, url.Values{"email": {" ops@example.com "}, "password": {"pw"}})
	rec = env.followRedirect(rec, RouteAdmin)

	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", rec.Code)
	}

	login := env.api.CallsTo(http.MethodPost, apiLogin)
	if len(login) != 1 {
		t.Fatalf("login calls = %d, want 1", len(login))
	}
	body := login[0].JSON(t)
	if body["email"] != "ops@example.com" || body["password"] != "pw" {
		t.Errorf("login body = %v", body)
	}

	stats := env.api.CallsTo(http.MethodGet, apiStats)
	if len(stats) != 1 {
		t.Fatalf("stats calls = %d, want 1", len(stats))
	}
	if got := stats[0].Header.Get("Authorization"); got != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer tok-1")
	}
}

func TestLogin_NoTokenStoresNothing(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.api.JSON(http.MethodPost, apiLogin, http.StatusOK, map[string]any{"ok": true})

	rec := env.post(RouteLogin, url.Values{"email": {"ops@example.com"}, "password": {"pw"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no navigation)", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("Location = %q, want none", loc)
	}
	assertContains(t, rec.Body.String(), `value="ops@example.com"`, adminapi.ErrNoToken.Error(), "status-error")

	rec = env.get(RouteAdmin)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("/admin status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != RouteLogin {
		t.Errorf("/admin Location = %q, want %q", loc, RouteLogin)
	}
}

func TestLogin_Rejected(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.api.JSON(http.MethodPost, apiLogin, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})

	rec := env.post(RouteLogin, url.Values{"email": {"ops@example.com"}, "password": {"wrong"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	assertContains(t, rec.Body.String(), "bad credentials", `value="ops@example.com"`)
	assertNotContains(t, rec.Body.String(), `value="wrong"`)
}

func TestLogin_LockoutAfterFailures(t *testing.T) {
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRatePerMinute:   1000,
		IPBurst:           1000,
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	env := newTestEnv(t, adminapi.AuthModeToken, withLoginProtection(lp))
	env.api.JSON(http.MethodPost, apiLogin, http.StatusUnauthorized, map[string]string{"message": "bad credentials"})

	form := url.Values{"email": {"ops@example.com"}, "password": {"wrong"}}
	rec := env.post(RouteLogin, form)
	assertContains(t, rec.Body.String(), "bad credentials", "(1 attempts left)")
	rec = env.post(RouteLogin, form)
	assertContains(t, rec.Body.String(), "Too many failed attempts")

	env.api.Reset()
	rec = env.post(RouteLogin, form)
	assertContains(t, rec.Body.String(), "Too many failed attempts")
	if n := len(env.api.CallsTo(http.MethodPost, apiLogin)); n != 0 {
		t.Errorf("login calls while locked = %d, want 0", n)
	}
}

func TestLogin_ServerErrorsNeverLock(t *testing.T) {
	lp := middleware.NewLoginProtection(middleware.LoginProtectionConfig{
		IPRatePerMinute:   1000,
		IPBurst:           1000,
		MaxFailedAttempts: 2,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})
	env := newTestEnv(t, adminapi.AuthModeToken, withLoginProtection(lp))
	env.api.Raw(http.MethodPost, apiLogin, http.StatusServiceUnavailable, "text/plain", "maintenance")

	form := url.Values{"email": {"ops@example.com"}, "password": {"right"}}
	for i := 0; i < 3; i++ {
		rec := env.post(RouteLogin, form)
		assertContains(t, rec.Body.String(), "HTTP 503: maintenance")
		assertNotContains(t, rec.Body.String(), "Too many failed attempts", "attempts left")
	}
	if locked, _ := lp.IsAccountLocked("ops@example.com"); locked {
		t.Error("account locked after server errors")
	}
	if got := lp.GetRemainingAttempts("ops@example.com"); got != 2 {
		t.Errorf("GetRemainingAttempts() = %d, want 2", got)
	}
}

func TestLogin_CookieMode(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeCookie)
	env.login()
	env.api.JSON(http.MethodGet, apiStats, http.StatusOK, map[string]any{})

	rec := env.get(RouteAdmin)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	stats := env.api.CallsTo(http.MethodGet, apiStats)
	if len(stats) != 1 {
		t.Fatalf("stats calls = %d, want 1", len(stats))
	}
	if got := stats[0].Header.Get("Authorization"); got != "" {
		t.Errorf("Authorization = %q, want none in cookie mode", got)
	}
	ck, err := (&http.Request{Header: stats[0].Header}).Cookie("admin_sid")
	if err != nil || ck.Value != "sid-1" {
		t.Errorf("admin_sid cookie = %v, %v; want sid-1", ck, err)
	}
}

func TestLoginForm_RedirectsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.login()

	rec := env.get(RouteLogin)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteAdmin {
		t.Errorf("GET /login = %d %q, want 303 %q", rec.Code, rec.Header().Get("Location"), RouteAdmin)
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)
	env.login()

	rec := env.post(RouteLogout, nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
		t.Fatalf("logout = %d %q, want 303 %q", rec.Code, rec.Header().Get("Location"), RouteLogin)
	}

	rec = env.get(RouteAdmin)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
		t.Errorf("/admin after logout = %d %q, want redirect to login", rec.Code, rec.Header().Get("Location"))
	}
	if calls := env.api.Calls(); len(calls) != 0 {
		t.Errorf("API calls during logout = %d, want 0", len(calls))
	}
}

func TestSetLanguage(t *testing.T) {
	env := newTestEnv(t, adminapi.AuthModeToken)

	rec := env.post(RouteLanguage, url.Values{"lang": {"ja"}, "next": {RouteLogin}})
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != RouteLogin {
		t.Fatalf("POST /language = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = env.get(RouteLogin)
	assertContains(t, rec.Body.String(), `lang="ja"`)
}

func TestSafeNext(t *testing.T) {
	tests := []struct {
		next string
		want string
	}{
		{"", RouteAdmin},
		{"/admin/users", "/admin/users"},
		{"/login", "/login"},
		{"https://evil.example", RouteAdmin},
		{"//evil.example", RouteAdmin},
		{"/\\evil.example", RouteAdmin},
		{"admin", RouteAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.next, func(t *testing.T) {
			if got := safeNext(tt.next); got != tt.want {
				t.Errorf("safeNext(%q) = %q, want %q", tt.next, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{30 * time.Second, "30s"},
		{1500 * time.Millisecond, "2s"},
		{15 * time.Minute, "15m0s"},
		{14*time.Minute + 40*time.Second, "15m0s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestCountsAsFailedLogin(t *testing.T) {
	if !countsAsFailedLogin(&adminapi.HTTPError{Status: http.StatusUnauthorized}) {
		t.Error("401 should count as a failed login")
	}
	if !countsAsFailedLogin(adminapi.ErrNoToken) {
		t.Error("missing token should count as a failed login")
	}
	if !countsAsFailedLogin(&adminapi.HTTPError{Status: http.StatusBadRequest}) {
		t.Error("400 should count as a failed login")
	}
	if countsAsFailedLogin(&adminapi.NetworkError{Err: errors.New("connection refused")}) {
		t.Error("network error should not count as a failed login")
	}
	for _, status := range []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable} {
		if countsAsFailedLogin(&adminapi.HTTPError{Status: status}) {
			t.Errorf("%d should not count as a failed login", status)
		}
	}
	if countsAsFailedLogin(context.Canceled) {
		t.Error("cancellation should not count as a failed login")
	}
}
