// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/olegiv/kanri-go/internal/testutil"
)

func newTestClient(t *testing.T, api *testutil.FakeAPI, mode AuthMode) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL: api.URL(),
		Mode:    mode,
		Logger:  testutil.TestLoggerSilent(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		in      string
		want    AuthMode
		wantErr bool
	}{
		{"token", AuthModeToken, false},
		{"cookie", AuthModeCookie, false},
		{" Cookie ", AuthModeCookie, false},
		{"", "", true},
		{"basic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAuthMode(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAuthMode(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAuthMode(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestDo_NonSuccessMessageContainsStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"bad request with body", http.StatusBadRequest, "email taken", "HTTP 400: email taken"},
		{"unauthorized without body", http.StatusUnauthorized, "", "HTTP 401: Unauthorized"},
		{"forbidden", http.StatusForbidden, "nope", "HTTP 403: nope"},
		{"server error", http.StatusInternalServerError, "", "HTTP 500: Internal Server Error"},
		{"unavailable", http.StatusServiceUnavailable, "maintenance", "HTTP 503: maintenance"},
		{"redirect is not success", http.StatusNotModified, "", "HTTP 304: Not Modified"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewFakeAPI(t)
			api.Raw(http.MethodGet, "/thing", tt.status, "text/plain", tt.body)
			c := newTestClient(t, api, AuthModeToken)

			_, err := c.Do(context.Background(), Credential{}, Request{Path: "/thing"})
			if err == nil {
				t.Fatal("Do() expected error")
			}
			if !strings.Contains(err.Error(), strconv.Itoa(tt.status)) {
				t.Errorf("error %q does not contain status %d", err.Error(), tt.status)
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}

			var httpErr *HTTPError
			if !errors.As(err, &httpErr) {
				t.Fatalf("error type = %T, want *HTTPError", err)
			}
			if httpErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", httpErr.Status, tt.status)
			}
			if !IsHTTPStatus(err, tt.status) {
				t.Error("IsHTTPStatus() = false")
			}
		})
	}
}

func TestDo_ErrorBodyIsBounded(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Raw(http.MethodGet, "/big", http.StatusBadGateway, "text/plain", strings.Repeat("x", MaxErrorBodyLen+100))
	c := newTestClient(t, api, AuthModeToken)

	_, err := c.Do(context.Background(), Credential{}, Request{Path: "/big"})
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error type = %T, want *HTTPError", err)
	}
	if len(httpErr.Body) != MaxErrorBodyLen {
		t.Errorf("len(Body) = %d, want %d", len(httpErr.Body), MaxErrorBodyLen)
	}
}

func TestDo_JSONResponseIsDecoded(t *testing.T) {
	bodies := []string{
		`{"postCount":3,"lastUpdated":"2026-01-02"}`,
		`[{"id":1,"email":"a@example.com"},{"id":"u2"}]`,
		`"plain string"`,
		`42`,
		`true`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			api := testutil.NewFakeAPI(t)
			api.Raw(http.MethodGet, "/data", http.StatusOK, "application/json; charset=utf-8", body)
			c := newTestClient(t, api, AuthModeToken)

			resp, err := c.Do(context.Background(), Credential{}, Request{Path: "/data"})
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}

			var want any
			dec := json.NewDecoder(strings.NewReader(body))
			dec.UseNumber()
			if err := dec.Decode(&want); err != nil {
				t.Fatalf("decoding expected value: %v", err)
			}
			if !reflect.DeepEqual(resp.Value, want) {
				t.Errorf("Value = %#v, want %#v", resp.Value, want)
			}
			if !resp.IsJSON() {
				t.Error("IsJSON() = false")
			}
		})
	}
}

func TestDo_NonJSONResponseIsText(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"plain text", "text/plain", "ok"},
		{"html", "text/html; charset=utf-8", "<p>done</p>"},
		{"json-looking text", "text/plain", `{"a":1}`},
		{"empty text", "text/plain", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := testutil.NewFakeAPI(t)
			api.Raw(http.MethodPost, "/ack", http.StatusOK, tt.contentType, tt.body)
			c := newTestClient(t, api, AuthModeToken)

			resp, err := c.Do(context.Background(), Credential{}, Request{Method: http.MethodPost, Path: "/ack"})
			if err != nil {
				t.Fatalf("Do() error = %v", err)
			}
			if resp.Value != tt.body {
				t.Errorf("Value = %#v, want %q", resp.Value, tt.body)
			}
			if resp.Text() != tt.body {
				t.Errorf("Text() = %q, want %q", resp.Text(), tt.body)
			}
		})
	}
}

func TestDo_EmptyJSONBodyDecodesToNil(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Raw(http.MethodDelete, "/x", http.StatusNoContent, "application/json", "")
	c := newTestClient(t, api, AuthModeToken)

	resp, err := c.Do(context.Background(), Credential{}, Request{Method: http.MethodDelete, Path: "/x"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if resp.Value != nil {
		t.Errorf("Value = %#v, want nil", resp.Value)
	}
}

func TestDo_ContentTypeHeader(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Raw(http.MethodPost, "/echo", http.StatusOK, "text/plain", "")
	api.Raw(http.MethodGet, "/echo", http.StatusOK, "text/plain", "")
	c := newTestClient(t, api, AuthModeToken)
	ctx := context.Background()

	if _, err := c.Do(ctx, Credential{}, Request{Method: http.MethodPost, Path: "/echo", Body: map[string]int{"a": 1}}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if _, err := c.Do(ctx, Credential{}, Request{Path: "/echo"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	header := http.Header{}
	header.Set(HeaderContentType, "text/csv")
	if _, err := c.Do(ctx, Credential{}, Request{Method: http.MethodPost, Path: "/echo", Body: "a,b", Header: header}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	calls := api.Calls()
	if len(calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(calls))
	}
	if got := calls[0].Header.Get(HeaderContentType); got != "application/json" {
		t.Errorf("body request Content-Type = %q, want application/json", got)
	}
	if string(calls[0].Body) != `{"a":1}` {
		t.Errorf("body = %q", calls[0].Body)
	}
	if got := calls[1].Header.Get(HeaderContentType); got != "" {
		t.Errorf("bodiless request Content-Type = %q, want empty", got)
	}
	if got := calls[2].Header.Get(HeaderContentType); got != "text/csv" {
		t.Errorf("overridden Content-Type = %q, want text/csv", got)
	}
	if string(calls[2].Body) != "a,b" {
		t.Errorf("raw body = %q, want verbatim", calls[2].Body)
	}
}

func TestDo_PreEncodedBodySentVerbatim(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Raw(http.MethodPatch, "/s", http.StatusOK, "text/plain", "")
	c := newTestClient(t, api, AuthModeToken)

	raw := json.RawMessage(`{ "keep" : "spacing" }`)
	if _, err := c.Do(context.Background(), Credential{}, Request{Method: http.MethodPatch, Path: "/s", Body: raw}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := api.Calls()[0].Body; !bytes.Equal(got, raw) {
		t.Errorf("body = %q, want %q", got, raw)
	}
}

func TestDo_TokenModeAuthorization(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Raw(http.MethodGet, "/me", http.StatusOK, "text/plain", "")
	c := newTestClient(t, api, AuthModeToken)
	ctx := context.Background()

	if _, err := c.Do(ctx, Credential{Token: "abc"}, Request{Path: "/me"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if _, err := c.Do(ctx, Credential{}, Request{Path: "/me"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	calls := api.Calls()
	if got := calls[0].Header.Get(HeaderAuthorization); got != "Bearer abc" {
		t.Errorf("Authorization = %q, want %q", got, "Bearer abc")
	}
	if got := calls[1].Header.Get(HeaderAuthorization); got != "" {
		t.Errorf("Authorization without token = %q, want empty", got)
	}
}

func TestDo_CookieModeSendsCookies(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Raw(http.MethodGet, "/me", http.StatusOK, "text/plain", "")
	c := newTestClient(t, api, AuthModeCookie)

	cred := Credential{Token: "ignored", Cookies: []Cookie{{Name: "sid", Value: "s1"}}}
	if _, err := c.Do(context.Background(), cred, Request{Path: "/me"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	call := api.Calls()[0]
	if got := call.Header.Get(HeaderAuthorization); got != "" {
		t.Errorf("Authorization = %q, want none in cookie mode", got)
	}
	if got := call.Header.Get("Cookie"); got != "sid=s1" {
		t.Errorf("Cookie = %q, want sid=s1", got)
	}
}

func TestDo_RequestHeaders(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	api.Raw(http.MethodGet, "/h", http.StatusOK, "text/plain", "")
	c, err := New(Config{BaseURL: api.URL() + "/", UserAgent: "kanri/test", Logger: testutil.TestLoggerSilent()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := c.Do(context.Background(), Credential{}, Request{Path: "/h"}); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	call := api.Calls()[0]
	if call.Path != "/h" {
		t.Errorf("path = %q, want /h", call.Path)
	}
	if got := call.Header.Get(HeaderUserAgent); got != "kanri/test" {
		t.Errorf("User-Agent = %q", got)
	}
	if call.Header.Get(HeaderRequestID) == "" {
		t.Error("X-Request-ID missing")
	}
}

func TestDo_NetworkError(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	c := newTestClient(t, api, AuthModeToken)
	api.Server.Close()

	_, err := c.Do(context.Background(), Credential{}, Request{Path: "/gone"})
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("error type = %T, want *NetworkError", err)
	}
	if netErr.Method != http.MethodGet {
		t.Errorf("Method = %q", netErr.Method)
	}
}

func TestNew_RejectsUnknownMode(t *testing.T) {
	if _, err := New(Config{Mode: "basic"}); err == nil {
		t.Error("New() expected error for unknown mode")
	}
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Mode() != AuthModeToken {
		t.Errorf("Mode() = %q, want token", c.Mode())
	}
	if c.Endpoints() != DefaultEndpoints() {
		t.Errorf("Endpoints() = %+v", c.Endpoints())
	}
}

func TestEndpoints(t *testing.T) {
	e := DefaultEndpoints()
	if got := e.Post("7"); got != "/api/admin/posts/7" {
		t.Errorf("Post() = %q", got)
	}
	if got := e.Revisions("a/b"); got != "/api/admin/posts/a%2Fb/revisions" {
		t.Errorf("Revisions() = %q", got)
	}
	if got := e.UserByQuery("x y"); got != "/api/admin/users?id=x+y" {
		t.Errorf("UserByQuery() = %q", got)
	}
}
