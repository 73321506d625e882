// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// Call is one request received by a FakeAPI.
type Call struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// JSON decodes the recorded body into a generic map.
func (c Call) JSON(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(c.Body, &m); err != nil {
		t.Fatalf("decoding body of %s %s: %v (body %q)", c.Method, c.Path, err, c.Body)
	}
	return m
}

type reply struct {
	status      int
	contentType string
	body        []byte
	cookies     []*http.Cookie
}

// FakeAPI is an httptest server standing in for the remote admin API.
// Routes are keyed by method and path; unknown routes answer 404.
// Every request is recorded.
type FakeAPI struct {
	Server *httptest.Server

	mu      sync.Mutex
	routes  map[string]reply
	calls   []Call
	handler map[string]http.HandlerFunc
}

// NewFakeAPI starts a FakeAPI that is closed when the test ends.
func NewFakeAPI(t *testing.T) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		routes:  make(map[string]reply),
		handler: make(map[string]http.HandlerFunc),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake.
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// JSON registers a JSON reply.
func (f *FakeAPI) JSON(method, path string, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	f.Raw(method, path, status, "application/json", string(body))
}

// Raw registers a reply with an explicit content type and body.
func (f *FakeAPI) Raw(method, path string, status int, contentType, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = reply{status: status, contentType: contentType, body: []byte(body)}
}

// SetCookie adds a cookie to an already registered reply.
func (f *FakeAPI) SetCookie(method, path string, c *http.Cookie) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.routes[method+" "+path]
	r.cookies = append(r.cookies, c)
	f.routes[method+" "+path] = r
}

// Func registers a custom handler for a route.
func (f *FakeAPI) Func(method, path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler[method+" "+path] = h
}

// Calls returns a copy of all recorded requests.
func (f *FakeAPI) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsTo returns the recorded requests matching method and path.
func (f *FakeAPI) CallsTo(method, path string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Reset forgets recorded requests.
func (f *FakeAPI) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeAPI) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	key := r.Method + " " + r.URL.Path

	f.mu.Lock()
	f.calls = append(f.calls, Call{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Header: r.Header.Clone(),
		Body:   body,
	})
	h, hasHandler := f.handler[key]
	rep, hasReply := f.routes[key]
	f.mu.Unlock()

	if hasHandler {
		h(w, r)
		return
	}
	if !hasReply {
		http.Error(w, "no route "+key, http.StatusNotFound)
		return
	}
	for _, c := range rep.cookies {
		http.SetCookie(w, c)
	}
	if rep.contentType != "" {
		w.Header().Set("Content-Type", rep.contentType)
	}
	w.WriteHeader(rep.status)
	_, _ = w.Write(rep.body)
}
