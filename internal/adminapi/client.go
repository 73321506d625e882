// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package adminapi is the console's client for the remote admin REST API.
// All calls flow through Client.Do, which attaches the operator credential,
// encodes JSON bodies, classifies failures and decodes JSON or text replies.
package adminapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Response size limits.
const (
	MaxErrorBodyLen = 64 * 1024        // error bodies are only shown to the operator
	MaxResponseLen  = 10 * 1024 * 1024 // successful responses
)

// Header names used on outbound requests.
const (
	HeaderContentType   = "Content-Type"
	HeaderAuthorization = "Authorization"
	HeaderRequestID     = "X-Request-ID"
	HeaderUserAgent     = "User-Agent"
	contentTypeJSON     = "application/json"
)

// AuthMode selects how the credential is presented to the API.
type AuthMode string

// Supported auth modes.
const (
	AuthModeToken  AuthMode = "token"
	AuthModeCookie AuthMode = "cookie"
)

// ParseAuthMode validates an auth mode string.
func ParseAuthMode(s string) (AuthMode, error) {
	switch AuthMode(strings.ToLower(strings.TrimSpace(s))) {
	case AuthModeToken:
		return AuthModeToken, nil
	case AuthModeCookie:
		return AuthModeCookie, nil
	default:
		return "", fmt.Errorf("unknown auth mode %q (want token or cookie)", s)
	}
}

// Cookie is a remote session cookie captured at login in cookie mode.
type Cookie struct {
	Name  string
	Value string
}

// Credential is what the API issued at login: a bearer token in token mode,
// session cookies in cookie mode.
type Credential struct {
	Token   string
	Cookies []Cookie
}

// IsZero reports whether the credential carries nothing.
func (c Credential) IsZero() bool {
	return c.Token == "" && len(c.Cookies) == 0
}

// Config configures a Client.
type Config struct {
	// BaseURL is prepended to every endpoint path, e.g. "https://api.example.com".
	// An empty base URL sends requests relative to the path only, which is
	// only useful in tests with a custom transport.
	BaseURL   string
	Mode      AuthMode
	Endpoints Endpoints
	// Timeout bounds a whole request. Zero means no timeout beyond the transport's.
	Timeout   time.Duration
	UserAgent string
	Transport http.RoundTripper
	Logger    *slog.Logger
}

// Client talks to the admin API.
type Client struct {
	baseURL    string
	mode       AuthMode
	endpoints  Endpoints
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// defaultTransport is shared by clients that do not bring their own.
var defaultTransport = &http.Transport{
	Proxy:               http.ProxyFromEnvironment,
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
}

// New creates a Client. Outbound requests are wrapped in a tracing span.
func New(cfg Config) (*Client, error) {
	mode := cfg.Mode
	if mode == "" {
		mode = AuthModeToken
	}
	if mode != AuthModeToken && mode != AuthModeCookie {
		return nil, fmt.Errorf("unknown auth mode %q", mode)
	}

	endpoints := cfg.Endpoints
	if endpoints == (Endpoints{}) {
		endpoints = DefaultEndpoints()
	}

	transport := cfg.Transport
	if transport == nil {
		transport = defaultTransport
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "kanri"
	}

	return &Client{
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		mode:      mode,
		endpoints: endpoints,
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &TracingTransport{Transport: transport},
		},
		logger: logger,
	}, nil
}

// Mode returns the configured auth mode.
func (c *Client) Mode() AuthMode {
	return c.mode
}

// Endpoints returns the configured endpoint paths.
func (c *Client) Endpoints() Endpoints {
	return c.endpoints
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string
	// Body is JSON-encoded unless it is already encoded ([]byte,
	// json.RawMessage or string).
	Body   any
	Header http.Header
}

// Response is a successful (2xx) API reply.
type Response struct {
	Status      int
	ContentType string
	Header      http.Header
	Cookies     []*http.Cookie
	Raw         []byte
	// Value is the decoded JSON body when the reply is JSON, otherwise the
	// raw text as a string.
	Value any
}

// IsJSON reports whether the reply declared a JSON content type.
func (r *Response) IsJSON() bool {
	return isJSONContentType(r.ContentType)
}

// Text returns the raw body as a string.
func (r *Response) Text() string {
	return string(r.Raw)
}

// Decode unmarshals a JSON reply into v.
func (r *Response) Decode(v any) error {
	if !r.IsJSON() {
		return fmt.Errorf("expected a JSON response, got %q", r.ContentType)
	}
	if len(bytes.TrimSpace(r.Raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func isJSONContentType(ct string) bool {
	return strings.Contains(strings.ToLower(ct), contentTypeJSON)
}

// Do performs a request with the given credential.
// Non-2xx replies return *HTTPError, transport failures *NetworkError.
func (c *Client) Do(ctx context.Context, cred Credential, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	url := c.baseURL + req.Path

	var body io.Reader
	hasBody := req.Body != nil
	if hasBody {
		payload, err := encodeBody(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	if hasBody && httpReq.Header.Get(HeaderContentType) == "" {
		httpReq.Header.Set(HeaderContentType, contentTypeJSON)
	}
	httpReq.Header.Set(HeaderUserAgent, c.userAgent)
	httpReq.Header.Set(HeaderRequestID, requestID(ctx))
	c.authorize(httpReq, cred)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("admin api request failed",
			"method", method,
			"path", req.Path,
			"error", err)
		return nil, &NetworkError{Method: method, URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug("admin api request",
		"method", method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Best effort: a body that fails to read is reported as empty.
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, MaxErrorBodyLen))
		return nil, &HTTPError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Body:       string(errBody),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseLen))
	if err != nil {
		return nil, &NetworkError{Method: method, URL: url, Err: fmt.Errorf("reading response: %w", err)}
	}

	out := &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get(HeaderContentType),
		Header:      resp.Header,
		Cookies:     resp.Cookies(),
		Raw:         raw,
	}

	if !out.IsJSON() {
		out.Value = string(raw)
		return out, nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out.Value); err != nil {
		return nil, fmt.Errorf("%s %s: decoding JSON response: %w", method, req.Path, err)
	}
	return out, nil
}

// authorize attaches the credential according to the auth mode.
func (c *Client) authorize(req *http.Request, cred Credential) {
	switch c.mode {
	case AuthModeCookie:
		for _, ck := range cred.Cookies {
			req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	default:
		if cred.Token != "" {
			req.Header.Set(HeaderAuthorization, "Bearer "+cred.Token)
		}
	}
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return json.Marshal(body)
	}
}

// statusText returns the reason phrase of a response, e.g. "Not Found".
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// requestID propagates the console's request id, or makes a new one.
func requestID(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
