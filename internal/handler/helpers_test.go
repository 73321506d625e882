// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/kanri-go/internal/adminapi"
)

func TestAPIFailed(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLog string
		wantMsg string
	}{
		{
			name:    "validation",
			err:     adminapi.NewValidationError("title", "title required"),
			wantLog: "level=DEBUG msg=\"admin API call rejected locally\"",
			wantMsg: "title required",
		},
		{
			name:    "unauthorized",
			err:     &adminapi.HTTPError{Status: http.StatusUnauthorized, Body: "expired"},
			wantLog: "level=WARN msg=\"admin API rejected credential\"",
			wantMsg: "HTTP 401: expired",
		},
		{
			name:    "other status",
			err:     &adminapi.HTTPError{Status: http.StatusConflict, Body: "taken"},
			wantLog: "level=WARN msg=\"admin API rejected request\"",
			wantMsg: "HTTP 409: taken",
		},
		{
			name:    "network",
			err:     &adminapi.NetworkError{Method: "GET", URL: "http://api/x", Err: errors.New("refused")},
			wantLog: "level=ERROR msg=\"admin API unreachable\"",
			wantMsg: "GET http://api/x: refused",
		},
		{
			name:    "cancelled",
			err:     context.Canceled,
			wantLog: "level=DEBUG msg=\"admin API call cancelled\"",
			wantMsg: "context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
			b := newBase(Deps{Logger: logger})
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)

			msg := b.apiFailed(req, "op", tt.err)

			assert.Equal(t, tt.wantMsg, msg)
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), "op=op")
		})
	}
}
