// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package adminapi

import (
	"errors"
	"fmt"
)

// NetworkError reports a transport failure before any response arrived.
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// HTTPError reports a response whose status is outside the 2xx range.
type HTTPError struct {
	Status     int
	StatusText string
	Body       string
}

// Error returns "HTTP <status>: <body>", falling back to the status text
// when the body is empty.
func (e *HTTPError) Error() string {
	msg := e.Body
	if msg == "" {
		msg = e.StatusText
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, msg)
}

// ValidationError reports a local precondition failure. No request was sent
// (or, for login, the response lacked a required field).
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrNoToken is returned by Login in token mode when the response carries no token.
var ErrNoToken = NewValidationError("token", "no token returned")

// IsHTTPStatus reports whether err is an HTTPError with the given status.
func IsHTTPStatus(err error, status int) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}
