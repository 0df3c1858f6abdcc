// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api is the client for the chat backend's JSON API.
package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMalformed indicates a 2xx response whose body was missing or not
	// in the expected shape.
	ErrMalformed = errors.New("malformed response")

	// ErrUnauthorized indicates the session cookie is missing or expired.
	ErrUnauthorized = errors.New("not signed in")

	// ErrForbidden indicates the CSRF check failed or the resource belongs
	// to someone else.
	ErrForbidden = errors.New("forbidden")
)

// Error is a non-2xx response from the backend.
type Error struct {
	Op      string // operation name, e.g. "send message"
	Status  int
	Message string // server-provided message, if any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.Status)
}

// Unwrap maps auth statuses onto their sentinel errors.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// StatusCode extracts the HTTP status from err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
