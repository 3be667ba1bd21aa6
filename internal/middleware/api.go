// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for student sessions, rate
// limiting and response hardening.
package middleware

import (
	"encoding/json"
	"net/http"
)

// ContextKey namespaces values stored in request contexts.
type ContextKey string

// ErrorBody is the payload of an API error.
type ErrorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// APIError is the JSON envelope middleware rejections are written in. It
// matches the envelope of the API handlers.
type APIError struct {
	Error ErrorBody `json:"error"`
}

// WriteAPIError writes an error envelope with the given status.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(APIError{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}
