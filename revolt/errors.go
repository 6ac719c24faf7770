// Copyright 2026 The Bloc Authors
// SPDX-License-Identifier: Apache-2.0

package revolt

import (
	"errors"
	"fmt"
)

// APIError represents a structured error response from the Revolt
// server. Callers can use errors.As to extract the structured
// information:
//
//	var apiErr *revolt.APIError
//	if errors.As(err, &apiErr) {
//	    if apiErr.Type == revolt.ErrTypeInvalidSession { ... }
//	}
type APIError struct {
	// Type is the Revolt error code (e.g., "InvalidCredentials",
	// "TooManyRequests"). Empty when the error body was not valid
	// JSON; Status carries the raw HTTP status line instead.
	Type string `json:"type"`
	// StatusCode is the HTTP status code of the response.
	StatusCode int `json:"-"`
	// Status is the raw HTTP status line, kept for responses whose
	// body could not be parsed.
	Status string `json:"-"`
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("revolt: %s (%d)", e.Type, e.StatusCode)
	}
	return fmt.Sprintf("revolt: server error: %s", e.Status)
}

// Standard Revolt error codes.
const (
	ErrTypeUnauthenticated    = "Unauthenticated"
	ErrTypeInvalidSession     = "InvalidSession"
	ErrTypeInvalidCredentials = "InvalidCredentials"
	ErrTypeNotFound           = "NotFound"
	ErrTypeMissingPermission  = "MissingPermission"
	ErrTypeTooManyRequests    = "TooManyRequests"
	ErrTypeInternalError      = "InternalError"
)

// IsAPIError checks whether err is a *APIError with the given error code.
func IsAPIError(err error, errorType string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == errorType
	}
	return false
}
