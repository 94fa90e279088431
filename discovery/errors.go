// Copyright 2025 The Prospecta Authors
// SPDX-License-Identifier: Apache-2.0

package discovery

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Error represents failures raised while discovering clients.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

// ErrorKind tells callers which stage of a discovery run failed.
type ErrorKind int

const (
	// KindUnknown unclassified failure.
	KindUnknown ErrorKind = iota
	// KindResolutionFailed the city/state could not be resolved to coordinates.
	KindResolutionFailed
	// KindProviderUnavailable a place provider could not be reached or rejected us.
	KindProviderUnavailable
	// KindRateLimit a provider told us to slow down.
	KindRateLimit
	// KindPersistenceFailed the store rejected a read or write.
	KindPersistenceFailed
	// KindInvalidRequest the search request itself is malformed.
	KindInvalidRequest
)

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsResolutionFailed verifies whether err means the location was not resolvable.
func IsResolutionFailed(err error) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Kind == KindResolutionFailed
	}

	return false
}

// IsProviderUnavailable verifies whether err means a place provider failed.
func IsProviderUnavailable(err error) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Kind == KindProviderUnavailable || dErr.Kind == KindRateLimit
	}

	errStr := strings.ToLower(err.Error())

	return strings.Contains(errStr, "too many requests") ||
		strings.Contains(errStr, "service unavailable")
}

// IsPersistenceFailed verifies whether err came from the store.
func IsPersistenceFailed(err error) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Kind == KindPersistenceFailed
	}

	return false
}

// IsInvalidRequest verifies whether err means the caller's request is bad.
func IsInvalidRequest(err error) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Kind == KindInvalidRequest
	}

	return false
}

// classifyHTTPStatus maps an upstream HTTP status into a discovery error.
func classifyHTTPStatus(provider string, statusCode int) *Error {
	switch statusCode {
	case http.StatusTooManyRequests:
		return &Error{
			Kind:    KindRateLimit,
			Message: fmt.Sprintf("%s rate limit reached", provider),
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{
			Kind:    KindProviderUnavailable,
			Message: fmt.Sprintf("%s rejected the credentials (code %d)", provider, statusCode),
		}
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return &Error{
			Kind:    KindProviderUnavailable,
			Message: fmt.Sprintf("%s unavailable (code %d)", provider, statusCode),
		}
	default:
		return &Error{
			Kind:    KindProviderUnavailable,
			Message: fmt.Sprintf("%s returned HTTP %d", provider, statusCode),
		}
	}
}
