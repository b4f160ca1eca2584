// CineCheck - LLM Movie Recommendation Validation
// Copyright 2026 CineCheck Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/cinecheck/cinecheck

package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies an outbound API failure. The set is closed: every error
// surfaced by the client carries exactly one of these kinds, and the retry
// policy is derived from the kind alone.
type Kind int

const (
	// KindUnknown covers unclassified failures, including 4xx statuses that
	// are neither auth, quota, nor not-found. Never retried.
	KindUnknown Kind = iota

	// KindTransient covers network-level failures and 5xx statuses that may
	// succeed on retry.
	KindTransient

	// KindAuth covers 401/403 responses. Never retried.
	KindAuth

	// KindQuota covers 429 responses. Retried with backoff.
	KindQuota

	// KindNotFound covers 404 responses. Never retried.
	KindNotFound
)

// String returns the lowercase name of the kind, matching the label values
// used in metrics and logs.
func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindAuth:
		return "auth"
	case KindQuota:
		return "quota"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Retryable reports whether a request failing with this kind may be retried.
func (k Kind) Retryable() bool {
	return k == KindTransient || k == KindQuota
}

// Error is the typed error returned by Client for all failed requests.
// Callers inspect it with errors.As or the KindOf helper rather than
// matching on message text.
type Error struct {
	// Kind is the failure classification.
	Kind Kind

	// Status is the HTTP status code, or 0 when the failure happened below
	// the HTTP layer (timeout, connection refused).
	Status int

	// Message is a human-readable description including the API label and
	// attempt count.
	Message string

	// Err is the wrapped cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (kind=%s, status=%d)", e.Message, e.Kind, e.Status)
	}
	return fmt.Sprintf("%s (kind=%s)", e.Message, e.Kind)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the failure kind from an error returned by Client.
// Returns KindUnknown for nil or foreign errors.
func KindOf(err error) Kind {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// classifyStatus maps an HTTP status code to a failure kind.
func classifyStatus(status int) Kind {
	switch {
	case status == 401 || status == 403:
		return KindAuth
	case status == 404:
		return KindNotFound
	case status == 429:
		return KindQuota
	case status >= 500 && status < 600:
		return KindTransient
	default:
		return KindUnknown
	}
}
