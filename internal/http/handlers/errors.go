// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// These symbolic constants supplement human-readable messages with a stable,
// machine-readable taxonomy. Codes are lowercase snake_case; generic codes
// mirror common HTTP status semantics and domain-specific codes cover
// business outcomes a status alone cannot convey (e.g. a rejected duplicate
// task launch).
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeSelfFollow       = "self_follow"
	ErrCodeUsernameTaken    = "username_taken"
	ErrCodeTaskActive       = "task_already_active"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
