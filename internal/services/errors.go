// Package services defines the business logic for the social graph, the post
// ledger, private messaging, notifications, and background tasks. This file
// centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer.
package services

import "errors"

var (
	// ErrUserNotFound indicates that a referenced user does not exist. No
	// operation performs any partial write before surfacing it.
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when a profile update collides with an
	// existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrSelfFollow is returned when a user attempts to follow or unfollow
	// themselves; the precondition is checked before any mutation.
	ErrSelfFollow = errors.New("cannot follow yourself")

	// ErrEmptyBody is returned when a post or message body is blank after
	// trimming.
	ErrEmptyBody = errors.New("body is empty")

	// ErrTooLong is returned when a post or message body exceeds the
	// configured maximum rune length.
	ErrTooLong = errors.New("body too long")

	// ErrTaskAlreadyActive is returned when a task launch is rejected
	// because a non-complete task of the same type already exists for the
	// user. Callers present it as information, not as a fault.
	ErrTaskAlreadyActive = errors.New("task already in progress")

	// ErrUnknownTaskType is returned when a launch names a task type the
	// runner registry does not know.
	ErrUnknownTaskType = errors.New("unknown task type")

	// ErrTaskNotFound indicates that the referenced task record does not
	// exist or is already complete.
	ErrTaskNotFound = errors.New("task not found")
)
