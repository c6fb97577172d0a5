// Package common defines shared constants and sentinel errors used across
// the pairroom client, server and notification extension. Callers match
// these values with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrorValidation   = errors.New("validation error")

	// Relationship state machine errors.
	ErrInvalidTarget      = errors.New("invalid invitation target")
	ErrAlreadyFriends     = errors.New("already friends")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrNotFriends         = errors.New("not friends")

	// ErrRemoteUnavailable is returned when the directory server cannot be
	// reached. The local cache keeps serving reads.
	ErrRemoteUnavailable = errors.New("remote directory unavailable")

	// ErrEnrichmentTimeout marks an enrichment that ran out of its budget.
	// It is never surfaced to the end user.
	ErrEnrichmentTimeout = errors.New("enrichment budget exceeded")
)
