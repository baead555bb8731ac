// Package services provides the business logic layer for Migoculto:
// the assignment engine, the group lifecycle rules and the per-viewer
// message projection.
package services

import "errors"

// Caller-facing error conditions. Handlers map these to HTTP statuses;
// anything not in this list is an internal failure and surfaces as 500.
var (
	// ErrGroupNotFound is returned when the referenced group does not exist
	// or the actor is not allowed to know it exists.
	ErrGroupNotFound = errors.New("group not found")

	// ErrMemberNotFound is returned when the referenced member does not
	// exist in the group.
	ErrMemberNotFound = errors.New("member not found")

	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrForbidden is returned when the actor lacks the required role,
	// e.g. a non-owner triggering a draw.
	ErrForbidden = errors.New("operation requires group owner")

	// ErrStateConflict is returned when an operation is not legal in the
	// group's current status, e.g. joining a DRAWN group. Wrapped with
	// operation context before being returned.
	ErrStateConflict = errors.New("operation not allowed in current group status")

	// ErrInsufficientMembers is returned when a draw is attempted with
	// fewer than three members. Two members would force a mutual pairing
	// and one would force self-assignment; both are forbidden.
	ErrInsufficientMembers = errors.New("at least three members are required to draw")

	// ErrAssignmentUnsatisfiable is the defensive failure of the
	// assignment engine's retry loop. Should not occur in practice.
	ErrAssignmentUnsatisfiable = errors.New("could not find a valid assignment")

	// ErrAlreadyMember is returned when a user joins a group twice.
	ErrAlreadyMember = errors.New("user is already a member of this group")

	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailExists is returned when registering an email that is taken.
	ErrEmailExists = errors.New("email already registered")

	// ErrWrongPassword is returned when a join attempt carries the wrong
	// group password.
	ErrWrongPassword = errors.New("wrong group password")

	// ErrItemNotFound is returned when a wishlist item does not exist or
	// is not owned by the actor.
	ErrItemNotFound = errors.New("wishlist item not found")
)
