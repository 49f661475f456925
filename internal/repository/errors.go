// Package repository defines error types that are reused across multiple
// repositories.  These sentinel values allow higher layers such as
// handlers to distinguish between failure scenarios: ErrForbidden means a
// caller touched a plan they do not own, ErrInvalidState means a
// lifecycle rule was violated (editing a resolved sub-goal, writing a
// second retrospective), and ErrLimitExceeded means the sub-goal cap was
// reached.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate this into HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrNotFound is returned when the requested plan, sub-goal or evidence
// record does not exist.  Handlers translate this into HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned when an operation cannot proceed because of
// existing state, such as following a user twice.  Handlers translate
// this into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrInvalidState is returned when a lifecycle rule forbids the mutation:
// editing or deleting a sub-goal that is no longer pending, declaring
// failure on a resolved sub-goal, attaching evidence to a failed one, or
// writing a retrospective before the plan is complete (or twice).
// Handlers translate this into HTTP 409.
var ErrInvalidState = errors.New("invalid state")

// ErrLimitExceeded is returned when adding a sub-goal would push a plan
// past the per-plan cap.  Handlers translate this into HTTP 422.
var ErrLimitExceeded = errors.New("limit exceeded")
