package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates an empty or malformed request.
	// It is rejected before any processing takes place.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidReference indicates an admin write that would break
	// the aisle reference invariant.
	ErrInvalidReference = errors.New("invalid reference")

	// Routing Errors.

	// ErrUnknownLocation indicates a product whose aisle is not part of the layout.
	ErrUnknownLocation = errors.New("unknown location")

	// ErrNoRouteFound indicates the layout has no walkable path to a target.
	ErrNoRouteFound = errors.New("no route found")

	// Upstream Errors.
	// These are recovered locally by falling back to deterministic logic
	// and never reach the end user.

	// ErrUpstreamUnavailable indicates the LLM or transcription service is unreachable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrLLMUnavailable indicates the LLM service is not configured.
	ErrLLMUnavailable = errors.New("LLM service unavailable")

	// ErrTranscriptionFailed indicates audio could not be turned into text.
	ErrTranscriptionFailed = errors.New("transcription failed")
)
