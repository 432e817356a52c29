package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Source-store errors.

	// ErrAuthInvalid indicates the source store credential is invalid or expired.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrObstaclePage indicates the source store served an HTML interstitial
	// where file bytes were expected and the bypass did not succeed.
	ErrObstaclePage = errors.New("source served an obstacle page instead of content")

	// ErrRateLimited indicates the source API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Destination errors.

	// ErrDestinationRejected indicates the upload target answered with a
	// non-success status or a malformed success response. Terminal within
	// one relay run; never retried.
	ErrDestinationRejected = errors.New("destination rejected upload")

	// ErrUploadTimeout indicates the upload exceeded its wall-clock ceiling.
	ErrUploadTimeout = errors.New("upload exceeded wall-clock timeout")
)
