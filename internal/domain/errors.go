package domain

import "errors"

var (
	// ErrNotFound is returned by read paths when no property matches.
	ErrNotFound = errors.New("catalog: not found")

	// ErrInvalidListing marks a raw record violating the input contract
	// (missing source_platform or listing_id_native).
	ErrInvalidListing = errors.New("catalog: invalid raw listing")
)
