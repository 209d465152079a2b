package core

import "errors"

var (
	// ErrConfiguration is returned when a required setting or credential is missing
	ErrConfiguration = errors.New("configuration error")

	// ErrGeneration is returned when the generation service call fails
	ErrGeneration = errors.New("generation failed")

	// ErrInvalidEmail is returned when an email is missing a required field
	ErrInvalidEmail = errors.New("invalid email")

	// ErrNotClassified is returned when routing is attempted before classification
	ErrNotClassified = errors.New("email has not been classified")

	// ErrCacheMiss is returned by completion caches when no live entry exists
	ErrCacheMiss = errors.New("cache entry not found")
)
