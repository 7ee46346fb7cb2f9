package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedInput indicates a reference that no connector can
	// interpret (not an id, post URL or fanclub URL).
	ErrUnsupportedInput = errors.New("unsupported input")

	// ErrUnknownCategory indicates a content item with a category the
	// normaliser does not know. Fails the record loudly, unlike unknown
	// blog segment shapes which are logged and dropped.
	ErrUnknownCategory = errors.New("unknown content category")
)
