package domain

import "errors"

// Sentinel errors shared across entities. Entity-specific sentinels live next
// to their entity definitions.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)
