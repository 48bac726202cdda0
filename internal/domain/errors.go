package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when request parameters fail validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrBatchTooLarge is returned when a batch exceeds the configured size
	// limit; it unwraps to ErrInvalidInput
	ErrBatchTooLarge = fmt.Errorf("%w: batch exceeds maximum size", ErrInvalidInput)

	// ErrFeedbackStore is returned when feedback cannot be persisted
	ErrFeedbackStore = errors.New("feedback store unavailable")

	// ErrCatalogSource is returned when a catalog source cannot be loaded
	ErrCatalogSource = errors.New("catalog source unavailable")

	// ErrAliasNotFound is returned when no learned alias exists for a term
	ErrAliasNotFound = errors.New("learned alias not found")
)
