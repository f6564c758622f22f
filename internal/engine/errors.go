package engine

import "errors"

// Engine errors are returned, never panicked, so the engine is safe to call
// from request handlers on every interactive edit. Callers match with
// errors.Is; the wrapped message carries the offending IDs.
var (
	// ErrInvalidWeight means an ItemShare with weight <= 0 reached the
	// engine. Such rows should have been deleted by the assignment layer.
	ErrInvalidWeight = errors.New("share weight must be positive")

	// ErrNegativePrice means an item carried a negative price.
	ErrNegativePrice = errors.New("item price must not be negative")

	// ErrMissingTotal means the bill has no authoritative total and the
	// policy requested strict reconciliation.
	ErrMissingTotal = errors.New("bill total is missing")
)
