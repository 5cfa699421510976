package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for record validation and scraping outcomes.
var (
	ErrMalformedContent = errors.New("malformed content shape")
	ErrMissingField     = errors.New("required field missing or empty")
	ErrNoRecipe         = errors.New("no extraction recipe for source")
	ErrNoArticle        = errors.New("no valid article extracted")
)

// ValidationError wraps a sentinel with the offending field.
type ValidationError struct {
	Field   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Wrapped, e.Field)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }
