package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidPage indicates a page number outside the result set.
	ErrInvalidPage = errors.New("invalid page")
)
