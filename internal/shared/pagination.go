package shared

import (
	"fmt"
	"math"
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int
	PerPage    int
	Total      int
	TotalPages int
}

// NewPagination computes pagination metadata. An empty result set still has
// one (empty) page.
func NewPagination(page, perPage, total int) Pagination {
	if perPage <= 0 {
		perPage = 20
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	if totalPages < 1 {
		totalPages = 1
	}
	return Pagination{Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}

// Validate rejects pages beyond the last one.
func (p Pagination) Validate() error {
	if p.Page < 1 || p.Page > p.TotalPages {
		return fmt.Errorf("%w: %d of %d", ErrInvalidPage, p.Page, p.TotalPages)
	}
	return nil
}

// Offset returns the row offset of the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// HasPrevious reports whether an earlier page exists.
func (p Pagination) HasPrevious() bool {
	return p.Page > 1
}
