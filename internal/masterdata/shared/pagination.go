package shared

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
)

// Envelope is the paginated list response.
type Envelope[T any] struct {
	Count      int     `json:"count"`
	TotalPages int     `json:"total_pages"`
	Current    int     `json:"current"`
	PageSize   int     `json:"page_size"`
	Next       *string `json:"next"`
	Previous   *string `json:"previous"`
	Results    []T     `json:"results"`
}

// ResolvePage maps the page query parameter onto a set of total records.
// Page 1 of an empty set is valid.
func ResolvePage(r *http.Request, total int) (internalShared.Pagination, error) {
	p := internalShared.NewPagination(1, PageSize, total)
	raw := strings.TrimSpace(r.URL.Query().Get(PageParam))
	switch raw {
	case "":
		return p, nil
	case LastPage:
		p.Page = p.TotalPages
		return p, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return p, fmt.Errorf("%w: %q", internalShared.ErrInvalidPage, raw)
	}
	p.Page = n
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// NewEnvelope wraps one page of results with links built from r.
func NewEnvelope[T any](r *http.Request, p internalShared.Pagination, results []T) Envelope[T] {
	if results == nil {
		results = []T{}
	}
	env := Envelope[T]{
		Count:      p.Total,
		TotalPages: p.TotalPages,
		Current:    p.Page,
		PageSize:   p.PerPage,
		Results:    results,
	}
	if p.HasNext() {
		next := pageURL(r, p.Page+1)
		env.Next = &next
	}
	if p.HasPrevious() {
		prev := pageURL(r, p.Page-1)
		env.Previous = &prev
	}
	return env
}

// AbsoluteURL resolves a host-relative path against the request origin.
func AbsoluteURL(r *http.Request, path string) string {
	if !strings.HasPrefix(path, "/") {
		return path
	}
	return scheme(r) + "://" + r.Host + path
}

func scheme(r *http.Request) string {
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}

func pageURL(r *http.Request, page int) string {
	q := r.URL.Query()
	if page == 1 {
		q.Del(PageParam)
	} else {
		q.Set(PageParam, strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme(r), Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
