// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors for domain layer.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrValidation    = errors.New("validation failed")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrMalformedBody = errors.New("malformed request body")
)

// Body formats reported by BodyError.
const (
	FormatJSON      = "json"
	FormatMultipart = "multipart"
	FormatForm      = "form"
)

// BodyError is a request body that could not be parsed. It matches
// ErrMalformedBody.
type BodyError struct {
	Format string
	Err    error
}

// MalformedBody wraps a decode failure of the given body format.
func MalformedBody(format string, err error) error {
	return &BodyError{Format: format, Err: err}
}

func (e *BodyError) Error() string {
	return "malformed " + e.Format + " body: " + e.Err.Error()
}

func (e *BodyError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrMalformedBody) match.
func (e *BodyError) Is(target error) bool {
	return target == ErrMalformedBody
}

// Detail is the client-facing parse error message.
func (e *BodyError) Detail() string {
	switch e.Format {
	case FormatJSON:
		return "JSON parse error - " + e.Err.Error()
	case FormatMultipart:
		return "Multipart form parse error - " + e.Err.Error()
	default:
		return detailMalformed
	}
}

const detailMalformed = "Malformed request."

// FieldErrors maps a field name to its violation messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, message string) {
	fe[field] = append(fe[field], message)
}

// Merge copies every message from other.
func (fe FieldErrors) Merge(other FieldErrors) {
	for field, messages := range other {
		fe[field] = append(fe[field], messages...)
	}
}

// Has reports whether field has at least one violation.
func (fe FieldErrors) Has(field string) bool {
	return len(fe[field]) > 0
}

// Empty reports whether no violation was recorded.
func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// Err returns fe as an error, or nil when empty.
func (fe FieldErrors) Err() error {
	if fe.Empty() {
		return nil
	}
	return fe
}

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(fe[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Is lets errors.Is(err, ErrValidation) match FieldErrors.
func (fe FieldErrors) Is(target error) bool {
	return target == ErrValidation
}

// RespondError maps domain errors to HTTP responses.
func RespondError(w http.ResponseWriter, err error) {
	var (
		fieldErrs FieldErrors
		bodyErr   *BodyError
	)
	switch {
	case errors.As(err, &fieldErrs):
		JSON(w, http.StatusBadRequest, fieldErrs)
	case errors.As(err, &bodyErr):
		Detail(w, http.StatusBadRequest, bodyErr.Detail())
	case errors.Is(err, ErrMalformedBody):
		Detail(w, http.StatusBadRequest, detailMalformed)
	case errors.Is(err, ErrNotFound):
		Detail(w, http.StatusNotFound, "見つかりませんでした。")
	case errors.Is(err, ErrValidation):
		Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrUnauthorized):
		Detail(w, http.StatusUnauthorized, "認証情報が含まれていません。")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
