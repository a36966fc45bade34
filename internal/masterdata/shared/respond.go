package shared

import (
	"errors"
	"net/http"

	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
	internalShared "github.com/goayasushi/zaiko-be/internal/shared"
)

// RespondError maps list, read and write failures to responses.
func RespondError(w http.ResponseWriter, err error) {
	var protected *ProtectedError
	switch {
	case errors.Is(err, internalShared.ErrInvalidPage):
		httpx.Detail(w, http.StatusNotFound, MsgInvalidPage)
	case errors.As(err, &protected):
		httpx.Detail(w, http.StatusBadRequest, protected.Error())
	default:
		httpx.RespondError(w, err)
	}
}

// Expected reports whether err is a client error that needs no server log.
func Expected(err error) bool {
	return errors.Is(err, httpx.ErrValidation) ||
		errors.Is(err, httpx.ErrNotFound) ||
		errors.Is(err, httpx.ErrMalformedBody) ||
		errors.Is(err, internalShared.ErrInvalidPage) ||
		errors.Is(err, ErrProtected) ||
		errors.Is(err, ErrEmptyIDs) ||
		errors.Is(err, ErrInvalidIDs) ||
		errors.Is(err, ErrMissingIDs)
}
