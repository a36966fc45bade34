package shared

import (
	"errors"
	"fmt"

	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
)

var (
	// ErrNotFound reports a record absent from the store.
	ErrNotFound = fmt.Errorf("masterdata: %w", httpx.ErrNotFound)
	// ErrProtected reports a delete blocked by referencing records.
	ErrProtected = errors.New("masterdata: record is referenced")
	// ErrEmptyIDs reports a bulk request without ids.
	ErrEmptyIDs = errors.New("masterdata: no ids given")
	// ErrInvalidIDs reports a bulk request whose ids are not positive integers.
	ErrInvalidIDs = errors.New("masterdata: malformed ids")
	// ErrMissingIDs reports a bulk request naming ids that do not exist.
	ErrMissingIDs = errors.New("masterdata: unknown ids")
)

// ProtectedError reports how many dependent records block a delete.
type ProtectedError struct {
	Resource   string
	Dependents string
	Count      int
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("この%sは%d件の%sから参照されているため削除できません。", e.Resource, e.Count, e.Dependents)
}

// Is lets errors.Is(err, ErrProtected) match.
func (e *ProtectedError) Is(target error) bool {
	return target == ErrProtected
}
