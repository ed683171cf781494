package app

import (
	"errors"

	"github.com/alexanderramin/studyplan/internal/domain"
)

// ErrorCode classifies a use-case failure for callers that only need to pick
// a recovery path.
type ErrorCode string

const (
	CodeValidation ErrorCode = "VALIDATION"
	CodeStale      ErrorCode = "STALE_ENTRY"
	CodeConflict   ErrorCode = "UPDATE_CONFLICT"
	CodeInternal   ErrorCode = "INTERNAL"
)

// Classify maps an error returned by a use case to its code.
func Classify(err error) ErrorCode {
	var vErr *domain.ValidationError
	var stale *domain.StaleEntryError
	var conflict *domain.UpdateConflictError
	switch {
	case errors.As(err, &vErr):
		return CodeValidation
	case errors.As(err, &stale):
		return CodeStale
	case errors.As(err, &conflict):
		return CodeConflict
	default:
		return CodeInternal
	}
}

// NeedsReload reports whether the caller must reload the plan before retrying.
func NeedsReload(err error) bool {
	switch Classify(err) {
	case CodeStale, CodeConflict:
		return true
	default:
		return false
	}
}
