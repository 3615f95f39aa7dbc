package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation failed")
	// ErrRangeWarning marks an effect value that was outside its documented
	// bounds. It is never fatal; callers log it.
	ErrRangeWarning = errors.New("value out of range")
)
