package models

import "errors"

// Sentinel errors of the calendar core. Anything else bubbling out of a
// repository is a storage failure and is propagated unchanged.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidRange       = errors.New("end date is before start date")
	ErrEmptyTitle         = errors.New("title must not be empty")
	ErrDuplicateUsername  = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
