package models

import "errors"

// Error kinds surfaced by the service layer. Handlers map these to HTTP
// statuses; everything else is treated as an internal error.
var (
	ErrValidation   = errors.New("validation failed")
	ErrNotFound     = errors.New("not found")
	ErrPrecondition = errors.New("precondition failed")
	ErrUpstream     = errors.New("upstream call failed")
	ErrIngestion    = errors.New("ingestion failed")
)

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsPrecondition(err error) bool {
	return errors.Is(err, ErrPrecondition)
}

func IsUpstream(err error) bool {
	return errors.Is(err, ErrUpstream)
}

func IsIngestion(err error) bool {
	return errors.Is(err, ErrIngestion)
}
