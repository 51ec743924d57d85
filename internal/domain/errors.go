package domain

import "errors"

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrColumnNotFound   = errors.New("column not found")
	ErrUnknownKind      = errors.New("unknown score kind")
	ErrTooManyRecords   = errors.New("too many records")

	// ErrStoreUnavailable is returned while the analysis store is failing fast.
	ErrStoreUnavailable = errors.New("analysis store unavailable")
)
