package models

import "errors"

// Domain specific errors for the dashboard pipeline.
var (
	// ErrDataUnavailable is fatal: the data access adapter failed or returned nothing,
	// and no derivation runs on partial data.
	ErrDataUnavailable = errors.New("dataset unavailable")
	// ErrMissingJoinTarget marks a destination whose city or category id does not resolve.
	// It is handled by the JoinPolicy and only reported in the pipeline's warning log.
	ErrMissingJoinTarget = errors.New("join target missing")
	ErrInvalidCriteria   = errors.New("invalid filter criteria")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrUnknownSession    = errors.New("session handle required")
)
