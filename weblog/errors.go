package weblog

import "errors"

var (
	// ErrMissingColumn is returned if CSV header has no required column.
	ErrMissingColumn = errors.New("required column is missing")

	// ErrInvalidMeasure is returned for unknown measures of central
	// tendency.
	ErrInvalidMeasure = errors.New("invalid measure")

	// ErrInvalidWindow is returned if moving window is not positive.
	ErrInvalidWindow = errors.New("window has to be positive")

	// ErrTimeOutOfRange is returned for timestamps outside of
	// [MinTime, MaxTime).
	ErrTimeOutOfRange = errors.New("timestamp is out of range")

	// ErrTooManyBuckets is returned if a time series would have more
	// than MaxBuckets points.
	ErrTooManyBuckets = errors.New("too many time series buckets")
)
