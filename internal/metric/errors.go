package metric

import "errors"

var (
	// ErrNotFound is returned when a Kind has no descriptor.
	ErrNotFound = errors.New("metric: kind not found")

	// ErrReaderFailure is wrapped by readers when a probe cannot produce a value
	// (process spawn error, parse error, missing sensor).
	ErrReaderFailure = errors.New("metric: reader failure")
)
