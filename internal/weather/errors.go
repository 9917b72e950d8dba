package weather

import "errors"

var (
	// ErrInvalidDateRange is returned before any network activity when the
	// start date is after the end date.
	ErrInvalidDateRange = errors.New("invalid date range")

	// ErrInvalidResolution is returned for resolutions other than hourly,
	// daily and monthly.
	ErrInvalidResolution = errors.New("invalid temporal resolution")

	// ErrUnknownGroup is returned by catalog lookups of unregistered groups.
	ErrUnknownGroup = errors.New("unknown variable group")

	// ErrTransport covers network failures and non-success responses.
	// The pipeline recovers it into a group warning.
	ErrTransport = errors.New("transport error")

	// ErrMalformedResponse is returned when a response lacks the expected
	// time-series payload. The pipeline recovers it into a group warning.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrNoDataRetrieved is returned when no enabled group produced data.
	ErrNoDataRetrieved = errors.New("no data was retrieved from any group")

	// ErrMergeColumnConflict is returned when a single input table carries
	// the same column twice.
	ErrMergeColumnConflict = errors.New("merge column conflict")
)
