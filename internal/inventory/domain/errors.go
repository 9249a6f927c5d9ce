package inventory

import "errors"

var (
	// ErrDatasetUnavailable is returned when no source of a required dataset exists.
	ErrDatasetUnavailable = errors.New("inventory: dataset unavailable")
	// ErrEmptyComplaintDevice is returned when a complaint has no device id.
	ErrEmptyComplaintDevice = errors.New("inventory: complaint device id required")
)
