package reporting

import "errors"

var (
	// ErrInvalidThreshold is returned for thresholds outside [0,1].
	ErrInvalidThreshold = errors.New("reporting: threshold must be within [0,1]")
	// ErrDeviceNotFound is returned when a device is neither in the inventory nor in any log.
	ErrDeviceNotFound = errors.New("reporting: device not found")
)
