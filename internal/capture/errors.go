package capture

import (
	"errors"
	"fmt"
)

// Sentinel errors for capture failures.
var (
	// ErrInvalidState is returned when a frame is grabbed before Acquire.
	// It indicates a usage bug in the caller.
	ErrInvalidState = errors.New("capture: device not acquired")

	// ErrAcquisition is matched by every AcquisitionError.
	ErrAcquisition = errors.New("capture: acquisition failed")

	// ErrNoBackend is returned by openers compiled out of this build.
	ErrNoBackend = errors.New("capture: backend not available in this build")
)

// AcquisitionError reports that a device could not be opened or read.
// It is terminal for the current streaming session; nothing in this package
// retries.
type AcquisitionError struct {
	// Device is the device index that failed.
	Device int

	// Op is "open" or "read".
	Op string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *AcquisitionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("capture: %s device %d: %v", e.Op, e.Device, e.Err)
	}
	return fmt.Sprintf("capture: %s device %d failed", e.Op, e.Device)
}

// Unwrap returns the underlying cause.
func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrAcquisition) true for any AcquisitionError.
func (e *AcquisitionError) Is(target error) bool {
	return target == ErrAcquisition
}
