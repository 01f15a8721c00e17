package routing

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidIndex is returned when a device index is outside the
	// enumerated range for its direction.
	ErrInvalidIndex = errors.New("invalid device index")

	// ErrInvalidChannel is returned for channels outside 0-15.
	ErrInvalidChannel = errors.New("invalid MIDI channel")

	// ErrEngineStopped is returned by commands submitted after Run has
	// returned.
	ErrEngineStopped = errors.New("routing engine stopped")
)

// DeviceOpenError reports that the platform refused to open a device. The
// connection that triggered the open stays in the matrix.
type DeviceOpenError struct {
	Direction Direction
	Index     int
	Name      string
	Err       error
}

func (e *DeviceOpenError) Error() string {
	return fmt.Sprintf("failed to open MIDI %s %d (%s): %v", e.Direction, e.Index, e.Name, e.Err)
}

func (e *DeviceOpenError) Unwrap() error { return e.Err }
