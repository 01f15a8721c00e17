package routing

// Handle identifies one open input session. Handles are never reused, so an
// event carrying the handle of a closed session is recognizably stale.
type Handle uint64

// EventKind classifies what the driver delivered to an input callback.
type EventKind uint8

const (
	EventData EventKind = iota
	EventLongData
	EventError
	EventLongError
)

func (k EventKind) String() string {
	switch k {
	case EventData:
		return "data"
	case EventLongData:
		return "long-data"
	case EventError:
		return "error"
	case EventLongError:
		return "long-error"
	}
	return "unknown"
}

// Callback receives inbound traffic from a driver thread.
//
// It runs outside the engine's control and must not block, allocate, or
// touch routing state. Implementations hand a value snapshot to the Bridge
// and return. err carries the driver's detail for error events and is nil
// otherwise.
type Callback func(h Handle, kind EventKind, packed ShortMessage, err error)

// Platform is the MIDI subsystem the engine routes through.
type Platform interface {
	Inputs() ([]string, error)
	Outputs() ([]string, error)
	OpenInput(index int, cb Callback) (InputPort, error)
	OpenOutput(index int) (OutputPort, error)
}

// InputPort is an open input device. Capture starts on Start and stops on
// Stop; Close releases the device.
type InputPort interface {
	Handle() Handle
	Start() error
	Stop() error
	Close() error
}

// OutputPort is an open output device.
type OutputPort interface {
	Send(msg ShortMessage) error
	Close() error
}
