package routing

import "fmt"

// DefaultMaxDevices caps how many devices per direction are enumerated.
const DefaultMaxDevices = 32

// Direction distinguishes input devices from output devices.
type Direction uint8

const (
	Input Direction = iota
	Output
)

func (d Direction) String() string {
	if d == Input {
		return "input"
	}
	return "output"
}

// Device is one enumerated MIDI port. Index is its identity everywhere else.
type Device struct {
	Index     int
	Name      string
	Direction Direction
}

// Registry holds the devices found at startup. It is read-only after
// Enumerate returns.
type Registry struct {
	inputs  []Device
	outputs []Device
}

// Enumerate queries the platform once and keeps at most max devices per
// direction. A max of zero or less uses DefaultMaxDevices.
func Enumerate(p Platform, max int) (*Registry, error) {
	if max <= 0 {
		max = DefaultMaxDevices
	}

	ins, err := p.Inputs()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI inputs: %w", err)
	}
	outs, err := p.Outputs()
	if err != nil {
		return nil, fmt.Errorf("failed to get MIDI outputs: %w", err)
	}

	return &Registry{
		inputs:  makeDevices(ins, Input, max),
		outputs: makeDevices(outs, Output, max),
	}, nil
}

func makeDevices(names []string, dir Direction, max int) []Device {
	if len(names) > max {
		names = names[:max]
	}
	devices := make([]Device, len(names))
	for i, name := range names {
		devices[i] = Device{Index: i, Name: name, Direction: dir}
	}
	return devices
}

func (r *Registry) list(dir Direction) []Device {
	if dir == Input {
		return r.inputs
	}
	return r.outputs
}

// Count returns the number of devices for a direction.
func (r *Registry) Count(dir Direction) int {
	return len(r.list(dir))
}

// Valid reports whether idx names a device in the given direction.
func (r *Registry) Valid(dir Direction, idx int) bool {
	return idx >= 0 && idx < r.Count(dir)
}

// Name returns the device name, or "" for an invalid index.
func (r *Registry) Name(dir Direction, idx int) string {
	if !r.Valid(dir, idx) {
		return ""
	}
	return r.list(dir)[idx].Name
}

// Devices returns a copy of the devices for a direction.
func (r *Registry) Devices(dir Direction) []Device {
	list := r.list(dir)
	out := make([]Device, len(list))
	copy(out, list)
	return out
}
