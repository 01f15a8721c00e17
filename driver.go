package main

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/portmididrv"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// openDriver creates the configured MIDI backend.
func openDriver(name string) (drivers.Driver, error) {
	switch name {
	case "rtmidi":
		drv, err := rtmididrv.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create rtmidi driver: %w", err)
		}
		return drv, nil
	case "portmidi":
		drv, err := portmididrv.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create portmidi driver: %w", err)
		}
		return drv, nil
	}
	return nil, fmt.Errorf("unknown driver %q", name)
}
