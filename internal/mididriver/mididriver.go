// Package mididriver exposes a gomidi driver as a routing.Platform.
//
// Any gomidi/v2 driver works: rtmididrv and portmididrv for real devices,
// testdrv for loopback tests.
package mididriver

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"gitlab.com/gomidi/midi/v2/drivers"

	"github.com/leafo/midimatrix/internal/routing"
)

// Platform adapts a drivers.Driver. Port lists are fetched once and then
// reused so device indices stay stable.
type Platform struct {
	drv    drivers.Driver
	logger *slog.Logger

	ins  []drivers.In
	outs []drivers.Out

	nextHandle atomic.Uint64
}

// New wraps drv. A nil logger discards.
func New(drv drivers.Driver, logger *slog.Logger) *Platform {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Platform{drv: drv, logger: logger}
}

// Name returns the driver name.
func (p *Platform) Name() string { return p.drv.String() }

// Inputs lists input port names in driver order.
func (p *Platform) Inputs() ([]string, error) {
	if err := p.loadIns(); err != nil {
		return nil, err
	}
	names := make([]string, len(p.ins))
	for i, in := range p.ins {
		names[i] = in.String()
	}
	return names, nil
}

// Outputs lists output port names in driver order.
func (p *Platform) Outputs() ([]string, error) {
	if err := p.loadOuts(); err != nil {
		return nil, err
	}
	names := make([]string, len(p.outs))
	for i, out := range p.outs {
		names[i] = out.String()
	}
	return names, nil
}

func (p *Platform) loadIns() error {
	if p.ins != nil {
		return nil
	}
	ins, err := p.drv.Ins()
	if err != nil {
		return fmt.Errorf("failed to get MIDI inputs: %w", err)
	}
	p.ins = ins
	return nil
}

func (p *Platform) loadOuts() error {
	if p.outs != nil {
		return nil
	}
	outs, err := p.drv.Outs()
	if err != nil {
		return fmt.Errorf("failed to get MIDI outputs: %w", err)
	}
	p.outs = outs
	return nil
}

// OpenInput opens the input port. Capture begins on Start.
func (p *Platform) OpenInput(index int, cb routing.Callback) (routing.InputPort, error) {
	if err := p.loadIns(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(p.ins) {
		return nil, fmt.Errorf("input %d: %w", index, routing.ErrInvalidIndex)
	}

	port := p.ins[index]
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("failed to open input %q: %w", port.String(), err)
	}

	in := &inputPort{
		port:   port,
		handle: routing.Handle(p.nextHandle.Add(1)),
		cb:     cb,
	}
	p.logger.Debug("opened MIDI input", "index", index, "port", port.String(), "handle", in.handle)
	return in, nil
}

// OpenOutput opens the output port.
func (p *Platform) OpenOutput(index int) (routing.OutputPort, error) {
	if err := p.loadOuts(); err != nil {
		return nil, err
	}
	if index < 0 || index >= len(p.outs) {
		return nil, fmt.Errorf("output %d: %w", index, routing.ErrInvalidIndex)
	}

	port := p.outs[index]
	if err := port.Open(); err != nil {
		return nil, fmt.Errorf("failed to open output %q: %w", port.String(), err)
	}
	p.logger.Debug("opened MIDI output", "index", index, "port", port.String())
	return &outputPort{port: port}, nil
}

// Close closes the underlying driver and every port it opened.
func (p *Platform) Close() error {
	return p.drv.Close()
}

type inputPort struct {
	port   drivers.In
	handle routing.Handle
	cb     routing.Callback
	stop   func()
}

func (in *inputPort) Handle() routing.Handle { return in.handle }

func (in *inputPort) Start() error {
	if in.stop != nil {
		return nil
	}

	h, cb := in.handle, in.cb
	stop, err := in.port.Listen(func(msg []byte, timestampms int32) {
		kind, packed := classify(msg)
		cb(h, kind, packed, nil)
	}, drivers.ListenConfig{
		SysEx: true,
		OnErr: func(err error) {
			cb(h, routing.EventError, 0, err)
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start listening on %q: %w", in.port.String(), err)
	}
	in.stop = stop
	return nil
}

func (in *inputPort) Stop() error {
	if in.stop != nil {
		in.stop()
		in.stop = nil
	}
	return nil
}

func (in *inputPort) Close() error {
	_ = in.Stop()
	return in.port.Close()
}

// classify turns the bytes of one driver message into an event. System
// exclusive is reported as long data; everything else is a short message.
func classify(msg []byte) (routing.EventKind, routing.ShortMessage) {
	if len(msg) == 0 {
		return routing.EventError, 0
	}
	if msg[0] == 0xF0 || len(msg) > 3 {
		return routing.EventLongData, 0
	}
	return routing.EventData, routing.Pack(msg)
}

type outputPort struct {
	port drivers.Out
}

func (out *outputPort) Send(msg routing.ShortMessage) error {
	return out.port.Send(msg.Bytes())
}

func (out *outputPort) Close() error {
	return out.port.Close()
}
