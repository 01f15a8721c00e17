package routing

import (
	"errors"
	"sync"
)

var errDeviceBusy = errors.New("device busy")

// fakePlatform is an in-memory MIDI subsystem. Tests drive inputs with
// emit and inspect what each output received.
type fakePlatform struct {
	mu sync.Mutex

	inNames  []string
	outNames []string

	failInputs  map[int]error
	failOutputs map[int]error

	nextHandle Handle
	inputs     map[int]*fakeInput
	outputs    map[int]*fakeOutput

	inputOpens  map[int]int
	outputOpens map[int]int
}

func newFakePlatform(ins, outs int) *fakePlatform {
	p := &fakePlatform{
		failInputs:  map[int]error{},
		failOutputs: map[int]error{},
		inputs:      map[int]*fakeInput{},
		outputs:     map[int]*fakeOutput{},
		inputOpens:  map[int]int{},
		outputOpens: map[int]int{},
	}
	for i := 0; i < ins; i++ {
		p.inNames = append(p.inNames, "In "+string(rune('A'+i)))
	}
	for i := 0; i < outs; i++ {
		p.outNames = append(p.outNames, "Out "+string(rune('A'+i)))
	}
	return p
}

func (p *fakePlatform) Inputs() ([]string, error)  { return p.inNames, nil }
func (p *fakePlatform) Outputs() ([]string, error) { return p.outNames, nil }

func (p *fakePlatform) OpenInput(index int, cb Callback) (InputPort, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failInputs[index]; err != nil {
		return nil, err
	}
	p.nextHandle++
	in := &fakeInput{handle: p.nextHandle, cb: cb}
	p.inputs[index] = in
	p.inputOpens[index]++
	return in, nil
}

func (p *fakePlatform) OpenOutput(index int) (OutputPort, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.failOutputs[index]; err != nil {
		return nil, err
	}
	out := &fakeOutput{}
	p.outputs[index] = out
	p.outputOpens[index]++
	return out, nil
}

func (p *fakePlatform) input(index int) *fakeInput {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inputs[index]
}

func (p *fakePlatform) output(index int) *fakeOutput {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outputs[index]
}

func (p *fakePlatform) opens(dir Direction, index int) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	if dir == Input {
		return p.inputOpens[index]
	}
	return p.outputOpens[index]
}

type fakeInput struct {
	mu      sync.Mutex
	handle  Handle
	cb      Callback
	started bool
	closed  bool
}

func (in *fakeInput) Handle() Handle { return in.handle }

func (in *fakeInput) Start() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.started = true
	return nil
}

func (in *fakeInput) Stop() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.started = false
	return nil
}

func (in *fakeInput) Close() error {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.started = false
	in.closed = true
	return nil
}

func (in *fakeInput) isClosed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}

// emit behaves like a driver thread delivering bytes to the callback.
func (in *fakeInput) emit(kind EventKind, msg ...byte) {
	in.cb(in.handle, kind, Pack(msg), nil)
}

// fail delivers a driver error carrying err.
func (in *fakeInput) fail(err error) {
	in.cb(in.handle, EventError, 0, err)
}

type fakeOutput struct {
	mu     sync.Mutex
	sent   []ShortMessage
	closed bool
}

func (out *fakeOutput) Send(msg ShortMessage) error {
	out.mu.Lock()
	defer out.mu.Unlock()
	if out.closed {
		return errors.New("send on closed output")
	}
	out.sent = append(out.sent, msg)
	return nil
}

func (out *fakeOutput) Close() error {
	out.mu.Lock()
	defer out.mu.Unlock()
	out.closed = true
	return nil
}

func (out *fakeOutput) received() []ShortMessage {
	out.mu.Lock()
	defer out.mu.Unlock()
	return append([]ShortMessage(nil), out.sent...)
}

func (out *fakeOutput) isClosed() bool {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.closed
}
