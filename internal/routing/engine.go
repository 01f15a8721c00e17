package routing

import (
	"context"
	"sync"
)

const noticeBuffer = 256

// Engine runs a Router on its own goroutine. Commands from any goroutine
// are queued as closures and executed in order on that goroutine, which
// also drains the bridge, so routing state never needs a lock.
type Engine struct {
	router  *Router
	ops     chan func()
	notices chan Notice

	done     chan struct{}
	stopOnce sync.Once
}

// NewEngine enumerates devices and prepares an engine. Call Run to start
// routing. Options.OnNotice is replaced; read Notices instead.
func NewEngine(p Platform, opts Options) (*Engine, error) {
	e := &Engine{
		ops:     make(chan func()),
		notices: make(chan Notice, noticeBuffer),
		done:    make(chan struct{}),
	}
	opts.OnNotice = e.publish

	r, err := NewRouter(p, opts)
	if err != nil {
		return nil, err
	}
	e.router = r
	return e, nil
}

func (e *Engine) publish(n Notice) {
	select {
	case e.notices <- n:
	default:
	}
}

// Notices delivers status updates for display. Notices are dropped when
// the reader falls behind.
func (e *Engine) Notices() <-chan Notice {
	return e.notices
}

// Run owns the routing state until ctx is done, then closes every session.
func (e *Engine) Run(ctx context.Context) error {
	defer e.stopOnce.Do(func() { close(e.done) })
	defer e.router.Close()

	events := e.router.Bridge().Events()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case op := <-e.ops:
			op()
		case ev := <-events:
			e.router.Dispatch(ev)
		}
	}
}

// do runs fn on the engine goroutine and waits for it.
func (e *Engine) do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	op := func() {
		defer close(finished)
		fn()
	}

	select {
	case e.ops <- op:
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	// Once accepted the op always runs to completion.
	<-finished
	return nil
}

// ListDevices returns the devices of one direction. The registry is
// immutable, so this does not go through the engine goroutine.
func (e *Engine) ListDevices(dir Direction) []Device {
	return e.router.Registry().Devices(dir)
}

// Connect routes input in to output out.
func (e *Engine) Connect(ctx context.Context, in, out int) error {
	var err error
	if doErr := e.do(ctx, func() { err = e.router.Connect(in, out) }); doErr != nil {
		return doErr
	}
	return err
}

// Disconnect removes the route from in to out.
func (e *Engine) Disconnect(ctx context.Context, in, out int) error {
	var err error
	if doErr := e.do(ctx, func() { err = e.router.Disconnect(in, out) }); doErr != nil {
		return doErr
	}
	return err
}

// ListConnections returns active connections in row-major order.
func (e *Engine) ListConnections(ctx context.Context) ([]Connection, error) {
	var conns []Connection
	err := e.do(ctx, func() { conns = e.router.ActiveConnections() })
	return conns, err
}

// SetChannelEnabled enables or disables one channel on an output.
func (e *Engine) SetChannelEnabled(ctx context.Context, out, ch int, enabled bool) error {
	var err error
	if doErr := e.do(ctx, func() { err = e.router.SetChannelEnabled(out, ch, enabled) }); doErr != nil {
		return doErr
	}
	return err
}

// GetChannelMask returns an output's channel mask.
func (e *Engine) GetChannelMask(ctx context.Context, out int) (ChannelMask, error) {
	var (
		mask ChannelMask
		err  error
	)
	if doErr := e.do(ctx, func() { mask, err = e.router.ChannelMask(out) }); doErr != nil {
		return ChannelMask{}, doErr
	}
	return mask, err
}

// SetChannelMask replaces an output's channel mask.
func (e *Engine) SetChannelMask(ctx context.Context, out int, mask ChannelMask) error {
	var err error
	if doErr := e.do(ctx, func() { err = e.router.SetChannelMask(out, mask) }); doErr != nil {
		return doErr
	}
	return err
}

// BeginChannelEdit starts an edit seeded with the output's current mask.
func (e *Engine) BeginChannelEdit(ctx context.Context, out int) (*ChannelEdit, error) {
	mask, err := e.GetChannelMask(ctx, out)
	if err != nil {
		return nil, err
	}
	return &ChannelEdit{Output: out, Pending: mask}, nil
}

// ApplyChannelEdit commits a pending edit in one step.
func (e *Engine) ApplyChannelEdit(ctx context.Context, edit *ChannelEdit) error {
	return e.SetChannelMask(ctx, edit.Output, edit.Pending)
}

// Stats returns the real-time path counters.
func (e *Engine) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := e.do(ctx, func() { s = e.router.Stats() })
	return s, err
}
