package routing

import (
	"fmt"
	"log/slog"
)

// Options configures a Router or Engine.
type Options struct {
	// MaxDevices caps enumeration per direction. Zero uses DefaultMaxDevices.
	MaxDevices int
	// QueueSize is the bridge capacity. Zero uses DefaultQueueSize.
	QueueSize int
	// Logger receives session and error logs. Nil discards.
	Logger *slog.Logger
	// OnNotice receives status notices on the controller goroutine. It
	// must not block. The Engine installs its own.
	OnNotice func(Notice)
}

// Router is the controller state: registry, matrix, channel masks and
// sessions, plus the dispatch path that consumes the bridge.
//
// A Router is not safe for concurrent use. Exactly one goroutine owns it;
// Engine provides that goroutine. Driver callbacks only reach the Bridge.
type Router struct {
	registry *Registry
	matrix   *Matrix
	filter   *ChannelFilter
	sessions *SessionManager
	bridge   *Bridge
	logger   *slog.Logger
	notify   func(Notice)

	stats Stats
}

// NewRouter enumerates the platform's devices and builds empty routing
// state sized to them.
func NewRouter(p Platform, opts Options) (*Router, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notify := opts.OnNotice
	if notify == nil {
		notify = func(Notice) {}
	}

	reg, err := Enumerate(p, opts.MaxDevices)
	if err != nil {
		return nil, err
	}

	r := &Router{
		registry: reg,
		matrix:   NewMatrix(reg.Count(Input), reg.Count(Output)),
		filter:   NewChannelFilter(reg.Count(Output)),
		bridge:   NewBridge(opts.QueueSize),
		logger:   logger,
		notify:   notify,
	}
	r.sessions = newSessionManager(p, reg, r.matrix, r.bridge, logger, notify)
	r.sessions.drain = r.Drain

	logger.Info("MIDI devices enumerated", "inputs", reg.Count(Input), "outputs", reg.Count(Output))
	return r, nil
}

// Registry returns the device registry. It is read-only and safe to share.
func (r *Router) Registry() *Registry { return r.registry }

// Bridge returns the hand-off queue fed by driver callbacks.
func (r *Router) Bridge() *Bridge { return r.bridge }

// Sessions returns the session manager.
func (r *Router) Sessions() *SessionManager { return r.sessions }

func (r *Router) validPair(in, out int) error {
	if !r.registry.Valid(Input, in) {
		return fmt.Errorf("input %d: %w", in, ErrInvalidIndex)
	}
	if !r.registry.Valid(Output, out) {
		return fmt.Errorf("output %d: %w", out, ErrInvalidIndex)
	}
	return nil
}

// Connect routes in to out and opens both sessions if needed. Open
// failures are reported as notices; the connection is kept either way and
// the next Connect on it retries the open.
func (r *Router) Connect(in, out int) error {
	if err := r.validPair(in, out); err != nil {
		return err
	}
	if r.matrix.Set(in, out, true) {
		r.logger.Info("connected", "input", in, "output", out)
	}
	_ = r.sessions.EnsureInputOpen(in)
	_ = r.sessions.EnsureOutputOpen(out)
	return nil
}

// Disconnect removes the route and closes sessions nothing else uses.
func (r *Router) Disconnect(in, out int) error {
	if err := r.validPair(in, out); err != nil {
		return err
	}
	if r.matrix.Set(in, out, false) {
		r.logger.Info("disconnected", "input", in, "output", out)
	}
	r.sessions.CloseInputIfUnused(in)
	r.sessions.CloseOutputIfUnused(out)
	return nil
}

// ActiveConnections lists connections in row-major order.
func (r *Router) ActiveConnections() []Connection {
	return r.matrix.Connections()
}

// Connected reports whether in feeds out. Invalid indices report false.
func (r *Router) Connected(in, out int) bool {
	return r.validPair(in, out) == nil && r.matrix.Connected(in, out)
}

// SetChannelEnabled enables or disables a channel on an output.
func (r *Router) SetChannelEnabled(out, ch int, enabled bool) error {
	return r.filter.SetChannelEnabled(out, ch, enabled)
}

// IsChannelEnabled reports whether ch passes out.
func (r *Router) IsChannelEnabled(out, ch int) bool {
	return r.filter.IsChannelEnabled(out, ch)
}

// ChannelMask returns the output's mask.
func (r *Router) ChannelMask(out int) (ChannelMask, error) {
	return r.filter.Mask(out)
}

// SetChannelMask replaces the output's mask.
func (r *Router) SetChannelMask(out int, mask ChannelMask) error {
	return r.filter.SetMask(out, mask)
}

// Dispatch routes one inbound event.
func (r *Router) Dispatch(ev InboundEvent) {
	idx, ok := r.sessions.Resolve(ev.Handle)
	if !ok {
		r.stats.Stale++
		return
	}
	ev.Source = idx

	switch ev.Kind {
	case EventData:
	case EventError, EventLongError:
		r.stats.DriverErrors++
		r.stats.LastDriverError = fmt.Sprintf("%s on input %d (%s)", ev.Kind, idx, r.registry.Name(Input, idx))
		if ev.Err != nil {
			r.stats.LastDriverError += ": " + ev.Err.Error()
		}
		r.logger.Debug("driver error event", "input", idx, "kind", ev.Kind.String(), "error", ev.Err)
		r.notify(Notice{Kind: NoticeDriverError, Direction: Input, Input: idx, Output: -1, Err: ev.Err})
		return
	default:
		r.stats.Unsupported++
		return
	}

	// The status byte alone decides filtering: channel voice messages
	// (0x80-0xEF) carry the channel in its low nibble.
	msg := ev.Raw
	status := ShortMessage(ev.Status)
	filtered := status.IsChannelVoice()
	channel := status.Channel()

	routed := false
	for out := 0; out < r.registry.Count(Output); out++ {
		if !r.matrix.Connected(ev.Source, out) {
			continue
		}
		if filtered && !r.filter.IsChannelEnabled(out, channel) {
			r.stats.Filtered++
			continue
		}
		if r.sessions.Send(out, msg) {
			r.stats.Routed++
			routed = true
			r.notify(Notice{Kind: NoticeRouted, Input: ev.Source, Output: out, Message: msg})
		}
	}
	if !routed {
		r.stats.Dropped++
		r.notify(Notice{Kind: NoticeDropped, Input: ev.Source, Output: -1, Message: msg})
	}
}

// Drain dispatches the events queued right now and returns. Events pushed
// while draining wait for the next read.
func (r *Router) Drain() {
	events := r.bridge.Events()
	for n := len(events); n > 0; n-- {
		r.Dispatch(<-events)
	}
}

// Stats returns a snapshot of the counters.
func (r *Router) Stats() Stats {
	s := r.stats
	s.Overflow = r.bridge.Overflow()
	s.Unsupported += r.bridge.Unsupported()
	s.SendErrors = r.sessions.sendErrors
	return s
}

// Close closes every open session. The matrix is left as is.
func (r *Router) Close() {
	r.sessions.CloseAll()
}
