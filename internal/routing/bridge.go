package routing

import "sync/atomic"

// DefaultQueueSize is the bridge capacity used when Options leaves it unset.
const DefaultQueueSize = 1024

// InboundEvent is a value snapshot of one message from a driver callback.
// Source is -1 until the controller resolves Handle to an input index.
type InboundEvent struct {
	Source int
	Handle Handle
	Kind   EventKind
	Status byte
	Raw    ShortMessage
	Err    error
}

// Bridge hands events from driver callbacks to the controller goroutine.
// Producers never block: a full queue drops the event and counts it. A
// single channel carries every source, so events from one input keep the
// order the driver raised them in.
type Bridge struct {
	events      chan InboundEvent
	overflow    atomic.Uint64
	unsupported atomic.Uint64
}

// NewBridge returns a bridge holding up to size pending events.
func NewBridge(size int) *Bridge {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Bridge{events: make(chan InboundEvent, size)}
}

// Push is the driver callback. It satisfies the Callback contract: no
// locks, no allocation, no routing state. Long messages are counted and
// dropped here and never reach the queue.
func (b *Bridge) Push(h Handle, kind EventKind, packed ShortMessage, err error) {
	if kind == EventLongData {
		b.unsupported.Add(1)
		return
	}

	ev := InboundEvent{Source: -1, Handle: h, Kind: kind, Err: err}
	if kind == EventData {
		ev.Status = packed.Status()
		ev.Raw = packed
	}

	select {
	case b.events <- ev:
	default:
		b.overflow.Add(1)
	}
}

// Events is the consumer side. Only the controller goroutine reads it.
func (b *Bridge) Events() <-chan InboundEvent {
	return b.events
}

// Pending returns the number of queued events.
func (b *Bridge) Pending() int {
	return len(b.events)
}

// Overflow returns how many events were dropped because the queue was full.
func (b *Bridge) Overflow() uint64 {
	return b.overflow.Load()
}

// Unsupported returns how many long (SysEx) messages were dropped.
func (b *Bridge) Unsupported() uint64 {
	return b.unsupported.Load()
}
