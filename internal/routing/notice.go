package routing

// NoticeKind classifies status notifications for the presentation layer.
type NoticeKind uint8

const (
	NoticeRouted NoticeKind = iota
	NoticeOpenFailed
	NoticeDriverError
	NoticeSessionOpened
	NoticeSessionClosed
	NoticeDropped
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeRouted:
		return "routed"
	case NoticeOpenFailed:
		return "open-failed"
	case NoticeDriverError:
		return "driver-error"
	case NoticeSessionOpened:
		return "session-opened"
	case NoticeSessionClosed:
		return "session-closed"
	case NoticeDropped:
		return "dropped"
	}
	return "unknown"
}

// Notice is a display-only status update. Fields that do not apply to a
// kind are left at -1 or zero.
type Notice struct {
	Kind      NoticeKind
	Direction Direction
	Input     int
	Output    int
	Message   ShortMessage
	Session   string
	Err       error
}

// Stats counts what happened on the real-time path.
type Stats struct {
	// Routed counts sends, one per qualifying output.
	Routed uint64
	// Filtered counts (event, output) pairs blocked by a channel mask.
	Filtered uint64
	// Dropped counts data events that reached no output.
	Dropped uint64
	// Stale counts events whose input session had already closed.
	Stale uint64
	// Unsupported counts long messages dropped at the callback.
	Unsupported uint64
	// Overflow counts events lost to a full bridge.
	Overflow uint64
	// DriverErrors counts error events raised by the driver.
	DriverErrors uint64
	// SendErrors counts failed writes to an open output.
	SendErrors uint64
	// LastDriverError is the most recent driver error, if any.
	LastDriverError string
}
