package routing

import (
	"log/slog"

	"github.com/google/uuid"
)

type inputSession struct {
	id   uuid.UUID
	port InputPort
}

type outputSession struct {
	id   uuid.UUID
	port OutputPort
}

// SessionManager opens and closes device sessions as the matrix changes.
// It is the only component that holds platform ports, and it is owned by
// the controller goroutine.
type SessionManager struct {
	platform Platform
	registry *Registry
	matrix   *Matrix
	bridge   *Bridge
	logger   *slog.Logger
	notify   func(Notice)

	// drain runs queued bridge events before an input port is closed.
	drain func()

	inputs  []*inputSession
	outputs []*outputSession
	handles map[Handle]int

	sendErrors uint64
}

func newSessionManager(p Platform, reg *Registry, m *Matrix, b *Bridge, logger *slog.Logger, notify func(Notice)) *SessionManager {
	return &SessionManager{
		platform: p,
		registry: reg,
		matrix:   m,
		bridge:   b,
		logger:   logger,
		notify:   notify,
		drain:    func() {},
		inputs:   make([]*inputSession, reg.Count(Input)),
		outputs:  make([]*outputSession, reg.Count(Output)),
		handles:  make(map[Handle]int),
	}
}

func (s *SessionManager) openFailed(dir Direction, idx int, err error) error {
	openErr := &DeviceOpenError{
		Direction: dir,
		Index:     idx,
		Name:      s.registry.Name(dir, idx),
		Err:       err,
	}
	s.logger.Warn("device open failed", "direction", dir.String(), "index", idx, "error", err)
	n := Notice{Kind: NoticeOpenFailed, Direction: dir, Input: -1, Output: -1, Err: openErr}
	if dir == Input {
		n.Input = idx
	} else {
		n.Output = idx
	}
	s.notify(n)
	return openErr
}

// EnsureInputOpen opens and starts the input if it has no session.
func (s *SessionManager) EnsureInputOpen(idx int) error {
	if s.inputs[idx] != nil {
		return nil
	}

	port, err := s.platform.OpenInput(idx, s.bridge.Push)
	if err != nil {
		return s.openFailed(Input, idx, err)
	}
	if err := port.Start(); err != nil {
		_ = port.Close()
		return s.openFailed(Input, idx, err)
	}

	sess := &inputSession{id: uuid.New(), port: port}
	s.inputs[idx] = sess
	s.handles[port.Handle()] = idx

	s.logger.Info("input session opened", "index", idx, "name", s.registry.Name(Input, idx), "session", sess.id)
	s.notify(Notice{Kind: NoticeSessionOpened, Direction: Input, Input: idx, Output: -1, Session: sess.id.String()})
	return nil
}

// EnsureOutputOpen opens the output if it has no session.
func (s *SessionManager) EnsureOutputOpen(idx int) error {
	if s.outputs[idx] != nil {
		return nil
	}

	port, err := s.platform.OpenOutput(idx)
	if err != nil {
		return s.openFailed(Output, idx, err)
	}

	sess := &outputSession{id: uuid.New(), port: port}
	s.outputs[idx] = sess

	s.logger.Info("output session opened", "index", idx, "name", s.registry.Name(Output, idx), "session", sess.id)
	s.notify(Notice{Kind: NoticeSessionOpened, Direction: Output, Input: -1, Output: idx, Session: sess.id.String()})
	return nil
}

// CloseInputIfUnused closes the input when its matrix row is empty. Capture
// stops first, then events already handed off are dispatched, then the
// handle is forgotten and the port closed. Events that arrive later carry
// an unknown handle and are dropped as stale.
func (s *SessionManager) CloseInputIfUnused(idx int) {
	sess := s.inputs[idx]
	if sess == nil || s.matrix.RowActive(idx) {
		return
	}

	if err := sess.port.Stop(); err != nil {
		s.logger.Warn("stopping input failed", "index", idx, "session", sess.id, "error", err)
	}
	s.drain()

	delete(s.handles, sess.port.Handle())
	s.inputs[idx] = nil
	if err := sess.port.Close(); err != nil {
		s.logger.Warn("closing input failed", "index", idx, "session", sess.id, "error", err)
	}

	s.logger.Info("input session closed", "index", idx, "session", sess.id)
	s.notify(Notice{Kind: NoticeSessionClosed, Direction: Input, Input: idx, Output: -1, Session: sess.id.String()})
}

// CloseOutputIfUnused closes the output when its matrix column is empty.
func (s *SessionManager) CloseOutputIfUnused(idx int) {
	sess := s.outputs[idx]
	if sess == nil || s.matrix.ColumnActive(idx) {
		return
	}

	s.outputs[idx] = nil
	if err := sess.port.Close(); err != nil {
		s.logger.Warn("closing output failed", "index", idx, "session", sess.id, "error", err)
	}

	s.logger.Info("output session closed", "index", idx, "session", sess.id)
	s.notify(Notice{Kind: NoticeSessionClosed, Direction: Output, Input: -1, Output: idx, Session: sess.id.String()})
}

// Send writes msg to the output's session. Without a session it does
// nothing; a routed event may race a disconnect and lose.
func (s *SessionManager) Send(idx int, msg ShortMessage) bool {
	sess := s.outputs[idx]
	if sess == nil {
		return false
	}
	if err := sess.port.Send(msg); err != nil {
		s.sendErrors++
		s.logger.Debug("send failed", "output", idx, "session", sess.id, "error", err)
		return false
	}
	return true
}

// Resolve maps a handle to the input it belongs to. Handles of closed
// sessions do not resolve.
func (s *SessionManager) Resolve(h Handle) (int, bool) {
	idx, ok := s.handles[h]
	return idx, ok
}

// InputOpen reports whether the input has a session.
func (s *SessionManager) InputOpen(idx int) bool { return s.inputs[idx] != nil }

// OutputOpen reports whether the output has a session.
func (s *SessionManager) OutputOpen(idx int) bool { return s.outputs[idx] != nil }

// CloseAll stops and closes every session regardless of the matrix.
func (s *SessionManager) CloseAll() {
	for idx, sess := range s.inputs {
		if sess == nil {
			continue
		}
		_ = sess.port.Stop()
		_ = sess.port.Close()
		delete(s.handles, sess.port.Handle())
		s.inputs[idx] = nil
	}
	for idx, sess := range s.outputs {
		if sess == nil {
			continue
		}
		_ = sess.port.Close()
		s.outputs[idx] = nil
	}
}
