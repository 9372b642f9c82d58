package net

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/input"
)

// Session is one connected presentation client. Updates are queued by the
// frame goroutine and written by the session's own writer goroutine.
type Session struct {
	ID   uint64
	IP   string
	conn *websocket.Conn

	OutQueue chan []byte // writer goroutine reads from here
	inputs   *input.Queue

	writeTimeout time.Duration

	closeCh   chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool

	log *zap.Logger
}

func NewSession(conn *websocket.Conn, id uint64, ip string, inputs *input.Queue, outSize int, writeTimeout time.Duration, log *zap.Logger) *Session {
	return &Session{
		ID:           id,
		IP:           ip,
		conn:         conn,
		OutQueue:     make(chan []byte, outSize),
		inputs:       inputs,
		writeTimeout: writeTimeout,
		closeCh:      make(chan struct{}),
		log:          log.With(zap.Uint64("session", id)),
	}
}

// Send queues data for the writer. Non-blocking: if OutQueue is full the
// session is disconnected.
func (s *Session) Send(data []byte) {
	if s.closed.Load() {
		return
	}
	select {
	case s.OutQueue <- data:
	default:
		s.log.Warn("output queue full, disconnecting slow client")
		s.closeWith(websocket.StatusPolicyViolation, "too slow")
	}
}

// Close gracefully shuts down the session.
func (s *Session) Close() {
	s.closeWith(websocket.StatusNormalClosure, "")
}

func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done is closed once the session has shut down.
func (s *Session) Done() <-chan struct{} {
	return s.closeCh
}

func (s *Session) closeWith(code websocket.StatusCode, reason string) {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.closeCh)
		// Close performs the closing handshake; do not hold up the caller.
		go s.conn.Close(code, reason)
	})
}

// run serves the session until the connection ends or ctx is cancelled.
func (s *Session) run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.writeLoop(ctx)
	s.readLoop(ctx)
}

// readLoop decodes client commands and pushes them onto the input queue.
// Malformed frames are logged and skipped.
func (s *Session) readLoop(ctx context.Context) {
	defer s.Close()

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if !s.closed.Load() && !isClosure(err) {
				s.log.Debug("read error", zap.Error(err))
			}
			return
		}
		ev, err := DecodeCommand(data)
		if err != nil {
			s.log.Debug("bad command", zap.Error(err))
			continue
		}
		if !s.inputs.Push(ev) {
			s.log.Warn("input queue full, dropping command", zap.Stringer("kind", ev.Kind))
		}
	}
}

// writeLoop writes queued updates as text frames.
func (s *Session) writeLoop(ctx context.Context) {
	defer s.Close()

	for {
		select {
		case data := <-s.OutQueue:
			wctx, cancel := context.WithTimeout(ctx, s.writeTimeout)
			err := s.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				if !s.closed.Load() {
					s.log.Debug("write error", zap.Error(err))
				}
				return
			}
		case <-s.closeCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

func isClosure(err error) bool {
	return websocket.CloseStatus(err) != -1 || errors.Is(err, context.Canceled)
}
