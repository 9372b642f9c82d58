package net

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/rangefire/rangefire/internal/core/event"
	"github.com/rangefire/rangefire/internal/input"
)

// Server is the presentation bridge. It mirrors bus topics to websocket
// clients and feeds their commands into the input queue.
type Server struct {
	bus          *event.Bus
	inputs       *input.Queue
	outSize      int
	writeTimeout time.Duration
	nextID       atomic.Uint64
	log          *zap.Logger

	mu       sync.Mutex
	sessions map[uint64]*Session

	unsubscribe func()
}

func NewServer(bus *event.Bus, inputs *input.Queue, outSize int, writeTimeout time.Duration, log *zap.Logger) *Server {
	if outSize <= 0 {
		outSize = 64
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	s := &Server{
		bus:          bus,
		inputs:       inputs,
		outSize:      outSize,
		writeTimeout: writeTimeout,
		log:          log,
		sessions:     make(map[uint64]*Session),
	}
	s.unsubscribe = bus.SubscribeAll(s.broadcast)
	return s
}

// Handler serves the websocket endpoint at /ws.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.serveWS)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	s.log.Info("bridge listening", zap.Stringer("addr", ln.Addr()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops mirroring and closes every session.
func (s *Server) Shutdown() {
	s.unsubscribe()
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		sess.closeWith(websocket.StatusGoingAway, "shutdown")
		delete(s.sessions, id)
	}
}

// Count returns the number of connected sessions.
func (s *Server) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.log.Debug("websocket accept failed", zap.Error(err))
		return
	}

	id := s.nextID.Add(1)
	sess := NewSession(conn, id, r.RemoteAddr, s.inputs, s.outSize, s.writeTimeout, s.log)
	s.register(sess)
	s.log.Info("client connected", zap.Uint64("session", id), zap.String("ip", sess.IP))

	sess.run(r.Context())

	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	s.log.Info("client disconnected", zap.Uint64("session", id))
}

// register adds sess and queues the current snapshot for it. Holding mu
// keeps broadcast from interleaving an older update after the snapshot.
func (s *Server) register(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	for _, ev := range s.bus.Snapshot() {
		s.send(sess, ev)
	}
}

// broadcast runs on the frame goroutine during bus Flush; it must not block.
func (s *Server) broadcast(ev event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return
	}
	data, err := EncodeUpdate(ev)
	if err != nil {
		s.log.Error("encode update", zap.Error(err))
		return
	}
	for id, sess := range s.sessions {
		if sess.IsClosed() {
			delete(s.sessions, id)
			continue
		}
		sess.Send(data)
	}
}

func (s *Server) send(sess *Session, ev event.Event) {
	data, err := EncodeUpdate(ev)
	if err != nil {
		s.log.Error("encode update", zap.Error(err))
		return
	}
	sess.Send(data)
}
