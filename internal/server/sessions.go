package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/janpfeifer/GoMemory/internal/config"
	"github.com/janpfeifer/GoMemory/internal/game"
	"k8s.io/klog/v2"
)

var (
	// ErrSessionNotFound is returned when looking up a session that doesn't exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when creating a session beyond Config.MaxSessions.
	ErrTooManySessions = errors.New("too many sessions")
)

// ServerState holds the hosted sessions.
type ServerState struct {
	// Address the server is listening to.
	Address string

	cfg      config.Config
	mu       sync.RWMutex
	Sessions map[string]*Session
}

// NewServerState creates an empty server state.
func NewServerState(cfg config.Config) *ServerState {
	return &ServerState{
		cfg:      cfg,
		Sessions: make(map[string]*Session),
	}
}

// Session is a board hosted by the server, shared by every connection that joined it.
type Session struct {
	ID string

	// sendMu is held from taking a board snapshot until it is written to every
	// connection, so clients receive the boards in order. Lock it before mu.
	sendMu sync.Mutex

	mu    sync.Mutex
	ctrl  *game.Controller
	conns map[*websocket.Conn]struct{}
	// idleSince is set when the last connection leaves, zero otherwise.
	idleSince time.Time
}

// NewSession creates a session with a fresh random id.
func (s *ServerState) NewSession() (*Session, error) {
	return s.GetOrCreateSession(uuid.NewString())
}

// GetOrCreateSession returns the session with the given id, creating it if needed.
func (s *ServerState) GetOrCreateSession(id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(id)
}

// joinSession attaches conn to the session with the given id, creating the session
// if needed. Both happen under s.mu, so an idle removal can't drop the session in between.
func (s *ServerState) joinSession(id string, conn *websocket.Conn) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, err := s.getOrCreateLocked(id)
	if err != nil {
		return nil, err
	}
	session.join(conn)
	return session, nil
}

func (s *ServerState) getOrCreateLocked(id string) (*Session, error) {
	if session, found := s.Sessions[id]; found {
		return session, nil
	}
	if len(s.Sessions) >= s.cfg.MaxSessions {
		return nil, fmt.Errorf("can't create session %s, %d sessions open: %w", id, len(s.Sessions), ErrTooManySessions)
	}

	session := &Session{
		ID:    id,
		conns: make(map[*websocket.Conn]struct{}),
	}
	delays := s.cfg.Delays()
	ctrl, err := game.NewController(game.Options{
		Delays: &delays,
		Scheduler: &game.TimerScheduler{
			Locker: &session.mu,
			OnFire: session.Broadcast,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create controller for session %s: %w", id, err)
	}
	session.ctrl = ctrl
	s.Sessions[id] = session
	klog.Infof("Session %s created", id)
	return session, nil
}

// Session returns the session with the given id.
func (s *ServerState) Session(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, found := s.Sessions[id]
	if !found {
		return nil, fmt.Errorf("session %q: %w", id, ErrSessionNotFound)
	}
	return session, nil
}

// join attaches conn to the session.
func (session *Session) join(conn *websocket.Conn) {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.conns[conn] = struct{}{}
	session.idleSince = time.Time{}
}

// leave detaches conn from the session. If no connections are left, the session is
// removed after the idle timeout, unless somebody joins in the meantime.
func (s *ServerState) leave(session *Session, conn *websocket.Conn) {
	session.mu.Lock()
	delete(session.conns, conn)
	empty := len(session.conns) == 0
	if empty {
		session.idleSince = time.Now()
	}
	session.mu.Unlock()
	if !empty {
		return
	}

	time.AfterFunc(s.cfg.SessionIdleTimeout, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		session.mu.Lock()
		defer session.mu.Unlock()
		if len(session.conns) > 0 || session.idleSince.IsZero() ||
			time.Since(session.idleSince) < s.cfg.SessionIdleTimeout {
			return
		}
		if s.Sessions[session.ID] == session {
			delete(s.Sessions, session.ID)
			klog.Infof("Session %s removed after being idle for %s", session.ID, s.cfg.SessionIdleTimeout)
		}
	})
}

// Click forwards a click to the controller, and broadcasts the board if it changed.
func (session *Session) Click(slot int) {
	session.mu.Lock()
	changed := session.ctrl.Click(slot)
	session.mu.Unlock()
	if changed {
		session.Broadcast()
	}
}

// Reset deals a new board and broadcasts it.
func (session *Session) Reset() {
	session.mu.Lock()
	session.ctrl.Reset()
	session.mu.Unlock()
	session.Broadcast()
}

// stateMessage builds the state message. It must be called with session.mu held.
func (session *Session) stateMessage() (game.WsMessage, error) {
	return game.NewWsMessage(game.MsgTypeState, game.StateMessage{
		SessionID: session.ID,
		Board:     session.ctrl.View(),
		Delays:    session.ctrl.Delays(),
	})
}

// Broadcast sends the current board to every connection of the session.
func (session *Session) Broadcast() {
	session.sendMu.Lock()
	defer session.sendMu.Unlock()

	session.mu.Lock()
	msg, err := session.stateMessage()
	conns := make([]*websocket.Conn, 0, len(session.conns))
	for conn := range session.conns {
		conns = append(conns, conn)
	}
	session.mu.Unlock()
	if err != nil {
		klog.Errorf("Session %s: failed to create state message: %v", session.ID, err)
		return
	}

	for _, conn := range conns {
		if err := writeMessage(conn, msg); err != nil {
			klog.Errorf("Session %s: failed to send state: %v", session.ID, err)
		}
	}
}

// sendState sends the current board to conn only.
func (session *Session) sendState(conn *websocket.Conn) error {
	session.sendMu.Lock()
	defer session.sendMu.Unlock()

	session.mu.Lock()
	msg, err := session.stateMessage()
	session.mu.Unlock()
	if err != nil {
		return err
	}
	return writeMessage(conn, msg)
}

// View returns a snapshot of the session's board.
func (session *Session) View() game.BoardView {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.ctrl.View()
}

// CloseAll closes every connection of every session.
func (s *ServerState) CloseAll() {
	var conns []*websocket.Conn
	s.mu.RLock()
	for _, session := range s.Sessions {
		session.mu.Lock()
		for conn := range session.conns {
			conns = append(conns, conn)
		}
		session.mu.Unlock()
	}
	s.mu.RUnlock()

	// Closing waits for the read loops, which take the session lock when leaving.
	for _, conn := range conns {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
	}
}

func writeMessage(conn *websocket.Conn, msg game.WsMessage) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}
