package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GoMemory/internal/game"
	"k8s.io/klog/v2"
)

// HandleWS upgrades the connection to a websocket and serves one client.
//
// The first message must be a join. Afterwards the client sends clicks and
// resets, and receives the board every time it changes.
func (s *ServerState) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		klog.Errorf("Failed to accept websocket: %v", err)
		return
	}
	defer conn.CloseNow()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := s.readJoin(ctx, conn)
	if err != nil {
		klog.Errorf("Failed to join: %v", err)
		sendError(conn, err.Error())
		conn.Close(websocket.StatusPolicyViolation, "expected join")
		return
	}
	klog.Infof("Session %s: connection from %s joined", session.ID, r.RemoteAddr)

	defer s.leave(session, conn)
	if err := session.sendState(conn); err != nil {
		klog.Errorf("Session %s: failed to send initial state: %v", session.ID, err)
		return
	}

	go s.keepAlive(ctx, cancel, conn)

	for {
		var msg game.WsMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if status := websocket.CloseStatus(err); status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway ||
				errors.Is(err, context.Canceled) {
				klog.V(1).Infof("Session %s: connection closed", session.ID)
			} else {
				klog.Errorf("Session %s: read error: %v", session.ID, err)
			}
			return
		}
		s.handleMessage(session, conn, msg)
	}
}

// readJoin waits for the join message and attaches conn to the requested session.
func (s *ServerState) readJoin(ctx context.Context, conn *websocket.Conn) (*Session, error) {
	joinCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	var msg game.WsMessage
	if err := wsjson.Read(joinCtx, conn, &msg); err != nil {
		return nil, err
	}
	if msg.Type != game.MsgTypeJoin {
		return nil, errors.New("first message must be a join")
	}
	p, err := msg.Parse()
	if err != nil {
		return nil, err
	}
	join := p.(*game.JoinMessage)
	if join.SessionID == "" {
		return nil, errors.New("join without session id")
	}
	return s.joinSession(join.SessionID, conn)
}

func (s *ServerState) handleMessage(session *Session, conn *websocket.Conn, msg game.WsMessage) {
	p, err := msg.Parse()
	if err != nil {
		klog.Errorf("Session %s: failed to parse %q message: %v", session.ID, msg.Type, err)
		sendError(conn, err.Error())
		return
	}

	switch m := p.(type) {
	case *game.ClickMessage:
		klog.V(2).Infof("Session %s: click on slot %d", session.ID, m.Slot)
		session.Click(m.Slot)
	case *game.ResetMessage:
		klog.Infof("Session %s: reset requested", session.ID)
		session.Reset()
	default:
		sendError(conn, "unexpected message type: "+string(msg.Type))
	}
}

// keepAlive pings the client periodically, and cancels the connection if a ping fails.
func (s *ServerState) keepAlive(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, pingCancel := context.WithTimeout(ctx, s.cfg.PingInterval)
			start := time.Now()
			err := conn.Ping(pingCtx)
			pingCancel()
			if err != nil {
				klog.V(1).Infof("Ping failed, closing connection: %v", err)
				cancel()
				return
			}
			klog.V(2).Infof("Ping RTT %s", time.Since(start))
		}
	}
}

func sendError(conn *websocket.Conn, message string) {
	msg, err := game.NewWsMessage(game.MsgTypeError, game.ErrorMessage{Message: message})
	if err != nil {
		return
	}
	if err := writeMessage(conn, msg); err != nil {
		klog.V(1).Infof("Failed to send error message: %v", err)
	}
}
