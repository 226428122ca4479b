package frontend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// GlobalClientState holds the local game, the hosted session connection and its latest board.
type GlobalClientState struct {
	// mu serializes the local controller: clicks and its scheduled callbacks.
	mu    sync.Mutex
	Local *game.Controller
	Error string

	// Hosted session state.
	SessionID    string
	Conn         *websocket.Conn
	Remote       *game.BoardView
	RemoteDelays game.Delays

	// Listeners for state updates
	Listeners map[string]func()
}

var State *GlobalClientState

func (s *GlobalClientState) Notify() {
	klog.V(2).Infof("GlobalClientState: Notifying %d listeners", len(s.Listeners))
	for _, l := range s.Listeners {
		if l != nil {
			l()
		}
	}
}

// InitState creates the global state. In the browser it also deals the local game.
func InitState() {
	if State != nil {
		klog.V(1).Infof("InitState: state already exists")
		return
	}
	klog.V(1).Infof("InitState: creating new state (was nil)")
	State = &GlobalClientState{
		Listeners: make(map[string]func()),
	}
	if app.IsServer {
		return
	}
	if err := State.NewLocalGame(); err != nil {
		klog.Fatalf("InitState: %v", err)
	}
}

// NewLocalGame creates the in-browser controller.
func (s *GlobalClientState) NewLocalGame() error {
	ctrl, err := game.NewController(game.Options{
		Scheduler: &game.TimerScheduler{Locker: &s.mu, OnFire: s.Notify},
	})
	if err != nil {
		return fmt.Errorf("failed to create local game: %w", err)
	}
	s.mu.Lock()
	s.Local = ctrl
	s.mu.Unlock()
	return nil
}

// LocalView returns a snapshot of the local board, and its presentation delays.
func (s *GlobalClientState) LocalView() (game.BoardView, game.Delays) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Local == nil {
		return game.BoardView{}, game.DefaultDelays()
	}
	return s.Local.View(), s.Local.Delays()
}

// ClickLocal forwards a click to the local controller.
func (s *GlobalClientState) ClickLocal(slot int) {
	s.mu.Lock()
	changed := s.Local != nil && s.Local.Click(slot)
	s.mu.Unlock()
	if changed {
		s.Notify()
	}
}

// ResetLocal deals a new local board.
func (s *GlobalClientState) ResetLocal() {
	s.mu.Lock()
	if s.Local != nil {
		s.Local.Reset()
	}
	s.mu.Unlock()
	s.Notify()
}

// CreateSession asks the server for a new hosted session and returns its id.
func (s *GlobalClientState) CreateSession() (string, error) {
	u := app.Window().URL()
	resp, err := http.Post(fmt.Sprintf("%s://%s/api/sessions", u.Scheme, u.Host), "application/json", nil)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("create session: unexpected status %s", resp.Status)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	klog.Infof("CreateSession: created session %s", created.ID)
	return created.ID, nil
}

// ConnectWS connects to the server and joins the hosted session.
func (s *GlobalClientState) ConnectWS(sessionID string) error {
	u := app.Window().URL()
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	// We use a context that lasts for the duration of the connection setup.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	return s.connect(ctx, fmt.Sprintf("%s://%s/ws", scheme, u.Host), sessionID)
}

func (s *GlobalClientState) connect(ctx context.Context, wsURL, sessionID string) error {
	s.Disconnect()
	klog.Infof("ConnectWS: Connecting to %s (Session: %s)", wsURL, sessionID)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		klog.Errorf("ConnectWS: Dial failed: %v", err)
		return fmt.Errorf("dial failed: %w", err)
	}
	return s.join(ctx, conn, sessionID)
}

// join sends the join message on a freshly dialed conn. The connection is only
// kept if the join was sent, otherwise it is closed.
func (s *GlobalClientState) join(ctx context.Context, conn *websocket.Conn, sessionID string) error {
	joinMsg, err := game.NewWsMessage(game.MsgTypeJoin, game.JoinMessage{SessionID: sessionID})
	if err == nil {
		err = wsjson.Write(ctx, conn, joinMsg)
	}
	if err != nil {
		klog.Errorf("ConnectWS: Failed to send join: %v", err)
		conn.CloseNow()
		return fmt.Errorf("failed to send join: %w", err)
	}

	s.Conn = conn
	s.SessionID = sessionID
	s.Remote = nil
	klog.Infof("ConnectWS: Join message sent. Starting read loop.")
	go s.readLoop(conn)
	return nil
}

// Disconnect closes the hosted session connection, if any.
func (s *GlobalClientState) Disconnect() {
	if s.Conn == nil {
		return
	}
	klog.Infof("Disconnect: Closing connection to session %s", s.SessionID)
	s.Conn.Close(websocket.StatusNormalClosure, "")
	s.Conn = nil
	s.SessionID = ""
	s.Remote = nil
}

func (s *GlobalClientState) readLoop(conn *websocket.Conn) {
	ctx := context.Background()
	klog.Infof("readLoop: started")
	for {
		var msg game.WsMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				klog.Errorf("readLoop: WS read error: %v", err)
			}
			break
		}

		klog.V(1).Infof("readLoop: received message type: %s", msg.Type)
		s.handleMessage(msg)
	}
}

func (s *GlobalClientState) handleMessage(msg game.WsMessage) {
	p, err := msg.Parse()
	if err != nil {
		klog.Errorf("handleMessage: Failed to parse %s message: %v", msg.Type, err)
		return
	}

	switch m := p.(type) {
	case *game.StateMessage:
		if m.SessionID != s.SessionID {
			klog.Warningf("handleMessage: State for session %s while in %s, ignoring", m.SessionID, s.SessionID)
			return
		}
		s.Remote = &m.Board
		s.RemoteDelays = m.Delays
		s.Error = ""
		s.Notify()

	case *game.ErrorMessage:
		s.Error = m.Message
		s.Notify()

	default:
		klog.Errorf("handleMessage: Unexpected message type: %s", msg.Type)
	}
}

// SendClick sends a click message to the server
func (s *GlobalClientState) SendClick(slot int) {
	s.send(game.MsgTypeClick, game.ClickMessage{Slot: slot})
}

// SendReset asks the server for a new deal
func (s *GlobalClientState) SendReset() {
	s.send(game.MsgTypeReset, nil)
}

func (s *GlobalClientState) send(msgType game.MessageType, payload any) {
	if s.Conn == nil {
		return
	}
	msg, err := game.NewWsMessage(msgType, payload)
	if err != nil {
		klog.Errorf("send: Failed to create %s message: %v", msgType, err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	if err := wsjson.Write(ctx, s.Conn, msg); err != nil {
		klog.Errorf("send: Failed to send %s message: %v", msgType, err)
	}
}
