package frontend

import (
	"fmt"
	"strings"

	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Session shows a board hosted by the server, under /session/<id>.
type Session struct {
	app.Compo
	SessionID string
	View      *game.BoardView
	Delays    game.Delays
	Error     string

	onUpdate func()
}

func (s *Session) OnAppUpdate(ctx app.Context) {
	klog.Infof("Session component: App update available, not reloading not to interrupt the game...")
}

func (s *Session) OnMount(ctx app.Context) {
	klog.Infof("Session component: OnMount called")
	s.View = State.Remote
	s.onUpdate = func() {
		ctx.Dispatch(func(ctx app.Context) {
			s.View = State.Remote
			s.Delays = State.RemoteDelays
			s.Error = State.Error
		})
	}
	State.Listeners["session"] = s.onUpdate
}

func (s *Session) OnDismount() {
	klog.Infof("Session component: OnDismount called")
	delete(State.Listeners, "session")
	State.Disconnect()
}

func (s *Session) OnNav(ctx app.Context) {
	if app.IsServer {
		return
	}
	path := app.Window().URL().Path
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	klog.Infof("Session component: Navigated to %s, parts: %v", path, parts)
	if len(parts) >= 2 && parts[0] == "session" {
		s.SessionID = parts[1]
	}

	if s.SessionID == "" {
		s.Error = "No session ID provided"
		klog.Errorf("Session component: Error: %s", s.Error)
		return
	}

	if State.Conn == nil || State.SessionID != s.SessionID {
		if err := State.ConnectWS(s.SessionID); err != nil {
			s.Error = fmt.Sprintf("Failed to connect to the game: %v", err)
			klog.Errorf("Session component: Error connecting: %v", err)
		}
	}
}

func (s *Session) onSlotClick(ctx app.Context, slot int) {
	State.SendClick(slot)
}

func (s *Session) onNewGame(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.SendReset()
}

func (s *Session) Render() app.UI {
	if s.Error != "" {
		return app.Main().Class("container").Body(
			&TopBar{},
			app.Article().Body(
				app.H2().Text("Game Error"),
				app.P().Style("color", "red").Text(s.Error),
				app.A().Href("/").Text("Return to Home"),
			),
		)
	}

	var content []app.UI
	if s.View == nil {
		content = []app.UI{app.Div().Aria("busy", "true").Text("Connecting to game...")}
	} else {
		content = []app.UI{
			app.P().Body(
				app.Text("Share this page to play together: "),
				app.Code().Text(s.SessionID),
			),
			renderScore(*s.View),
			renderBoard(*s.View, s.Delays, s.onSlotClick),
			app.Button().Class("secondary").OnClick(s.onNewGame).Text("New game"),
		}
	}

	return app.Main().Class("container").Body(
		append([]app.UI{&TopBar{}}, content...)...,
	)
}
