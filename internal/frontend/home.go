package frontend

import (
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Home is the landing page: a game played entirely in the browser.
type Home struct {
	app.Compo
	View   game.BoardView
	Delays game.Delays
	Error  string
}

func (h *Home) OnMount(ctx app.Context) {
	klog.V(1).Infof("Home: OnMount called")
	h.refresh()
	State.Listeners["home"] = func() {
		ctx.Dispatch(func(ctx app.Context) {
			h.refresh()
		})
	}
}

func (h *Home) OnDismount() {
	delete(State.Listeners, "home")
}

func (h *Home) OnAppUpdate(ctx app.Context) {
	klog.Infof("Home component: App update available, reloading...")
	ctx.Reload()
}

func (h *Home) refresh() {
	h.View, h.Delays = State.LocalView()
}

func (h *Home) onSlotClick(ctx app.Context, slot int) {
	klog.V(2).Infof("Home: click on slot %d", slot)
	State.ClickLocal(slot)
}

func (h *Home) onNewGame(ctx app.Context, e app.Event) {
	e.PreventDefault()
	State.ResetLocal()
}

func (h *Home) onPlayHosted(ctx app.Context, e app.Event) {
	e.PreventDefault()
	go func() {
		id, err := State.CreateSession()
		ctx.Dispatch(func(ctx app.Context) {
			if err != nil {
				klog.Errorf("Home: %v", err)
				h.Error = "Could not create a hosted game, please try again."
				return
			}
			ctx.Navigate("/session/" + id)
		})
	}()
}

func (h *Home) Render() app.UI {
	var errorUI app.UI = app.Text("")
	if h.Error != "" {
		errorUI = app.P().Style("color", "red").Text(h.Error)
	}

	return app.Main().Class("container").Body(
		&TopBar{},
		errorUI,
		renderScore(h.View),
		renderBoard(h.View, h.Delays, h.onSlotClick),
		app.Div().Class("grid").Body(
			app.Button().Class("secondary").OnClick(h.onNewGame).Text("New game"),
			app.Button().OnClick(h.onPlayHosted).Text("Play hosted game"),
		),
	)
}
