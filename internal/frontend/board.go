package frontend

import (
	"fmt"

	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// renderBoard renders the card grid. onSlot is called with the index of the clicked slot.
func renderBoard(view game.BoardView, delays game.Delays, onSlot func(ctx app.Context, slot int)) app.UI {
	if len(view.Slots) == 0 {
		return app.Div().Aria("busy", "true").Text("Shuffling cards...")
	}

	cards := make([]app.UI, 0, len(view.Slots))
	for _, slot := range view.Slots {
		cards = append(cards, renderSlot(slot, delays, onSlot))
	}

	area := app.Div().Class("game-area")
	if view.HasTag(game.TagCompletion) {
		area = area.Class("animate__animated").Class("animate__hinge")
	}
	return area.Body(cards...)
}

func renderSlot(slot game.SlotView, delays game.Delays, onSlot func(ctx app.Context, slot int)) app.UI {
	faceUp := slot.State != game.Hidden
	transition := fmt.Sprintf("%dms", delays.Flip.Milliseconds())

	card := app.Div().Class("card").DataSet("slot", slot.Index)
	if slot.HasTag(game.TagFlip) {
		card = card.Class("flip-vertical-right")
	}
	if slot.HasTag(game.TagSuccess) {
		card = card.Class("success").Class("animate__animated").Class("animate__jackInTheBox")
	}
	index := slot.Index
	card = card.OnClick(func(ctx app.Context, e app.Event) {
		e.PreventDefault()
		onSlot(ctx, index)
	})

	questionMark := app.Img().
		Class("card-img").
		Src(game.PlaceholderAsset).
		Alt("question mark").
		Style("transition-delay", transition)
	if faceUp {
		questionMark = questionMark.Class("hidden")
	}

	body := []app.UI{questionMark}
	if slot.Asset != "" {
		food := app.Img().
			Class("card-img").
			Src(slot.Asset).
			Alt(slot.Symbol+" svg").
			Style("transition-delay", transition)
		if !faceUp {
			food = food.Class("hidden")
		}
		body = append(body, food)
	}
	return card.Body(body...)
}

func renderScore(view game.BoardView) app.UI {
	text := fmt.Sprintf("Pairs found: %d / %d", view.Score, view.Pairs)
	if view.Completing {
		text = "All pairs found! Shuffling a new board..."
	}
	return app.P().Class("score").Text(text)
}
