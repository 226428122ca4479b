package frontend

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

type TopBar struct {
	app.Compo
}

func (t *TopBar) onBannerClick(ctx app.Context, e app.Event) {
	ctx.Navigate("/")
}

func (t *TopBar) Render() app.UI {
	return app.Nav().Body(
		app.Ul().Body(
			app.Li().Body(
				app.Img().
					Src("/web/images/banner.png").
					Alt("Food Memory").
					Style("height", "2rem").
					Style("vertical-align", "middle").
					Style("cursor", "pointer").
					Style("border-radius", "8px").
					OnClick(t.onBannerClick),
			),
			app.Li().Body(app.Strong().Text("Food Memory")),
		),
		app.Ul().Body(
			app.Li().Body(app.A().Href("/").Text("Local game")),
		),
	)
}
