package main

import (
	"flag"
	"os"

	"github.com/janpfeifer/GoMemory/internal/frontend"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

func main() {
	// Initialize klog for WASM, forcing logs to stderr (console)
	fs := flag.NewFlagSet("klog", flag.ContinueOnError)
	klog.InitFlags(fs)
	fs.Set("logtostderr", "true")
	klog.SetOutput(os.Stderr)
	klog.Infof("WASM started!")

	// Root route runs the game locally, in the browser.
	app.Route("/", func() app.Composer { return &frontend.Home{} })

	// Session route for a game hosted by the server.
	app.RouteWithRegexp("^/session/.*", func() app.Composer { return &frontend.Session{} })

	// Initialize the global app state manager, which deals the local board.
	frontend.InitState()

	// When building for WEB (GOOS=js GOARCH=wasm), app.Run() executes the frontend logic
	app.RunWhenOnBrowser()
}
