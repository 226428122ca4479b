package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/janpfeifer/GoMemory/internal/config"
	"github.com/janpfeifer/GoMemory/internal/frontend"
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"k8s.io/klog/v2"
)

// Run starts the server and blocks until the context is canceled.
//
// If started is not nil, the ServerState is sent on it once the server is listening,
// with Address set to the actual address (useful when cfg.Addr is empty or uses port 0).
func Run(ctx context.Context, cfg config.Config, started chan<- *ServerState) error {
	// Initialize the client state so pages can be prerendered on the server.
	frontend.InitState()

	serverState := NewServerState(cfg)

	// Register go-app routes so the server knows how to prerender them
	app.Route("/", func() app.Composer { return &frontend.Home{} })
	app.RouteWithRegexp("^/session/.*", func() app.Composer { return &frontend.Session{} })

	// The web assets and the compiled webassembly
	// are served natively by the go-app framework
	h := &app.Handler{
		Name:        "Food Memory",
		Description: "Find all the pairs of food cards",
		Version:     game.Version,
		Styles: []string{
			"/web/css/pico.min.css",    // Load pico.css
			"/web/css/animate.min.css", // Flip, success and completion animations
			"/web/css/main.css",        // Custom styles
		},
	}

	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:0"
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	serverState.Address = listener.Addr().String()

	srv := &http.Server{
		Handler: serverState.Router(h),
	}

	go func() {
		klog.Infof("Server started on %s", serverState.Address)
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			klog.Errorf("Server error: %v", err)
		}
	}()
	if started != nil {
		started <- serverState
	}

	<-ctx.Done()

	// Graceful shutdown with 5 second timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	klog.Infof("Shutting down server...")
	serverState.CloseAll()
	return srv.Shutdown(shutdownCtx)
}

// Router builds the HTTP routes; appHandler serves the go-app pages.
func (s *ServerState) Router(appHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Post("/api/sessions", s.handleNewSession)
	r.Get("/ws", s.HandleWS)

	// Static files: images, css, ...
	r.Handle("/web/*", http.StripPrefix("/web/", http.FileServer(http.Dir(s.cfg.WebDir))))
	r.Handle("/*", appHandler)
	return r
}

func (s *ServerState) handleNewSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.NewSession()
	if errors.Is(err, ErrTooManySessions) {
		klog.Warningf("Refusing new session: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, game.ErrorMessage{Message: "too many sessions, try again later"})
		return
	}
	if err != nil {
		klog.Errorf("Failed to create session: %v", err)
		writeJSON(w, http.StatusInternalServerError, game.ErrorMessage{Message: "failed to create session"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": session.ID})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Errorf("Failed to write response: %v", err)
	}
}

// requestLogger logs every request with klog, tagged with chi's request id.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		klog.V(1).Infof("[%s] %s %s -> %d (%s)", chimw.GetReqID(r.Context()), r.Method, r.URL.Path, ww.Status(), time.Since(start))
	})
}
