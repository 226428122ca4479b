// Package config holds the server settings, read from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/janpfeifer/GoMemory/internal/game"
)

// Config of the server.
type Config struct {
	// Addr to listen on. Empty picks a free port on localhost.
	Addr string `env:"MEMORY_ADDR"`

	// WebDir holds the static files served under /web/.
	WebDir string `env:"MEMORY_WEB_DIR" envDefault:"web"`

	FlipDelay       time.Duration `env:"MEMORY_FLIP_DELAY" envDefault:"200ms"`
	MatchDelay      time.Duration `env:"MEMORY_MATCH_DELAY" envDefault:"500ms"`
	CompletionDelay time.Duration `env:"MEMORY_COMPLETION_DELAY" envDefault:"1s"`
	ResetDelay      time.Duration `env:"MEMORY_RESET_DELAY" envDefault:"4s"`

	// SessionIdleTimeout is how long a hosted session survives without connections.
	SessionIdleTimeout time.Duration `env:"MEMORY_SESSION_IDLE_TIMEOUT" envDefault:"5m"`

	// MaxSessions is the most hosted sessions kept at once.
	MaxSessions int `env:"MEMORY_MAX_SESSIONS" envDefault:"1000"`

	// PingInterval between websocket keepalive pings.
	PingInterval time.Duration `env:"MEMORY_PING_INTERVAL" envDefault:"30s"`
}

// Load reads the optional dotenv files and then parses the environment.
// Variables already set in the environment take precedence over the files.
func Load(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}
	return Parse()
}

// Parse reads the configuration from environment variables only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the durations are usable.
func (c Config) Validate() error {
	for name, d := range map[string]time.Duration{
		"MEMORY_FLIP_DELAY":           c.FlipDelay,
		"MEMORY_MATCH_DELAY":          c.MatchDelay,
		"MEMORY_COMPLETION_DELAY":     c.CompletionDelay,
		"MEMORY_RESET_DELAY":          c.ResetDelay,
		"MEMORY_SESSION_IDLE_TIMEOUT": c.SessionIdleTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, d)
		}
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("MEMORY_MAX_SESSIONS must be positive, got %d", c.MaxSessions)
	}
	if c.PingInterval <= 0 {
		return fmt.Errorf("MEMORY_PING_INTERVAL must be positive, got %s", c.PingInterval)
	}
	return nil
}

// Delays returns the game presentation delays.
func (c Config) Delays() game.Delays {
	return game.Delays{
		Flip:       c.FlipDelay,
		Match:      c.MatchDelay,
		Completion: c.CompletionDelay,
		Reset:      c.ResetDelay,
	}
}
