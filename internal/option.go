package internal

import (
	"io"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	console io.Writer
	version string
	now     func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithConsole sets where console log lines go. Defaults to stderr.
func WithConsole(w io.Writer) Option {
	return func(a *application) {
		a.console = w
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithClock overrides the clock used to name the log file.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}
