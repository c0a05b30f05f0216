package internal

import (
	"io"

	"github.com/starford/tagscan/internal/inline"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config  *Config
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	scanner inline.Scanner
	watch   bool
	version string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithOutput sets where tags are printed (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.stdout = w
	}
}

// WithInput sets the stream the MCP server reads requests from (default
// os.Stdin).
func WithInput(r io.Reader) Option {
	return func(a *application) {
		a.stdin = r
	}
}

// WithLogOutput sets where logs are written (default os.Stderr).
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.stderr = w
	}
}

// WithScanner overrides the inline scanner built from the config.
func WithScanner(s inline.Scanner) Option {
	return func(a *application) {
		a.scanner = s
	}
}

// WithWatch keeps Run alive after the initial listing, printing tags as
// they first appear in changed notes.
func WithWatch(enabled bool) Option {
	return func(a *application) {
		a.watch = enabled
	}
}

// WithVersion sets the version reported by the MCP server.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}
