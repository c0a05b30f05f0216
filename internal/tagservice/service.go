// Package tagservice runs the full tag pipeline over a vault: collect notes,
// aggregate front-matter tags, fold in inline tags and normalise.
package tagservice

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/tagscan/internal/inline"
	"github.com/starford/tagscan/internal/tags"
	"github.com/starford/tagscan/internal/vault"
)

// Service coordinates the collector, aggregator and inline scanner.
type Service struct {
	root    string
	ext     string
	workers int
	scanner inline.Scanner
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithExtension sets the note extension (default ".md").
func WithExtension(ext string) Option {
	return func(s *Service) { s.ext = ext }
}

// WithWorkers bounds the number of notes parsed concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

// WithScanner sets the inline scanner used when inline tags are requested.
func WithScanner(sc inline.Scanner) Option {
	return func(s *Service) { s.scanner = sc }
}

// WithLogger sets the logger for inline scan warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// New creates a service over an already resolved vault root.
func New(root string, opts ...Option) *Service {
	s := &Service{
		root:    root,
		ext:     vault.DefaultExt,
		scanner: inline.Ripgrep{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the vault root.
func (s *Service) Root() string { return s.root }

// Extension returns the note extension.
func (s *Service) Extension() string { return s.ext }

// Raw returns the merged tag set before '#' stripping. Front-matter tags are
// always included; inline tokens only when withInline is set.
func (s *Service) Raw(ctx context.Context, withInline bool) (*tags.Set, error) {
	paths := vault.Collect(s.root, s.ext)
	s.logger.Debug("collected notes", slog.String("root", s.root), slog.Int("count", len(paths)))

	set := tags.Aggregate(ctx, paths, s.workers)

	if withInline {
		if err := inline.Fold(ctx, s.scanner, s.root, set, s.logger); err != nil {
			return nil, fmt.Errorf("inline scan: %w", err)
		}
	}
	return set, nil
}

// Collect returns the sorted, deduplicated tags with leading '#' removed.
func (s *Service) Collect(ctx context.Context, withInline bool) ([]string, error) {
	set, err := s.Raw(ctx, withInline)
	if err != nil {
		return nil, err
	}
	return set.Normalized().Slice(), nil
}
