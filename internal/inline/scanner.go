// Package inline finds hash-prefixed tags written in note bodies.
package inline

import (
	"context"
	"iter"
	"log/slog"

	"github.com/starford/tagscan/internal/tags"
)

// Pattern matches a '#'-prefixed token that follows whitespace. Segments
// exclude whitespace, '#', '|', parentheses, brackets and quotes, and may be
// joined with '/' for nested tags such as #a/b/c. It needs PCRE2 look-behind.
const Pattern = `(?<=\s)#[^\s\#\|\(\)\[\]\"\']+(?:\/[^\s\#\|\(\)\[\]\"\']+)*`

// Scanner produces the inline tags found under a vault root, one raw
// "#token" per item. Setup failures are returned directly; errors reading
// the stream are yielded and do not end the scan.
type Scanner interface {
	Scan(ctx context.Context, root string) (iter.Seq2[string, error], error)
}

// Fold runs s over root and adds every produced token to set. Stream errors
// are logged as warnings and skipped.
func Fold(ctx context.Context, s Scanner, root string, set *tags.Set, logger *slog.Logger) error {
	seq, err := s.Scan(ctx, root)
	if err != nil {
		return err
	}
	for tag, err := range seq {
		if err != nil {
			logger.Warn("inline: scan error", slog.String("root", root), slog.String("error", err.Error()))
			continue
		}
		set.Add(tag)
	}
	return nil
}
