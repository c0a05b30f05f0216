package tags

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/starford/tagscan/internal/frontmatter"
)

// ParseFunc returns the front-matter tags of one note.
type ParseFunc func(path string) ([]string, error)

type fileResult struct {
	tags []string
	err  error
}

// Aggregate parses every path on at most workers goroutines and merges the
// tags into one set. A file that fails to read or parse contributes nothing;
// its error is dropped. workers <= 0 means GOMAXPROCS.
func Aggregate(ctx context.Context, paths []string, workers int) *Set {
	return AggregateWith(ctx, paths, workers, frontmatter.ParseFile)
}

// AggregateWith is Aggregate with a custom per-file parser.
func AggregateWith(ctx context.Context, paths []string, workers int, parse ParseFunc) *Set {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]fileResult, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, p := range paths {
		g.Go(func() error {
			if gCtx.Err() != nil {
				results[i].err = gCtx.Err()
				return nil
			}
			t, err := parse(p)
			results[i] = fileResult{tags: t, err: err}
			return nil
		})
	}
	_ = g.Wait()

	set := NewSet()
	for _, r := range results {
		if r.err != nil {
			continue
		}
		set.Add(r.tags...)
	}
	return set
}
