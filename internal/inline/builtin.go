package inline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"

	"github.com/starford/tagscan/internal/vault"
)

// tagRe is Pattern rewritten for RE2: the whitespace look-behind becomes a
// consumed \s and the tag is the first submatch.
var tagRe = regexp.MustCompile(`\s(#[^\s#|()\[\]"']+(?:/[^\s#|()\[\]"']+)*)`)

// Builtin scans note files in-process with the same pattern as Ripgrep.
// Unlike ripgrep it only reads files with the note extension.
type Builtin struct {
	Ext string
}

// Scan never fails to start; per-file read errors are yielded.
func (b Builtin) Scan(ctx context.Context, root string) (iter.Seq2[string, error], error) {
	paths := vault.Collect(root, b.Ext)
	return func(yield func(string, error) bool) {
		for _, p := range paths {
			if ctx.Err() != nil {
				yield("", ctx.Err())
				return
			}
			if !scanFile(p, yield) {
				return
			}
		}
	}, nil
}

// scanFile yields every tag in the file at p. It returns false when the
// consumer stopped.
func scanFile(p string, yield func(string, error) bool) bool {
	f, err := os.Open(p)
	if err != nil {
		return yield("", fmt.Errorf("inline: open %s: %w", p, err))
	}
	defer f.Close()

	br := bufio.NewReader(f)
	for {
		line, err := br.ReadString('\n')
		for _, m := range MatchLine(line) {
			if !yield(m, nil) {
				return false
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true
			}
			return yield("", fmt.Errorf("inline: read %s: %w", p, err))
		}
	}
}

// MatchLine returns the inline tags in one line of text. A tag at the very
// start of the line has no preceding whitespace and is not matched.
func MatchLine(line string) []string {
	matches := tagRe.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[1])
	}
	return out
}
