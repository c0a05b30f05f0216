package inline

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"os/exec"
	"strings"

	"github.com/starford/tagscan/internal/apperr"
)

// DefaultBinary is the ripgrep executable looked up on PATH.
const DefaultBinary = "rg"

// Ripgrep scans with an external ripgrep process.
type Ripgrep struct {
	// Binary is the executable to run; empty means DefaultBinary.
	Binary string
}

// Args returns the ripgrep command line used for root.
func (r Ripgrep) Args(root string) []string {
	return []string{"--pcre2", "-o", Pattern, "--no-filename", root}
}

// Scan starts ripgrep and streams its stdout. The exit status is not
// inspected: ripgrep exits 1 when nothing matches.
func (r Ripgrep) Scan(ctx context.Context, root string) (iter.Seq2[string, error], error) {
	bin := r.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, bin, r.Args(root)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: stdout pipe: %w", apperr.ErrScannerUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %w", apperr.ErrScannerUnavailable, bin, err)
	}

	return func(yield func(string, error) bool) {
		drained := false
		defer func() {
			// Kill a child we stopped reading from so Wait cannot block on a
			// full pipe.
			if !drained {
				_ = cmd.Process.Kill()
			}
			_ = cmd.Wait()
		}()

		sc := bufio.NewScanner(stdout)
		sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			if !yield(line, nil) {
				return
			}
		}
		if err := sc.Err(); err != nil {
			yield("", fmt.Errorf("inline: read rg output: %w", err))
			return
		}
		drained = true
	}, nil
}
