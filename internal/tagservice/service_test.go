package tagservice

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"reflect"
	"testing"

	"github.com/starford/tagscan/internal/inline"
	"github.com/starford/tagscan/internal/testutil"
)

type fakeScanner struct {
	lines []string
	err   error
	calls int
}

func (f *fakeScanner) Scan(context.Context, string) (iter.Seq2[string, error], error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return func(yield func(string, error) bool) {
		for _, l := range f.lines {
			if !yield(l, nil) {
				return
			}
		}
	}, nil
}

func newService(t *testing.T, root string, sc inline.Scanner) *Service {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(root, WithScanner(sc), WithWorkers(2), WithLogger(logger))
}

const workNote = "---\ntags: [work, \"idea \"]\n---\nSee #work/urgent for details\n"

func TestCollect_FrontmatterOnly(t *testing.T) {
	root := testutil.Vault(t, map[string]string{"note.md": workNote})
	sc := &fakeScanner{lines: []string{"#never"}}

	got, err := newService(t, root, sc).Collect(context.Background(), false)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"idea", "work"}) {
		t.Errorf("tags = %v, want [idea work]", got)
	}
	if sc.calls != 0 {
		t.Errorf("scanner called %d times with inline disabled", sc.calls)
	}
}

func TestCollect_WithInline(t *testing.T) {
	root := testutil.Vault(t, map[string]string{"note.md": workNote})
	sc := &fakeScanner{lines: []string{"#work/urgent", "#work", "##idea"}}

	got, err := newService(t, root, sc).Collect(context.Background(), true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"idea", "work", "work/urgent"}) {
		t.Errorf("tags = %v", got)
	}
}

func TestCollect_BuiltinScanner(t *testing.T) {
	root := testutil.Vault(t, map[string]string{
		"note.md":  workNote,
		"other.md": "---\ntags: project\n---\nalso #project here\n",
	})
	got, err := newService(t, root, inline.Builtin{Ext: ".md"}).Collect(context.Background(), true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	want := []string{"idea", "project", "work", "work/urgent"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tags = %v, want %v", got, want)
	}
}

func TestCollect_ScannerLaunchFailure(t *testing.T) {
	root := testutil.Vault(t, map[string]string{"note.md": workNote})
	boom := errors.New("no rg")
	_, err := newService(t, root, &fakeScanner{err: boom}).Collect(context.Background(), true)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped boom", err)
	}
}

func TestRaw_KeepsHashes(t *testing.T) {
	root := testutil.Vault(t, map[string]string{"note.md": "---\ntags: [project]\n---\n"})
	set, err := newService(t, root, &fakeScanner{lines: []string{"#project"}}).Raw(context.Background(), true)
	if err != nil {
		t.Fatalf("Raw: %v", err)
	}
	if !reflect.DeepEqual(set.Slice(), []string{"#project", "project"}) {
		t.Errorf("raw = %v", set.Slice())
	}
}

func TestCollect_EmptyVault(t *testing.T) {
	got, err := newService(t, t.TempDir(), &fakeScanner{}).Collect(context.Background(), true)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("tags = %v, want none", got)
	}
}
