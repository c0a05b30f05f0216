// Package vault resolves the note directory and enumerates the notes in it.
package vault

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExt is the extension that marks a file as a note.
const DefaultExt = ".md"

// Resolve expands a leading "~", makes root absolute, follows any symlinks
// in it and checks that the result is an existing directory. The returned
// path is the real directory, so walkers and watchers descend into it.
func Resolve(root string) (string, error) {
	expanded, err := ExpandHome(root)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("vault: resolve root: %w", err)
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("vault: stat root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("vault: stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("vault: root is not a directory: %s", abs)
	}
	return abs, nil
}

// ExpandHome replaces a leading "~" or "~/" with the current user's home
// directory. "~user" forms are left untouched.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("vault: expand home: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// Collect walks root and returns every regular file whose extension is
// exactly ext, in lexical order. Entries that cannot be read are skipped and
// the walk itself never fails. A symlinked root is followed; symlinked
// directories below it are not.
func Collect(root, ext string) []string {
	if ext == "" {
		ext = DefaultExt
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	var out []string
	_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable directory: skip its subtree, keep walking.
			if d != nil && d.IsDir() && p != root {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || filepath.Ext(d.Name()) != ext {
			return nil
		}
		if !IsNote(p, d) {
			return nil
		}
		out = append(out, p)
		return nil
	})
	return out
}

// IsNote reports whether the entry at p is a regular file, following a
// symlink to its target.
func IsNote(p string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
