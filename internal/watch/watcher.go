// Package watch follows a vault with fsnotify and reports tags the first time
// they appear in a changed note.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/tagscan/internal/frontmatter"
	"github.com/starford/tagscan/internal/tags"
	"github.com/starford/tagscan/internal/vault"
)

// TagCallback is called once for every tag not seen before. path is the
// note the tag was found in.
type TagCallback func(tag, path string)

// Run watches root and every directory below it until ctx is cancelled. On
// each create or write of a note with extension ext, the note's front-matter
// tags are normalised and checked against seen; new ones are added and
// reported through cb.
//
// Directories created while running are added to the watch list and any
// notes already inside them are processed.
func Run(ctx context.Context, root, ext string, seen *tags.Set, logger *slog.Logger, cb TagCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			info, statErr := os.Stat(ev.Name)
			if statErr != nil {
				continue
			}

			if info.IsDir() {
				if ev.Op&fsnotify.Create == 0 {
					continue
				}
				if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
					logger.Warn("watcher: add new dir failed",
						slog.String("path", ev.Name),
						slog.String("error", addErr.Error()))
				} else {
					logger.Debug("watcher: watching new dir", slog.String("path", ev.Name))
				}
				scanNewDir(ev.Name, ext, seen, logger, cb)
				continue
			}

			// Same rule as vault.Collect: regular files (or links to them) only.
			if filepath.Ext(ev.Name) != ext || !info.Mode().IsRegular() {
				continue
			}
			processNote(ev.Name, seen, logger, cb)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// processNote parses one note and reports its unseen tags.
func processNote(path string, seen *tags.Set, logger *slog.Logger, cb TagCallback) {
	found, err := frontmatter.ParseFile(path)
	if err != nil {
		logger.Debug("watcher: skip note", slog.String("path", path), slog.String("error", err.Error()))
		return
	}
	for _, t := range found {
		t = tags.Normalize(t)
		if t == "" || !seen.AddNew(t) {
			continue
		}
		logger.Debug("watcher: new tag", slog.String("tag", t), slog.String("path", path))
		if cb != nil {
			cb(t, path)
		}
	}
}

// scanNewDir processes notes already present in a newly created directory.
func scanNewDir(dir, ext string, seen *tags.Set, logger *slog.Logger, cb TagCallback) {
	for _, p := range vault.Collect(dir, ext) {
		processNote(p, seen, logger, cb)
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
