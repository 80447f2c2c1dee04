package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"

	"github.com/tmorell/inkwell/pkg/core"
)

// Watch starts a filesystem watcher and emits vault events matching the glob
// pattern (doublestar syntax, e.g. "**/*" or "posts/**/*.md") until ctx is done.
func (r *Repository) Watch(ctx context.Context, pattern string) (<-chan core.Event, error) {
	events := make(chan core.Event)
	worker := newWatchWorker(r, pattern, events)
	if err := worker.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

// recursiveAdd registers the vault directory tree with the fsnotify watcher.
// fsnotify does not watch recursively on its own.
func (r *Repository) recursiveAdd(watcher *fsnotify.Watcher) error {
	return filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == ".git" || d.Name() == r.config.SystemDir {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

// shouldIgnore filters out events that are not content changes:
// temp files from atomic writes, the system dir, git internals, unsupported
// extensions, and paths outside the subscription pattern.
func (r *Repository) shouldIgnore(event fsnotify.Event, pattern string) bool {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, TempFilePrefix) {
		return true
	}

	rel, err := filepath.Rel(r.Path, event.Name)
	if err != nil {
		return true
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if part == ".git" || part == r.config.SystemDir {
			return true
		}
	}

	ext := filepath.Ext(name)
	if _, ok := r.serializerFor(ext); !ok {
		// New directories carry no extension; the worker handles those
		// separately to extend the watch set.
		return true
	}

	if pattern != "" && pattern != "**/*" {
		if ok, err := doublestar.Match(pattern, rel); err != nil || !ok {
			return true
		}
	}

	return false
}

// mapEventType translates fsnotify ops to vault event types.
// Chmod-only events are noise and map to the empty type.
func (r *Repository) mapEventType(event fsnotify.Event) core.EventType {
	switch {
	case event.Has(fsnotify.Create):
		return core.EventCreate
	case event.Has(fsnotify.Write):
		return core.EventModify
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return core.EventDelete
	default:
		return ""
	}
}

// resolveID derives the document ID from an absolute event path.
func (r *Repository) resolveID(path string) (string, error) {
	rel, err := filepath.Rel(r.Path, path)
	if err != nil {
		return "", err
	}
	rel = filepath.ToSlash(rel)
	return idFor(rel, filepath.Ext(rel)), nil
}

// Reconcile rescans the vault and emits the events that were missed while the
// watcher was paused (e.g. during git operations). The metadata index is
// brought back in sync as a side effect.
func (r *Repository) Reconcile(ctx context.Context) ([]core.Event, error) {
	if err := r.cache.Load(); err != nil && r.config.Logger != nil {
		r.config.Logger.Debug("reconcile: cache load failed", "error", err)
	}

	var events []core.Event
	seen := make(map[string]bool)
	now := time.Now().Unix()

	err := filepath.WalkDir(r.Path, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			if d.Name() == ".git" || d.Name() == r.config.SystemDir {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), TempFilePrefix) {
			return nil
		}

		ext := filepath.Ext(d.Name())
		if _, ok := r.serializerFor(ext); !ok {
			return nil
		}

		relPath, err := filepath.Rel(r.Path, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)
		seen[relPath] = true

		info, err := d.Info()
		if err != nil {
			return nil
		}
		mtime := info.ModTime()

		if _, fresh := r.cache.Get(relPath, mtime); fresh {
			return nil
		}

		_, existed := r.cache.Entry(relPath)

		id := idFor(relPath, ext)
		doc, err := r.Get(ctx, id)
		if err != nil {
			// Unparseable mid-edit file: report and move on.
			if r.config.ErrorHandler != nil {
				r.config.ErrorHandler(err)
			}
			return nil
		}

		r.cache.Set(relPath, &indexEntry{
			ID:           id,
			Metadata:     doc.Metadata,
			LastModified: mtime,
		})

		eType := core.EventModify
		if !existed {
			eType = core.EventCreate
		}
		events = append(events, core.Event{Type: eType, ID: id, Timestamp: now})
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Entries that vanished from disk are deletions.
	var removed []string
	r.cache.Range(func(relPath string, entry *indexEntry) bool {
		if !seen[relPath] {
			removed = append(removed, relPath)
			events = append(events, core.Event{Type: core.EventDelete, ID: entry.ID, Timestamp: now})
		}
		return true
	})
	for _, relPath := range removed {
		r.cache.Delete(relPath)
	}

	if !r.config.ReadOnly {
		if err := r.cache.Save(); err != nil && r.config.Logger != nil {
			r.config.Logger.Debug("reconcile: cache save failed", "error", err)
		}
	}

	r.recordReconcile()
	return events, nil
}
