package fs_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tmorell/inkwell/pkg/core"
)

// waitEvent blocks until an event for id with the wanted type arrives.
// Unrelated events (e.g. duplicate creates from editors) are skipped.
func waitEvent(t *testing.T, events <-chan core.Event, wantType core.EventType, wantID string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s %s", wantType, wantID)
		case e, ok := <-events:
			if !ok {
				t.Fatalf("event channel closed while waiting for %s %s", wantType, wantID)
			}
			if e.ID == wantID && e.Type == wantType {
				return
			}
		}
	}
}

func TestWatchLifecycle(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, path := setupRepo(t)
	mustInit(t, repo)

	events, err := repo.Watch(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	// Give the watcher a moment to register the directory tree.
	time.Sleep(200 * time.Millisecond)

	file := filepath.Join(path, "draft.md")
	if err := os.WriteFile(file, []byte("---\ntitle: Draft\n---\nv1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events, core.EventCreate, "draft")

	if err := os.WriteFile(file, []byte("---\ntitle: Draft\n---\nv2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events, core.EventModify, "draft")

	if err := os.Remove(file); err != nil {
		t.Fatal(err)
	}
	waitEvent(t, events, core.EventDelete, "draft")
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, path := setupRepo(t)
	mustInit(t, repo)

	events, err := repo.Watch(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	// Unsupported extension: no event expected.
	if err := os.WriteFile(filepath.Join(path, "image.png"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	// A real post afterwards; the first event to arrive must be for it.
	if err := os.WriteFile(filepath.Join(path, "post.md"), []byte("---\ntitle: P\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if e.ID != "post" {
			t.Fatalf("expected event for post, got %s %s", e.Type, e.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for post event")
	}
}

func TestWatchPatternFilter(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo, path := setupRepo(t)
	mustInit(t, repo)
	if err := os.MkdirAll(filepath.Join(path, "posts"), 0o755); err != nil {
		t.Fatal(err)
	}

	events, err := repo.Watch(ctx, "posts/**/*.md")
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(path, "outside.md"), []byte("---\ntitle: O\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(path, "posts", "inside.md"), []byte("---\ntitle: I\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case e := <-events:
		if e.ID != "posts/inside" {
			t.Fatalf("pattern should exclude %s", e.ID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for posts/inside event")
	}
}

// A save made through the repository must stay invisible to Reconcile even
// after the index has been persisted: reloading the on-disk index must not
// clobber the fresher in-memory entry from the save.
func TestReconcileIgnoresOwnSaves(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	mustInit(t, repo)

	if err := repo.Save(ctx, core.Document{ID: "post", Content: "v1\n", Metadata: core.Metadata{"title": "P"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.List(ctx); err != nil { // persist the index
		t.Fatal(err)
	}
	if err := repo.Save(ctx, core.Document{ID: "post", Content: "v2\n", Metadata: core.Metadata{"title": "P"}}); err != nil {
		t.Fatal(err)
	}

	events, err := repo.Reconcile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range events {
		t.Errorf("unexpected event after internal save: %s %s", e.Type, e.ID)
	}
}

func TestReconcileDetectsOfflineChanges(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	mustInit(t, repo)

	if err := repo.Save(ctx, core.Document{ID: "stays", Content: "x\n", Metadata: core.Metadata{"title": "S"}}); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.List(ctx); err != nil { // prime the index
		t.Fatal(err)
	}

	// Changes made behind the repository's back.
	if err := os.WriteFile(filepath.Join(path, "appeared.md"), []byte("---\ntitle: A\n---\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(path, "stays.md")); err != nil {
		t.Fatal(err)
	}

	events, err := repo.Reconcile(ctx)
	if err != nil {
		t.Fatal(err)
	}

	var sawCreate, sawDelete bool
	for _, e := range events {
		if e.ID == "appeared" && e.Type == core.EventCreate {
			sawCreate = true
		}
		if e.ID == "stays" && e.Type == core.EventDelete {
			sawDelete = true
		}
	}
	if !sawCreate {
		t.Error("reconcile missed the new file")
	}
	if !sawDelete {
		t.Error("reconcile missed the deletion")
	}
}
