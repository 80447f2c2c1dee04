package fs_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tmorell/inkwell/pkg/adapters/fs"
	"github.com/tmorell/inkwell/pkg/core"
)

// setupRepo creates a repository rooted in a fresh temp directory.
func setupRepo(t *testing.T, opts ...func(*fs.Config)) (*fs.Repository, string) {
	t.Helper()

	vaultPath := filepath.Join(t.TempDir(), "vault")
	cfg := fs.Config{
		Path:     vaultPath,
		AutoInit: true,
		Gitless:  true, // gitless by default, git-backed tests override
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	repo := fs.NewRepository(cfg)
	return repo, vaultPath
}

func mustInit(t *testing.T, repo *fs.Repository) {
	t.Helper()
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
}

func TestInitialize(t *testing.T) {
	t.Run("Creates Directory if Missing", func(t *testing.T) {
		repo, path := setupRepo(t)
		mustInit(t, repo)

		if _, err := os.Stat(path); os.IsNotExist(err) {
			t.Errorf("expected directory to be created at %s", path)
		}
	})

	t.Run("Fails if MustExist and Missing", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.MustExist = true
			c.AutoInit = false
		})
		if err := repo.Initialize(context.Background()); err == nil {
			t.Fatal("expected error for missing vault")
		}
	})

	t.Run("ReadOnly Requires Existing Vault", func(t *testing.T) {
		repo, _ := setupRepo(t, func(c *fs.Config) {
			c.ReadOnly = true
		})
		if err := repo.Initialize(context.Background()); err == nil {
			t.Fatal("expected error: read-only vault must exist")
		}
	})
}

func TestSaveAndGet(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	mustInit(t, repo)

	doc := core.Document{
		ID:      "posts/java-streams",
		Content: "Streams are lazy.\n",
		Metadata: core.Metadata{
			"title":  "Streams",
			"date":   "2024-05-01",
			"layout": "PostLayout",
		},
	}
	if err := repo.Save(ctx, doc); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(path, "posts", "java-streams.md")); err != nil {
		t.Errorf("expected file on disk: %v", err)
	}

	got, err := repo.Get(ctx, "posts/java-streams")
	if err != nil {
		t.Fatal(err)
	}
	if got.Content != doc.Content {
		t.Errorf("content = %q", got.Content)
	}
	if got.Metadata["title"] != "Streams" {
		t.Errorf("title = %v", got.Metadata["title"])
	}
}

func TestGetResolvesMDX(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	mustInit(t, repo)

	content := "---\ntitle: MDX Post\n---\n<Aside>fancy</Aside>\n"
	if err := os.WriteFile(filepath.Join(path, "fancy.mdx"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "fancy")
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata["title"] != "MDX Post" {
		t.Errorf("title = %v", got.Metadata["title"])
	}
}

func TestGetNotFound(t *testing.T) {
	repo, _ := setupRepo(t)
	mustInit(t, repo)

	_, err := repo.Get(context.Background(), "missing")
	if !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)
	mustInit(t, repo)

	for _, id := range []string{"a", "b", "nested/c"} {
		doc := core.Document{
			ID:       id,
			Content:  "body\n",
			Metadata: core.Metadata{"title": id},
		}
		if err := repo.Save(ctx, doc); err != nil {
			t.Fatal(err)
		}
	}

	docs, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("expected 3 documents, got %d", len(docs))
	}

	// Second listing is served from the index cache; results must agree.
	cached, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(cached) != 3 {
		t.Fatalf("cached listing returned %d documents", len(cached))
	}
	for _, d := range cached {
		if d.Metadata["title"] == nil {
			t.Errorf("cached listing lost metadata for %s", d.ID)
		}
	}
}

func TestListFailsOnUnparseableFile(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	mustInit(t, repo)

	bad := "---\ntitle: [unclosed\n"
	if err := os.WriteFile(filepath.Join(path, "broken.md"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.List(ctx); err == nil {
		t.Fatal("expected listing to surface the parse error")
	}
}

func TestReadOnlyRejectsWrites(t *testing.T) {
	ctx := context.Background()

	// Build the vault first with a writable repository.
	writable, path := setupRepo(t)
	mustInit(t, writable)
	if err := writable.Save(ctx, core.Document{ID: "keep", Content: "x\n"}); err != nil {
		t.Fatal(err)
	}

	repo := fs.NewRepository(fs.Config{Path: path, Gitless: true, ReadOnly: true})
	mustInit(t, repo)

	if err := repo.Save(ctx, core.Document{ID: "nope"}); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Save should return ErrReadOnly, got %v", err)
	}
	if err := repo.Delete(ctx, "keep"); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Delete should return ErrReadOnly, got %v", err)
	}
	if _, err := repo.Begin(ctx); !errors.Is(err, core.ErrReadOnly) {
		t.Errorf("Begin should return ErrReadOnly, got %v", err)
	}

	// Reads still work.
	if _, err := repo.Get(ctx, "keep"); err != nil {
		t.Errorf("Get should work read-only: %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	repo, path := setupRepo(t)
	mustInit(t, repo)

	if err := repo.Save(ctx, core.Document{ID: "gone", Content: "x\n"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, "gone"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(path, "gone.md")); !os.IsNotExist(err) {
		t.Errorf("file should be removed, stat err = %v", err)
	}
}

func TestGitBackedSave(t *testing.T) {
	if !fs.IsGitInstalled() {
		t.Skip("git not installed")
	}
	t.Setenv("GIT_AUTHOR_NAME", "test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")

	ctx := context.Background()
	repo, _ := setupRepo(t, func(c *fs.Config) {
		c.Gitless = false
	})
	mustInit(t, repo)

	msg := "docs(posts): add hello"
	ctx = context.WithValue(ctx, core.ChangeReasonKey, msg)
	if err := repo.Save(ctx, core.Document{
		ID:       "hello",
		Content:  "hi\n",
		Metadata: core.Metadata{"title": "Hello"},
	}); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Get(ctx, "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got.Metadata["title"] != "Hello" {
		t.Errorf("title = %v", got.Metadata["title"])
	}
}
