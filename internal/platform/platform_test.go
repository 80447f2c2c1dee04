package platform

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tmorell/inkwell/pkg/core"
)

func TestFindRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".inkwell"), 0o755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "posts", "java")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := FindRoot(nested)
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Errorf("FindRoot(%q) = %q, want %q", nested, got, root)
	}
}

func TestFindRootSiteManifest(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "site.yaml"), []byte("title: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := FindRoot(root)
	if err != nil {
		t.Fatal(err)
	}
	if got != root {
		t.Errorf("got %q, want %q", got, root)
	}
}

func TestResolveVaultPathTrustsTempPaths(t *testing.T) {
	inside := t.TempDir()
	if got := ResolveVaultPath(inside, true); got != filepath.Clean(inside) {
		t.Errorf("temp path should pass through, got %q", got)
	}

	got := ResolveVaultPath("/home/someone/vault", true)
	if !strings.HasPrefix(got, filepath.Join(os.TempDir(), "inkwell-dev")) {
		t.Errorf("real path should be sandboxed, got %q", got)
	}
}

func TestNewCreatesVault(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "vault")

	svc, err := New(dir, WithAutoInit(true), WithVersioning(false))
	if err != nil {
		t.Fatal(err)
	}

	date, err := core.ParseDate("2024-02-01")
	if err != nil {
		t.Fatal(err)
	}
	post := core.Post{
		ID:   "hello",
		Body: "First.\n",
		Matter: core.FrontMatter{
			Title:  "Hello",
			Date:   date,
			Layout: "PostLayout",
		},
	}
	if err := svc.SavePost(context.Background(), post); err != nil {
		t.Fatal(err)
	}

	got, err := svc.GetPost(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got.Matter.Title != "Hello" {
		t.Errorf("round-trip title = %q", got.Matter.Title)
	}
}

func TestNewMustExist(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	if _, err := New(missing, WithMustExist(true), WithVersioning(false)); err == nil {
		t.Fatal("expected error opening a missing vault")
	}
}

func TestNewReadOnly(t *testing.T) {
	dir := t.TempDir()

	svc, err := New(dir, WithReadOnly(true), WithVersioning(false))
	if err != nil {
		t.Fatal(err)
	}

	date, err := core.ParseDate("2024-02-01")
	if err != nil {
		t.Fatal(err)
	}
	post := core.Post{
		ID:     "hello",
		Matter: core.FrontMatter{Title: "Hello", Date: date, Layout: "PostLayout"},
	}
	err = svc.SavePost(context.Background(), post)
	if !errors.Is(err, core.ErrReadOnly) {
		t.Fatalf("expected ErrReadOnly, got %v", err)
	}
}

func TestInitUnknownAdapter(t *testing.T) {
	if _, err := Init(t.TempDir(), WithAdapter("s3")); err == nil {
		t.Fatal("expected error for unknown adapter")
	}
}
