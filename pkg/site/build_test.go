package site

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tmorell/inkwell/pkg/adapters/fs"
	"github.com/tmorell/inkwell/pkg/core"
)

func writePost(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestBuilder(t *testing.T, vault string) (*Builder, *core.Service) {
	t.Helper()
	repo := fs.NewRepository(fs.Config{Path: vault, Gitless: true})
	if err := repo.Initialize(context.Background()); err != nil {
		t.Fatal(err)
	}
	service := core.NewService(repo)
	cfg := Config{Title: "Test Site", Author: "Jane Doe", Output: "public"}
	return NewBuilder(service, cfg, vault, nil), service
}

const publishedPost = `---
title: Streams API in Practice
date: 2024-05-01
tags:
  - java
  - streams
summary: Collectors beyond toList.
layout: PostLayout
---

Grouping with ` + "`Collectors.groupingBy`" + ` keeps pipelines declarative.
`

const draftPost = `---
title: Streams API in Practice
date: 2024-05-01
tags:
  - java
  - streams
summary: Collectors beyond toList.
draft: true
layout: PostLayout
---

Grouping with ` + "`Collectors.groupingBy`" + ` keeps pipelines declarative.
`

func TestBuildExcludesDrafts(t *testing.T) {
	vault := t.TempDir()
	writePost(t, vault, "streams-in-practice.md", publishedPost)
	writePost(t, vault, "streams-draft.md", draftPost)

	builder, _ := newTestBuilder(t, vault)
	report, err := builder.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Posts != 1 {
		t.Errorf("expected 1 rendered post, got %d", report.Posts)
	}
	if report.Drafts != 1 {
		t.Errorf("expected 1 skipped draft, got %d", report.Drafts)
	}

	if _, err := os.Stat(filepath.Join(report.Output, "streams-in-practice", "index.html")); err != nil {
		t.Errorf("published post should be rendered: %v", err)
	}
	if _, err := os.Stat(filepath.Join(report.Output, "streams-draft")); !os.IsNotExist(err) {
		t.Errorf("draft must not be rendered, stat err = %v", err)
	}

	home, err := os.ReadFile(filepath.Join(report.Output, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(home), `href="/streams-in-practice/"`) {
		t.Error("home listing should link the published post")
	}
	if strings.Contains(string(home), "streams-draft") {
		t.Error("home listing must not mention the draft")
	}
}

func TestBuildHomeCarriesHero(t *testing.T) {
	vault := t.TempDir()
	writePost(t, vault, "streams-in-practice.md", publishedPost)

	builder, _ := newTestBuilder(t, vault)
	report, err := builder.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	home, err := os.ReadFile(filepath.Join(report.Output, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(home), `href="/about"`); got != 1 {
		t.Errorf("home page should carry exactly one about link, got %d", got)
	}
	if !strings.Contains(string(home), "Learn More") {
		t.Error("home page should carry the hero call to action")
	}
}

func TestBuildTagPages(t *testing.T) {
	vault := t.TempDir()
	writePost(t, vault, "streams-in-practice.md", publishedPost)

	builder, _ := newTestBuilder(t, vault)
	report, err := builder.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if report.Tags != 2 {
		t.Errorf("expected 2 tag pages, got %d", report.Tags)
	}
	page, err := os.ReadFile(filepath.Join(report.Output, "tags", "streams", "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(page), "Streams API in Practice") {
		t.Error("tag page should list the tagged post")
	}
}

func TestBuildFailsOnInvalidFrontmatter(t *testing.T) {
	vault := t.TempDir()
	writePost(t, vault, "broken.md", "---\ndate: 2024-05-01\nlayout: PostLayout\n---\n\nNo title.\n")

	builder, _ := newTestBuilder(t, vault)
	if _, err := builder.Build(context.Background()); err == nil {
		t.Fatal("build should fail when a post is missing required frontmatter")
	}
}

// A failing rebuild must leave the previous output intact: the site is
// staged and swapped in whole, never cleaned before rendering succeeds.
func TestBuildKeepsPreviousOutputOnFailure(t *testing.T) {
	vault := t.TempDir()
	writePost(t, vault, "streams-in-practice.md", publishedPost)

	builder, _ := newTestBuilder(t, vault)
	report, err := builder.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	firstHome, err := os.ReadFile(filepath.Join(report.Output, "index.html"))
	if err != nil {
		t.Fatal(err)
	}

	// An authoring error lands in the vault; the rebuild must fail.
	writePost(t, vault, "broken.md", "---\ndate: 2024-05-02\nlayout: PostLayout\n---\n\nNo title.\n")
	if _, err := builder.Build(context.Background()); err == nil {
		t.Fatal("build should fail when a post is missing required frontmatter")
	}

	home, err := os.ReadFile(filepath.Join(report.Output, "index.html"))
	if err != nil {
		t.Fatalf("previous build was destroyed by the failed rebuild: %v", err)
	}
	if string(home) != string(firstHome) {
		t.Error("previous home page changed despite the failed rebuild")
	}
	if _, err := os.Stat(filepath.Join(report.Output, "streams-in-practice", "index.html")); err != nil {
		t.Errorf("previous post page missing after failed rebuild: %v", err)
	}

	// No staging leftovers next to the output.
	leftovers, err := filepath.Glob(filepath.Join(vault, ".inkwell-build-*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(leftovers) != 0 {
		t.Errorf("staging directories left behind: %v", leftovers)
	}
}

func TestBuildStandalonePageStaysOutOfListing(t *testing.T) {
	vault := t.TempDir()
	writePost(t, vault, "streams-in-practice.md", publishedPost)
	writePost(t, vault, "about.md", `---
title: About
date: 2024-01-01
layout: PostLayout
---

I build things on the JVM.
`)

	builder, _ := newTestBuilder(t, vault)
	report, err := builder.Build(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(report.Output, "about", "index.html")); err != nil {
		t.Errorf("about page should be rendered: %v", err)
	}
	home, err := os.ReadFile(filepath.Join(report.Output, "index.html"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(home), `href="/about/"`) {
		t.Error("standalone about page must not appear in the listing")
	}
}
