package site

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/tmorell/inkwell/pkg/core"
	"github.com/tmorell/inkwell/pkg/render"
)

// standalonePages render like posts but stay out of listings and tag pages.
var standalonePages = map[string]bool{
	"about": true,
}

// Report summarises one build.
type Report struct {
	Pages    int
	Posts    int
	Drafts   int
	Tags     int
	Output   string
	Duration time.Duration
}

// Builder renders every published post in a vault into a static site.
type Builder struct {
	service  *core.Service
	registry *render.Registry
	config   Config
	vault    string
	logger   *slog.Logger

	// IncludeDrafts renders draft posts too (local preview). Drafts never
	// appear in listings or tag pages either way.
	IncludeDrafts bool
}

func NewBuilder(service *core.Service, config Config, vaultPath string, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		service:  service,
		registry: render.NewRegistry(),
		config:   config,
		vault:    vaultPath,
		logger:   logger,
	}
}

// Registry exposes the layout registry so callers can register custom
// layouts before building.
func (b *Builder) Registry() *render.Registry {
	return b.registry
}

// Build renders the whole site into the configured output directory.
// The site is rendered into a staging directory and swapped in whole, so a
// failing build leaves the previous output untouched. A post with invalid
// frontmatter fails the build; drafts are skipped, never rendered.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	start := time.Now()
	out := b.config.OutputDir(b.vault)

	posts, err := b.service.ListPosts(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("listing posts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return Report{}, fmt.Errorf("creating output parent: %w", err)
	}
	staging, err := os.MkdirTemp(filepath.Dir(out), ".inkwell-build-*")
	if err != nil {
		return Report{}, fmt.Errorf("creating staging directory: %w", err)
	}
	// MkdirTemp is conservative; the published site should be readable.
	if err := os.Chmod(staging, 0o755); err != nil {
		return Report{}, fmt.Errorf("preparing staging directory: %w", err)
	}
	// No-op once the rename below succeeds.
	defer os.RemoveAll(staging)

	report := Report{Output: out}
	siteMeta := render.Site{Title: b.config.Title, Author: b.config.Author, BaseURL: b.config.BaseURL}

	var items []render.Item
	tagged := make(map[string][]render.Item)

	for _, p := range posts {
		if !p.Published() {
			report.Drafts++
			if !b.IncludeDrafts {
				b.logger.Debug("skipping draft", "id", p.ID)
				continue
			}
		}

		// Listings come from the metadata cache; fetch the full body
		// for rendering.
		full, err := b.service.GetPost(ctx, p.ID)
		if err != nil {
			return Report{}, fmt.Errorf("loading post %q: %w", p.ID, err)
		}

		var buf bytes.Buffer
		if err := b.registry.RenderPost(&buf, siteMeta, full); err != nil {
			return Report{}, err
		}
		if err := b.writePage(staging, filepath.Join(full.ID, "index.html"), buf.Bytes()); err != nil {
			return Report{}, err
		}
		report.Pages++
		report.Posts++

		if !p.Published() || standalonePages[full.ID] {
			continue
		}
		item := render.Item{
			Title:   full.Matter.Title,
			Href:    "/" + full.ID + "/",
			Date:    full.Matter.Date.String(),
			Summary: full.Matter.Summary,
			Tags:    full.Matter.Tags,
		}
		items = append(items, item)
		for _, tag := range full.Matter.Tags {
			tagged[tag] = append(tagged[tag], item)
		}
	}

	if err := b.writeHome(staging, siteMeta, items); err != nil {
		return Report{}, err
	}
	report.Pages++

	tags := make([]string, 0, len(tagged))
	for tag := range tagged {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if err := b.writeTagPage(staging, siteMeta, tag, tagged[tag]); err != nil {
			return Report{}, err
		}
		report.Pages++
	}
	report.Tags = len(tags)

	// Swap the finished site in.
	if err := os.RemoveAll(out); err != nil {
		return Report{}, fmt.Errorf("cleaning output: %w", err)
	}
	if err := os.Rename(staging, out); err != nil {
		return Report{}, fmt.Errorf("publishing output: %w", err)
	}

	report.Duration = time.Since(start)
	b.logger.Info("site built",
		"output", out,
		"pages", report.Pages,
		"posts", report.Posts,
		"drafts", report.Drafts,
		"drafts_rendered", b.IncludeDrafts,
		"duration", report.Duration,
	)
	return report, nil
}

func (b *Builder) writeHome(out string, siteMeta render.Site, items []render.Item) error {
	var buf bytes.Buffer
	page := render.Page{
		Site:  siteMeta,
		Title: "Home",
		Hero:  render.Hero(),
		Items: items,
	}
	if err := b.registry.Render(&buf, render.ListLayout, page); err != nil {
		return fmt.Errorf("rendering home page: %w", err)
	}
	return b.writePage(out, "index.html", buf.Bytes())
}

func (b *Builder) writeTagPage(out string, siteMeta render.Site, tag string, items []render.Item) error {
	var buf bytes.Buffer
	page := render.Page{
		Site:  siteMeta,
		Title: "Posts tagged " + tag,
		Items: items,
	}
	if err := b.registry.Render(&buf, render.ListLayout, page); err != nil {
		return fmt.Errorf("rendering tag page %q: %w", tag, err)
	}
	return b.writePage(out, filepath.Join("tags", tag, "index.html"), buf.Bytes())
}

func (b *Builder) writePage(out, rel string, data []byte) error {
	path := filepath.Join(out, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(rel), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	b.logger.Debug("wrote page", "path", rel)
	return nil
}
