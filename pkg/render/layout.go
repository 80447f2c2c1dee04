package render

import (
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/tmorell/inkwell/pkg/core"
)

// Built-in layout names. Posts select one via the layout frontmatter field.
const (
	PostLayout = "PostLayout"
	ListLayout = "ListLayout"
)

// Site is the static site identity threaded into every page.
type Site struct {
	Title   string
	Author  string
	BaseURL string
}

// Item is one entry in a listing page.
type Item struct {
	Title   string
	Href    string
	Date    string
	Summary string
	Tags    []string
}

// Page is the data a layout template executes against. Post layouts use
// Title/Date/Content; list layouts use Hero/Items. Unused fields stay zero.
type Page struct {
	Site         Site
	Title        string
	Date         string
	Lastmod      string
	Tags         []string
	Summary      string
	CanonicalURL string
	Content      template.HTML
	Hero         template.HTML
	Items        []Item
}

const postSource = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} · {{.Site.Title}}</title>
{{- if .Summary}}
<meta name="description" content="{{.Summary}}">
{{- end}}
{{- if .CanonicalURL}}
<link rel="canonical" href="{{.CanonicalURL}}">
{{- end}}
</head>
<body>
<header><a href="/">{{.Site.Title}}</a></header>
<main>
<article>
<h1>{{.Title}}</h1>
<p class="meta">
<time datetime="{{.Date}}">{{.Date}}</time>
{{- if .Lastmod}} · updated <time datetime="{{.Lastmod}}">{{.Lastmod}}</time>{{end}}
{{- range .Tags}} <a class="tag" href="/tags/{{.}}/">{{.}}</a>{{end}}
</p>
{{.Content}}
</article>
</main>
<footer>{{.Site.Author}}</footer>
</body>
</html>
`

const listSource = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}} · {{.Site.Title}}</title>
</head>
<body>
<header><a href="/">{{.Site.Title}}</a></header>
<main>
{{- if .Hero}}
{{.Hero}}
{{- end}}
<ul class="posts">
{{- range .Items}}
<li>
<time datetime="{{.Date}}">{{.Date}}</time>
<a href="{{.Href}}">{{.Title}}</a>
{{- if .Summary}}
<p>{{.Summary}}</p>
{{- end}}
</li>
{{- end}}
</ul>
</main>
<footer>{{.Site.Author}}</footer>
</body>
</html>
`

// Registry maps layout names to parsed templates. The two built-ins are
// always present; vaults can register extra layouts before building.
type Registry struct {
	mu      sync.RWMutex
	layouts map[string]*template.Template
}

func NewRegistry() *Registry {
	r := &Registry{layouts: make(map[string]*template.Template)}
	// Built-in sources are constants; parse failures are programmer errors.
	template.Must(r.mustRegister(PostLayout, postSource))
	template.Must(r.mustRegister(ListLayout, listSource))
	return r
}

func (r *Registry) mustRegister(name, source string) (*template.Template, error) {
	t, err := template.New(name).Parse(source)
	if err != nil {
		return nil, err
	}
	r.layouts[name] = t
	return t, nil
}

// Register parses source and adds it under name, replacing any previous
// layout with that name.
func (r *Registry) Register(name, source string) error {
	t, err := template.New(name).Parse(source)
	if err != nil {
		return fmt.Errorf("parsing layout %q: %w", name, err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.layouts[name] = t
	return nil
}

// Lookup returns the template for name or core.ErrUnknownLayout.
func (r *Registry) Lookup(name string) (*template.Template, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.layouts[name]
	if !ok {
		return nil, fmt.Errorf("layout %q: %w", name, core.ErrUnknownLayout)
	}
	return t, nil
}

// Names lists the registered layout names. Useful for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	return names
}

// Render executes the named layout against page.
func (r *Registry) Render(w io.Writer, name string, page Page) error {
	t, err := r.Lookup(name)
	if err != nil {
		return err
	}
	if err := t.Execute(w, page); err != nil {
		return fmt.Errorf("rendering layout %q: %w", name, err)
	}
	return nil
}

// RenderPost converts the post body and executes its declared layout.
func (r *Registry) RenderPost(w io.Writer, site Site, post core.Post) error {
	if err := post.Matter.Validate(); err != nil {
		return fmt.Errorf("post %q: %w", post.ID, err)
	}
	content, err := Body(post.Body)
	if err != nil {
		return fmt.Errorf("post %q: %w", post.ID, err)
	}
	page := Page{
		Site:         site,
		Title:        post.Matter.Title,
		Date:         post.Matter.Date.String(),
		Tags:         post.Matter.Tags,
		Summary:      post.Matter.Summary,
		CanonicalURL: post.Matter.CanonicalURL,
		Content:      content,
	}
	if !post.Matter.Lastmod.IsZero() {
		page.Lastmod = post.Matter.Lastmod.String()
	}
	return r.Render(w, post.Matter.Layout, page)
}
