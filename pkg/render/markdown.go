// Package render turns posts into HTML pages.
//
// It owns the markdown pipeline, the named layout registry, and the small
// presentational components (the Hero banner). It knows nothing about
// storage; callers hand it core.Post values.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// md is the shared converter. GFM tables/strikethrough plus syntax
// highlighting for fenced code blocks; WithUnsafe because MDX bodies may
// embed raw markup, which is author-trusted content.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		highlighting.NewHighlighting(
			highlighting.WithStyle("github"),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(),
	),
)

// Body converts a markdown/MDX body to HTML.
// The body is opaque authored prose; conversion errors are authoring errors.
func Body(body string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("markdown conversion failed: %w", err)
	}
	return template.HTML(buf.String()), nil
}
