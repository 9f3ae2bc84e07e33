// Package markdown renders document bodies to HTML, rewriting site-local
// link destinations on the way.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Renderer converts Markdown bodies to HTML. It is constructed once per build
// and reused for every document; Render keeps no state between calls.
type Renderer struct {
	marker string
	md     goldmark.Markdown
}

// NewRenderer returns a Renderer for a site whose content root's final path
// segment is marker. Links starting with /<marker> are treated as
// site-absolute and lose that prefix when rewritten.
func NewRenderer(marker string) *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.Table,
			extension.Strikethrough,
			extension.TaskList,
			extension.Footnote,
			extension.Typographer,
		),
		goldmark.WithParserOptions(
			parser.WithAttribute(),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)
	return &Renderer{marker: marker, md: md}
}

// Render parses body, rewrites every link destination, and returns HTML.
//
// Only links are rewritten. Images, autolinks, titles, and node order are
// left untouched. Goldmark resolves reference-style links into Link nodes,
// so they are covered by the same pass.
func (r *Renderer) Render(body []byte) (string, error) {
	root := r.md.Parser().Parse(text.NewReader(body))

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		if link, ok := n.(*gmast.Link); ok {
			link.Destination = []byte(RewriteDestination(string(link.Destination), r.marker))
		}
		return gmast.WalkContinue, nil
	})

	var buf bytes.Buffer
	if err := r.md.Renderer().Render(&buf, body, root); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}
