package markdown

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRewriteDestination_Table(t *testing.T) {
	tests := []struct {
		name   string
		dest   string
		marker string
		want   string
	}{
		{"root index collapses to slash", "./index.md", "content", "/"},
		{"site absolute index becomes directory", "/content/docs/index.md", "content", "/docs/"},
		{"site absolute root index", "/content/index.md", "content", "/"},
		{"site absolute page", "/content/docs/page.md", "content", "/docs/page.html"},
		{"nested page", "/content/a/b/c.md", "content", "/a/b/c.html"},
		{"relative page", "page.md", "content", "page.html"},
		{"relative index", "docs/index.md", "content", "docs/"},
		{"bare marker strips to empty", "/content", "content", ""},
		{"external url untouched", "https://example.com/page", "content", "https://example.com/page"},
		{"anchor untouched", "#section", "content", "#section"},
		{"html link untouched", "/docs/page.html", "content", "/docs/page.html"},
		{"asset untouched", "/content/static/logo.png", "content", "/static/logo.png"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, RewriteDestination(tc.dest, tc.marker))
		})
	}
}

// The marker check is byte-wise, so a path segment that merely starts with
// the marker is stripped as well. This pins the current behavior.
func TestRewriteDestination_PrefixMatchIsNotSegmentAware(t *testing.T) {
	got := RewriteDestination("/contentious/page.md", "content")
	require.Equal(t, "ious/page.html", got)
}

func TestRewriteDestination_Idempotent(t *testing.T) {
	dests := []string{
		"/content/docs/index.md",
		"/content/docs/page.md",
		"./index.md",
		"page.md",
		"https://example.com/x",
	}

	for _, d := range dests {
		once := RewriteDestination(d, "content")
		twice := RewriteDestination(once, "content")
		require.Equal(t, once, twice, "destination %q", d)
	}
}

func TestRenderer_Render_RewritesLinkDestinations(t *testing.T) {
	r := NewRenderer("content")

	html, err := r.Render([]byte("[Docs](/content/docs/index.md)"))
	require.NoError(t, err)
	require.Contains(t, html, `<a href="/docs/">Docs</a>`)
}

func TestRenderer_Render_ReferenceLinksRewritten(t *testing.T) {
	r := NewRenderer("content")

	body := "[Docs][d]\n\n[d]: /content/docs/page.md\n"
	html, err := r.Render([]byte(body))
	require.NoError(t, err)
	require.Contains(t, html, `<a href="/docs/page.html">Docs</a>`)
}

func TestRenderer_Render_ImagesNotRewritten(t *testing.T) {
	r := NewRenderer("content")

	html, err := r.Render([]byte("![diagram](/content/diagram.md)"))
	require.NoError(t, err)
	require.Contains(t, html, `src="/content/diagram.md"`)
}

func TestRenderer_Render_ExtensionsEnabled(t *testing.T) {
	r := NewRenderer("content")

	body := "| a | b |\n|---|---|\n| 1 | 2 |\n\n~~gone~~\n\n- [x] done\n"
	html, err := r.Render([]byte(body))
	require.NoError(t, err)
	require.Contains(t, html, "<table>")
	require.Contains(t, html, "<del>gone</del>")
	require.Contains(t, html, `type="checkbox"`)
}

func TestRenderer_Render_FootnotesEnabled(t *testing.T) {
	r := NewRenderer("content")

	html, err := r.Render([]byte("text[^1]\n\n[^1]: note\n"))
	require.NoError(t, err)
	require.Contains(t, html, "fn:1")
}

func TestRenderer_Render_HeadingAttributesEnabled(t *testing.T) {
	r := NewRenderer("content")

	html, err := r.Render([]byte("# Title {#custom-id}\n"))
	require.NoError(t, err)
	require.Contains(t, html, `<h1 id="custom-id">Title</h1>`)
}

func TestRenderer_Render_RawHTMLPassesThrough(t *testing.T) {
	r := NewRenderer("content")

	html, err := r.Render([]byte("before\n\n<div class=\"note\">hi</div>\n"))
	require.NoError(t, err)
	require.Contains(t, html, `<div class="note">hi</div>`)
}
