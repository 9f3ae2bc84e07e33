package markdown

import "strings"

// RewriteDestination maps a link destination to its published URL.
//
// Destinations under /<marker> lose that prefix; destinations then ending in
// .md become their .html (or directory index) equivalents; everything else
// passes through untouched, so already-published URLs survive another pass.
func RewriteDestination(dest, marker string) string {
	if marker != "" {
		// Plain prefix matching, not segment-aware: with marker "content" a
		// destination like /contentious/page.md loses the prefix too. Kept so
		// URLs published by existing sites stay stable.
		dest = strings.TrimPrefix(dest, "/"+marker)
	}

	if !strings.HasSuffix(dest, ".md") {
		return dest
	}

	switch {
	case strings.HasSuffix(dest, "./index.md"):
		return "/"
	case strings.HasSuffix(dest, "index.md"):
		return strings.TrimSuffix(dest, "index.md")
	default:
		return strings.TrimSuffix(dest, ".md") + ".html"
	}
}
