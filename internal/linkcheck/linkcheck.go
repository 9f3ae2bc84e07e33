// Package linkcheck verifies that references inside a generated site resolve
// to files the build actually produced.
package linkcheck

import (
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
)

// Ref is one outgoing reference found in a generated page.
type Ref struct {
	Page string // output-relative path of the page holding the reference
	URL  string // the reference as written
	Tag  string // a, img, link, script
}

// Broken is an internal reference with no matching file in the output tree.
type Broken struct {
	Page string `json:"page"`
	Ref  string `json:"ref"`
}

// Report summarizes one verification pass over an output directory.
type Report struct {
	Pages    int      `json:"pages"`
	Checked  int      `json:"checked"`  // internal refs resolved against the tree
	External int      `json:"external"` // refs with a host, counted but not fetched
	Broken   []Broken `json:"broken,omitempty"`
}

// Ok reports whether every internal reference resolved.
func (r *Report) Ok() bool { return len(r.Broken) == 0 }

// CheckDir parses every .html file under root and verifies its internal
// references. External URLs are never fetched.
func CheckDir(root string) (*Report, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve output directory: %w", err)
	}

	report := &Report{}

	walkErr := filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(p) != ".html" {
			return nil
		}

		rel, relErr := filepath.Rel(abs, p)
		if relErr != nil {
			return fmt.Errorf("relativize %s: %w", p, relErr)
		}

		refs, extractErr := extractFile(p, filepath.ToSlash(rel))
		if extractErr != nil {
			return extractErr
		}

		report.Pages++
		for _, ref := range refs {
			verifyRef(abs, ref, report)
		}
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("walk output directory: %w", walkErr)
	}

	return report, nil
}

func extractFile(htmlPath, relPage string) ([]Ref, error) {
	f, err := os.Open(filepath.Clean(htmlPath))
	if err != nil {
		return nil, fmt.Errorf("open generated page %s: %w", htmlPath, err)
	}
	defer func() {
		_ = f.Close()
	}()

	return ExtractRefs(f, relPage)
}

// ExtractRefs collects the references of one HTML document: a[href],
// img[src], link[href], and script[src].
func ExtractRefs(r io.Reader, page string) ([]Ref, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse generated page %s: %w", page, err)
	}

	var refs []Ref
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a", "link":
				if href := attrValue(n, "href"); href != "" {
					refs = append(refs, Ref{Page: page, URL: href, Tag: n.Data})
				}
			case "img", "script":
				if src := attrValue(n, "src"); src != "" {
					refs = append(refs, Ref{Page: page, URL: src, Tag: n.Data})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return refs, nil
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// verifyRef classifies one reference and records the outcome on the report.
func verifyRef(root string, ref Ref, report *Report) {
	raw := ref.URL

	// Pure fragments and non-navigational schemes have nothing to resolve.
	if raw == "" || strings.HasPrefix(raw, "#") ||
		strings.HasPrefix(raw, "mailto:") || strings.HasPrefix(raw, "tel:") ||
		strings.HasPrefix(raw, "javascript:") || strings.HasPrefix(raw, "data:") {
		return
	}

	u, err := url.Parse(raw)
	if err != nil {
		report.Broken = append(report.Broken, Broken{Page: ref.Page, Ref: raw})
		return
	}
	if u.Scheme != "" || u.Host != "" {
		report.External++
		return
	}

	report.Checked++
	if !resolves(root, ref.Page, u.Path) {
		report.Broken = append(report.Broken, Broken{Page: ref.Page, Ref: raw})
	}
}

// resolves reports whether target, as referenced from page, names a file the
// build produced. Directory references resolve through their index.html.
func resolves(root, page, target string) bool {
	if target == "" {
		return true // same-page reference (query or fragment only)
	}

	var joined string
	if strings.HasPrefix(target, "/") {
		joined = path.Join("/", target)
	} else {
		joined = path.Join("/", path.Dir(page), target)
	}

	full := filepath.Join(root, filepath.FromSlash(strings.TrimPrefix(joined, "/")))

	info, err := os.Stat(full)
	if err == nil && !info.IsDir() {
		return true
	}
	if strings.HasSuffix(target, "/") || (err == nil && info.IsDir()) {
		if st, serr := os.Stat(filepath.Join(full, "index.html")); serr == nil && !st.IsDir() {
			return true
		}
	}
	return false
}
