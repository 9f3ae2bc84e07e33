package site

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// DocFile is a discovered Markdown document.
type DocFile struct {
	Path    string // absolute path to the source file
	RelPath string // path relative to the content root
}

// stageDiscover walks the content tree and collects the documents to render.
func stageDiscover(_ context.Context, bs *buildState) error {
	docs, err := discoverDocs(bs.contentDir, bs.chromePaths())
	if err != nil {
		return err
	}
	bs.docs = docs
	return nil
}

// chromePaths returns the absolute chrome file locations so the walk can
// leave them out when they live inside the content dir.
func (bs *buildState) chromePaths() map[string]struct{} {
	out := make(map[string]struct{}, 3)
	for _, p := range []string{bs.cfg.Assets.Style, bs.cfg.Assets.Header, bs.cfg.Assets.Footer} {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(resolveAssetPath(bs, p)); err == nil {
			out[abs] = struct{}{}
		}
	}
	return out
}

// discoverDocs finds every renderable document under contentDir.
//
// The walk skips hidden entries, the top-level static/ subtree, files named
// nav.md, and the chrome files themselves. Only .md files are documents.
func discoverDocs(contentDir string, exclude map[string]struct{}) ([]DocFile, error) {
	docs := make([]DocFile, 0, 64)

	err := filepath.WalkDir(contentDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		name := d.Name()
		if d.IsDir() {
			if path == contentDir {
				return nil
			}
			if strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if name == "static" && filepath.Dir(path) == contentDir {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		if filepath.Ext(name) != ".md" {
			return nil
		}
		if name == "nav.md" {
			return nil
		}
		if _, excluded := exclude[path]; excluded {
			return nil
		}

		rel, relErr := filepath.Rel(contentDir, path)
		if relErr != nil {
			return fmt.Errorf("relativize %s: %w", path, relErr)
		}
		docs = append(docs, DocFile{Path: path, RelPath: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk content directory: %w", err)
	}

	return docs, nil
}
