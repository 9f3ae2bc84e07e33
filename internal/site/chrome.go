package site

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/mdsite/internal/config"
	"git.home.luguber.info/inful/mdsite/internal/markdown"
	"git.home.luguber.info/inful/mdsite/internal/page"
)

// stageLoadChrome reads the sitewide assets and constructs the renderer and
// assembler used for every page of this build.
func stageLoadChrome(_ context.Context, bs *buildState) error {
	bs.renderer = markdown.NewRenderer(bs.cfg.RootMarker())

	chrome, err := loadChrome(bs.renderer,
		resolveAssetPath(bs, bs.cfg.Assets.Style),
		resolveAssetPath(bs, bs.cfg.Assets.Header),
		resolveAssetPath(bs, bs.cfg.Assets.Footer),
	)
	if err != nil {
		return err
	}
	bs.chrome = chrome

	if tplPath := bs.cfg.Site.Template; tplPath != "" {
		data, err := os.ReadFile(config.ExpandPath(tplPath))
		if err != nil {
			return fmt.Errorf("read page template %s: %w", tplPath, err)
		}
		assembler, err := page.NewAssemblerWithTemplate(bs.renderer, chrome, string(data))
		if err != nil {
			return err
		}
		bs.assembler = assembler
		return nil
	}

	assembler, err := page.NewAssembler(bs.renderer, chrome)
	if err != nil {
		return err
	}
	bs.assembler = assembler
	return nil
}

// resolveAssetPath resolves a chrome path. Absolute paths are used as given;
// relative paths resolve against the content root, so the chrome travels with
// the content whether it is a local tree or a checkout.
func resolveAssetPath(bs *buildState, path string) string {
	path = config.ExpandPath(path)
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(bs.contentDir, path)
}

// loadChrome assembles the immutable per-build chrome. The style file is
// taken as raw text; header and footer are rendered Markdown-to-HTML with no
// front matter pass and no template around them. A missing file leaves its
// field empty.
func loadChrome(r *markdown.Renderer, stylePath, headerPath, footerPath string) (page.Chrome, error) {
	style, err := readOptional(stylePath)
	if err != nil {
		return page.Chrome{}, err
	}

	header, err := renderOptional(r, headerPath)
	if err != nil {
		return page.Chrome{}, err
	}

	footer, err := renderOptional(r, footerPath)
	if err != nil {
		return page.Chrome{}, err
	}

	return page.Chrome{Style: style, Header: header, Footer: footer}, nil
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

func renderOptional(r *markdown.Renderer, path string) (string, error) {
	raw, err := readOptional(path)
	if err != nil || raw == "" {
		return "", err
	}
	html, err := r.Render([]byte(raw))
	if err != nil {
		return "", fmt.Errorf("render %s: %w", path, err)
	}
	return html, nil
}
