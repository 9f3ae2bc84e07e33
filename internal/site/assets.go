package site

import (
	"context"
	"io"
	"os"
	"path/filepath"

	siterrors "git.home.luguber.info/inful/mdsite/internal/errors"
)

// stageCopyAssets mirrors the content's static/ subtree into the output and
// places the style file in the output root. Sites without either simply have
// no assets.
func stageCopyAssets(_ context.Context, bs *buildState) error {
	src := filepath.Join(bs.contentDir, "static")
	if info, err := os.Stat(src); err == nil && info.IsDir() {
		n, err := copyDir(src, filepath.Join(bs.outputDir, "static"))
		if err != nil {
			return siterrors.Wrap(err, siterrors.CategoryFileSystem, siterrors.SeverityFatal, "failed to copy static assets").
				WithContext("path", src)
		}
		bs.report.Assets = n
	}

	// The style is inlined into every page; the copy in the output root serves
	// direct requests against the published tree.
	stylePath := resolveAssetPath(bs, bs.cfg.Assets.Style)
	if stylePath == "" {
		return nil
	}
	if info, err := os.Stat(stylePath); err != nil || !info.Mode().IsRegular() {
		return nil
	}
	if err := copyFile(stylePath, filepath.Join(bs.outputDir, filepath.Base(stylePath))); err != nil {
		return siterrors.Wrap(err, siterrors.CategoryFileSystem, siterrors.SeverityFatal, "failed to copy style file").
			WithContext("path", stylePath)
	}
	bs.report.Assets++
	return nil
}

// copyDir recursively copies src into dst and returns the number of files
// copied.
func copyDir(src, dst string) (int, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if err := os.MkdirAll(dst, srcInfo.Mode()); err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return 0, err
	}

	copied := 0
	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			n, err := copyDir(srcPath, dstPath)
			if err != nil {
				return copied, err
			}
			copied += n
			continue
		}

		if err := copyFile(srcPath, dstPath); err != nil {
			return copied, err
		}
		copied++
	}

	return copied, nil
}

func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = dstFile.Close()
	}()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return err
	}

	// Preserve file permissions
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode())
}
