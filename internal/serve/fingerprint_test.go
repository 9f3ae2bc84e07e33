package serve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeDoc(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestFingerprintIndex_RewriteWithSameContentNotChanged(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "page.md")
	content := "---\ntitle: T\n---\nbody\n"
	writeDoc(t, doc, content)

	idx := newFingerprintIndex()
	require.True(t, idx.Changed(doc), "first observation establishes the baseline")

	writeDoc(t, doc, content)
	require.False(t, idx.Changed(doc), "identical rewrite must not count as a change")
}

func TestFingerprintIndex_ContentEditReportsChanged(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "page.md")
	writeDoc(t, doc, "---\ntitle: T\n---\nbody\n")

	idx := newFingerprintIndex()
	idx.Changed(doc)

	writeDoc(t, doc, "---\ntitle: T\n---\nedited body\n")
	require.True(t, idx.Changed(doc))
}

func TestFingerprintIndex_FrontMatterEditReportsChanged(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "page.md")
	writeDoc(t, doc, "---\ntitle: T\n---\nbody\n")

	idx := newFingerprintIndex()
	idx.Changed(doc)

	writeDoc(t, doc, "---\ntitle: Renamed\n---\nbody\n")
	require.True(t, idx.Changed(doc))
}

func TestFingerprintIndex_PrimeEstablishesBaseline(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "sub", "page.md")
	content := "# plain document, no front matter\n"
	writeDoc(t, doc, content)

	idx := newFingerprintIndex()
	idx.Prime(root)

	writeDoc(t, doc, content)
	require.False(t, idx.Changed(doc), "primed file with identical content must not trigger")
}

func TestFingerprintIndex_MissingFileReportsChanged(t *testing.T) {
	root := t.TempDir()
	doc := filepath.Join(root, "page.md")
	writeDoc(t, doc, "body\n")

	idx := newFingerprintIndex()
	idx.Prime(root)

	require.NoError(t, os.Remove(doc))
	require.True(t, idx.Changed(doc), "deletion changes the site")
}
