package serve

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/mdsite/internal/frontmatter"
)

// fingerprintIndex tracks the content fingerprint of every watched markdown
// file so editor saves that change no bytes (or only reshuffle the mtime)
// don't trigger rebuilds.
type fingerprintIndex struct {
	mu     sync.Mutex
	byPath map[string]string
}

func newFingerprintIndex() *fingerprintIndex {
	return &fingerprintIndex{byPath: map[string]string{}}
}

// Prime records the current fingerprint of every markdown file under root,
// establishing the baseline for Changed.
func (f *fingerprintIndex) Prime(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".md" {
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		f.mu.Lock()
		f.byPath[path] = contentFingerprint(string(data))
		f.mu.Unlock()
		return nil
	})
}

// Changed reports whether the file's content fingerprint moved since the last
// observation, updating the record. Files that cannot be read count as
// changed, since deletion changes the site too.
func (f *fingerprintIndex) Changed(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		f.mu.Lock()
		delete(f.byPath, path)
		f.mu.Unlock()
		return true
	}

	fp := contentFingerprint(string(data))
	f.mu.Lock()
	defer f.mu.Unlock()
	if prev, ok := f.byPath[path]; ok && prev == fp {
		return false
	}
	f.byPath[path] = fp
	return true
}

// contentFingerprint hashes front matter and body as separate parts, so
// moving text across the delimiter never masks a change.
func contentFingerprint(raw string) string {
	meta, body, _ := frontmatter.RawParts(raw)
	return mdfp.CalculateFingerprintFromParts(meta, body)
}
