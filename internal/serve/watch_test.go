package serve

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent_Table(t *testing.T) {
	tests := []struct {
		name string
		path string
		want bool
	}{
		{name: "markdown document", path: "/content/page.md", want: false},
		{name: "static asset", path: "/content/static/logo.svg", want: false},
		{name: "hidden file", path: "/content/.page.md.kate-swp", want: true},
		{name: "backup file", path: "/content/page.md~", want: true},
		{name: "vim swap", path: "/content/.page.md.swp", want: true},
		{name: "emacs autosave", path: "/content/#page.md#", want: true},
		{name: "emacs lock", path: "/content/.#page.md", want: true},
		{name: "windows thumbnails", path: "/content/Thumbs.db", want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, shouldIgnoreEvent(tc.path))
		})
	}
}

func TestWatcher_HandleEvent_UnchangedMarkdownSuppressed(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "page.md")
	writeDoc(t, doc, "---\ntitle: T\n---\nbody\n")

	idx := newFingerprintIndex()
	idx.Changed(doc) // baseline

	var requests atomic.Int32
	w := &watcher{prints: idx, request: func() { requests.Add(1) }}

	w.handleEvent(fsnotify.Event{Name: doc, Op: fsnotify.Write})

	time.Sleep(debounceWindow + 200*time.Millisecond)
	require.Equal(t, int32(0), requests.Load(), "unchanged markdown must not request a rebuild")
}

func TestWatcher_HandleEvent_BurstCollapsesToOneRequest(t *testing.T) {
	dir := t.TempDir()

	var requests atomic.Int32
	w := &watcher{prints: newFingerprintIndex(), request: func() { requests.Add(1) }}

	for i := 0; i < 3; i++ {
		doc := filepath.Join(dir, "page.md")
		writeDoc(t, doc, "edit "+string(rune('a'+i))+"\n")
		w.handleEvent(fsnotify.Event{Name: doc, Op: fsnotify.Write})
	}

	require.Eventually(t, func() bool { return requests.Load() == 1 },
		2*time.Second, 20*time.Millisecond, "debounced burst must produce one request")

	time.Sleep(debounceWindow + 200*time.Millisecond)
	require.Equal(t, int32(1), requests.Load(), "no further requests after the window")
}

func TestWatcher_HandleEvent_IgnoredFileNeverTriggers(t *testing.T) {
	var requests atomic.Int32
	w := &watcher{prints: newFingerprintIndex(), request: func() { requests.Add(1) }}

	w.handleEvent(fsnotify.Event{Name: "/content/page.md~", Op: fsnotify.Write})

	time.Sleep(debounceWindow + 200*time.Millisecond)
	require.Equal(t, int32(0), requests.Load())
}

func TestWatcher_Run_FileChangeRequestsRebuild(t *testing.T) {
	content := t.TempDir()
	writeDoc(t, filepath.Join(content, "index.md"), "# Home\n")

	var requests atomic.Int32
	idx := newFingerprintIndex()
	idx.Prime(content)

	w, err := newWatcher(content, idx, func() { requests.Add(1) })
	require.NoError(t, err)
	go w.run(t.Context())

	// Give the watcher a moment to arm before mutating the tree.
	time.Sleep(50 * time.Millisecond)
	writeDoc(t, filepath.Join(content, "index.md"), "# Home, edited\n")

	require.Eventually(t, func() bool { return requests.Load() >= 1 },
		3*time.Second, 20*time.Millisecond, "file edit must request a rebuild")
}

func TestWatcher_Run_NewDirectoryIsPickedUp(t *testing.T) {
	content := t.TempDir()
	writeDoc(t, filepath.Join(content, "index.md"), "# Home\n")

	var requests atomic.Int32
	w, err := newWatcher(content, newFingerprintIndex(), func() { requests.Add(1) })
	require.NoError(t, err)
	go w.run(t.Context())

	time.Sleep(50 * time.Millisecond)
	sub := filepath.Join(content, "guides")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	// Let the mkdir event settle so the next request is attributable to the
	// file written inside the new directory.
	time.Sleep(debounceWindow + 300*time.Millisecond)
	before := requests.Load()
	writeDoc(t, filepath.Join(sub, "new.md"), "# New page\n")

	require.Eventually(t, func() bool { return requests.Load() > before },
		3*time.Second, 20*time.Millisecond, "file in a new directory must request a rebuild")
}
