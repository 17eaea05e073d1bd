package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root     string
	src      string
	manifest string
	events   chan Event
	w        *Watcher
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	root := t.TempDir()
	f := &fixture{
		root:     root,
		src:      filepath.Join(root, "src"),
		manifest: filepath.Join(root, "manifest.json"),
		events:   make(chan Event, 64),
	}
	require.NoError(t, os.MkdirAll(filepath.Join(f.src, "client"), 0o755))
	require.NoError(t, os.WriteFile(f.manifest, []byte("{}"), 0o644))

	opts.SourceDir = f.src
	opts.ManifestPath = f.manifest
	w, err := New(context.Background(), opts, func(ev Event) { f.events <- ev })
	require.NoError(t, err)
	f.w = w
	return f
}

func (f *fixture) run(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// waitFor drains events until one of kind arrives.
func (f *fixture) waitFor(t *testing.T, kind Kind) Event {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev := <-f.events:
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("no %s event received", kind)
			return Event{}
		}
	}
}

func TestWatcher_SourceChange(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t, Options{})
	f.run(t)

	// --- Act ---
	require.NoError(t, os.WriteFile(filepath.Join(f.src, "client", "main.lua"), []byte("x"), 0o644))

	// --- Assert ---
	ev := f.waitFor(t, SourceChanged)
	require.Equal(t, filepath.Join(f.src, "client", "main.lua"), ev.Path)
}

func TestWatcher_ManifestChange(t *testing.T) {
	f := newFixture(t, Options{})
	f.run(t)

	require.NoError(t, os.WriteFile(f.manifest, []byte(`{"fxVersion":"cerulean"}`), 0o644))

	ev := f.waitFor(t, ManifestChanged)
	require.Equal(t, f.manifest, ev.Path)
}

func TestWatcher_NewDirectoryIsWatched(t *testing.T) {
	// --- Arrange ---
	f := newFixture(t, Options{})
	f.run(t)
	nested := filepath.Join(f.src, "server", "modules")

	// --- Act ---
	require.NoError(t, os.MkdirAll(nested, 0o755))
	f.waitFor(t, SourceChanged)
	// Give the watcher time to register the new directories.
	require.Eventually(t, func() bool {
		for _, p := range f.w.fs.WatchList() {
			if p == nested {
				return true
			}
		}
		return false
	}, 5*time.Second, 20*time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(nested, "db.lua"), []byte("x"), 0o644))

	// --- Assert ---
	for {
		ev := f.waitFor(t, SourceChanged)
		if ev.Path == filepath.Join(nested, "db.lua") {
			return
		}
	}
}

func TestNew_FailsForMissingSource(t *testing.T) {
	root := t.TempDir()
	_, err := New(context.Background(), Options{
		SourceDir:    filepath.Join(root, "missing"),
		ManifestPath: filepath.Join(root, "manifest.json"),
	}, func(Event) {})
	require.Error(t, err)
}

func TestNew_RejectsInvalidPattern(t *testing.T) {
	root := t.TempDir()
	_, err := New(context.Background(), Options{
		SourceDir:    root,
		ManifestPath: filepath.Join(root, "manifest.json"),
		Ignore:       []string{"[unclosed"},
	}, func(Event) {})
	require.ErrorContains(t, err, "invalid watch pattern")
}

func TestClassify(t *testing.T) {
	f := newFixture(t, Options{
		Include: []string{"**/*.lua"},
		Ignore:  []string{"**/*_test.lua"},
	})
	t.Cleanup(func() { f.w.fs.Close() })
	ctx := context.Background()

	testCases := []struct {
		name   string
		event  fsnotify.Event
		want   Kind
		wantOK bool
	}{
		{name: "manifest write", event: fsnotify.Event{Name: f.manifest, Op: fsnotify.Write}, want: ManifestChanged, wantOK: true},
		{name: "manifest removed", event: fsnotify.Event{Name: f.manifest, Op: fsnotify.Remove}, want: ManifestChanged, wantOK: true},
		{name: "lua source", event: fsnotify.Event{Name: filepath.Join(f.src, "client", "a.lua"), Op: fsnotify.Write}, want: SourceChanged, wantOK: true},
		{name: "deleted source", event: fsnotify.Event{Name: filepath.Join(f.src, "a.lua"), Op: fsnotify.Remove}, want: SourceChanged, wantOK: true},
		{name: "not included", event: fsnotify.Event{Name: filepath.Join(f.src, "notes.md"), Op: fsnotify.Write}},
		{name: "ignored", event: fsnotify.Event{Name: filepath.Join(f.src, "a_test.lua"), Op: fsnotify.Write}},
		{name: "chmod only", event: fsnotify.Event{Name: filepath.Join(f.src, "a.lua"), Op: fsnotify.Chmod}},
		{name: "sibling of manifest", event: fsnotify.Event{Name: filepath.Join(f.root, "fxmanifest.lua"), Op: fsnotify.Write}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := f.w.classify(ctx, tc.event)
			require.Equal(t, tc.wantOK, ok)
			if tc.wantOK {
				require.Equal(t, tc.want, got.Kind)
			}
		})
	}
}

func TestKind_String(t *testing.T) {
	require.Equal(t, "source", SourceChanged.String())
	require.Equal(t, "manifest", ManifestChanged.String())
	require.Equal(t, "Kind(9)", Kind(9).String())
}
