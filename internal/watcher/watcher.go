// Package watcher observes the script source tree and the manifest file and
// reports every relevant change to a handler.
//
// fsnotify does not watch recursively, so every directory below the source
// root is registered at startup and directories created later are added as
// their events arrive. The manifest is watched through its parent directory,
// which keeps working when editors replace the file by renaming a temp file
// over it. The watcher does not debounce; callers coalesce.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/vk/fxbuild/internal/ctxlog"
	"github.com/vk/fxbuild/internal/fsutil"
)

// Kind tells which watch subject an event belongs to.
type Kind int

const (
	SourceChanged Kind = iota + 1
	ManifestChanged
)

func (k Kind) String() string {
	switch k {
	case SourceChanged:
		return "source"
	case ManifestChanged:
		return "manifest"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Event is a change on one of the watch subjects.
type Event struct {
	Kind Kind
	Path string
	Op   fsnotify.Op
}

// Handler receives events. It is called from the watcher goroutine and must
// not block for long.
type Handler func(Event)

// Options configures the watch subjects.
type Options struct {
	SourceDir    string
	ManifestPath string
	// Include restricts source events to paths (relative to SourceDir,
	// slash separated) matching at least one pattern. Empty means all.
	Include []string
	// Ignore drops source events whose path matches any pattern.
	Ignore []string
}

// Watcher is an active registration on both subjects.
type Watcher struct {
	opts         Options
	sourceDir    string
	manifestPath string
	handler      Handler
	fs           *fsnotify.Watcher
}

// New registers both watch subjects. The returned watcher is active; events
// are delivered once Run is called.
func New(ctx context.Context, opts Options, handler Handler) (*Watcher, error) {
	logger := ctxlog.FromContext(ctx)

	for _, p := range append(append([]string{}, opts.Include...), opts.Ignore...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid watch pattern %q", p)
		}
	}

	sourceDir, err := filepath.Abs(opts.SourceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source directory: %w", err)
	}
	manifestPath, err := filepath.Abs(opts.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		opts:         opts,
		sourceDir:    sourceDir,
		manifestPath: manifestPath,
		handler:      handler,
		fs:           fsw,
	}

	if err := w.addTree(sourceDir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch source tree %s: %w", sourceDir, err)
	}
	if err := fsw.Add(filepath.Dir(manifestPath)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch manifest %s: %w", manifestPath, err)
	}

	logger.Info("👀 Watching for changes.", "source", sourceDir, "manifest", manifestPath)
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	dirs, err := fsutil.FindDirs(root)
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := w.fs.Add(d); err != nil {
			return err
		}
	}
	return nil
}

// Run delivers events until ctx is cancelled, then releases the watches.
func (w *Watcher) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	defer w.fs.Close()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watcher stopped.")
			return nil
		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if out, ok := w.classify(ctx, ev); ok {
				logger.Debug("Change detected.", "kind", out.Kind, "path", out.Path, "op", out.Op.String())
				w.handler(out)
			}
		}
	}
}

// classify maps a raw fsnotify event to a subject event, registering new
// directories on the way.
func (w *Watcher) classify(ctx context.Context, ev fsnotify.Event) (Event, bool) {
	// Permission changes alone do not alter content.
	if ev.Op == fsnotify.Chmod {
		return Event{}, false
	}

	if filepath.Clean(ev.Name) == w.manifestPath {
		return Event{Kind: ManifestChanged, Path: ev.Name, Op: ev.Op}, true
	}

	rel, err := filepath.Rel(w.sourceDir, ev.Name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Event{}, false
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil && !errors.Is(err, os.ErrNotExist) {
				ctxlog.FromContext(ctx).Warn("Failed to watch new directory.", "path", ev.Name, "error", err)
			}
		}
	}

	if !w.matches(filepath.ToSlash(rel)) {
		return Event{}, false
	}
	return Event{Kind: SourceChanged, Path: ev.Name, Op: ev.Op}, true
}

func (w *Watcher) matches(rel string) bool {
	for _, p := range w.opts.Ignore {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(w.opts.Include) == 0 {
		return true
	}
	for _, p := range w.opts.Include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
