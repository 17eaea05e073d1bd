package bundler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vk/fxbuild/internal/ctxlog"
	"github.com/vk/fxbuild/internal/manifest"
)

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the time source used for build results.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

// WithIDGenerator overrides the build ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(b *Builder) {
		b.newID = newID
	}
}

// Result describes a successful build pass.
type Result struct {
	ID       string
	Started  time.Time
	Duration time.Duration
	// Files lists every written path, descriptor last.
	Files []string
	// Bundles holds the bundle size in bytes per category.
	Bundles map[manifest.Category]int
}

// Builder runs build passes over a fixed layout.
type Builder struct {
	layout Layout
	writer *Writer
	now    func() time.Time
	newID  func() string
}

// NewBuilder creates a builder for layout.
func NewBuilder(layout Layout, opts ...Option) *Builder {
	b := &Builder{
		layout: layout,
		writer: NewWriter(layout),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Layout returns the layout the builder operates on.
func (b *Builder) Layout() Layout {
	return b.layout
}

// Build runs one full pass: load and validate the manifest, aggregate every
// category, write the bundles and finally the descriptor. Manifest problems
// abort before anything is written. A write failure leaves the files already
// replaced in this pass in place and the previous descriptor untouched.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	res := &Result{ID: b.newID(), Started: b.now()}
	ctx = ctxlog.With(ctx, "build_id", res.ID)
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build pass started.", "root", b.layout.Root)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m, err := manifest.Load(b.layout.Manifest())
	if err != nil {
		return nil, err
	}
	logger.Debug("Manifest loaded.", "fx_version", m.FxVersion, "games", len(m.Games))

	bundles, err := Aggregate(b.layout.Source(), m)
	if err != nil {
		return nil, err
	}

	res.Bundles = make(map[manifest.Category]int, len(bundles))
	for _, bundle := range bundles {
		res.Bundles[bundle.Category] = len(bundle.Content)
		logger.Debug("Category aggregated.", "category", bundle.Category, "files", len(bundle.Sources), "bytes", len(bundle.Content))
	}

	written, err := b.writer.WriteBundles(bundles)
	res.Files = written
	if err != nil {
		return nil, err
	}

	descriptor := RenderDescriptor(m, b.writer.Refs())
	p, err := b.writer.WriteDescriptor(descriptor)
	if err != nil {
		return nil, fmt.Errorf("bundles written but descriptor is stale: %w", err)
	}
	res.Files = append(res.Files, p)
	res.Duration = b.now().Sub(res.Started)

	logger.Info("📦 Build finished.", "duration", res.Duration, "shared_bytes", res.Bundles[manifest.Shared], "server_bytes", res.Bundles[manifest.Server], "client_bytes", res.Bundles[manifest.Client])
	return res, nil
}
