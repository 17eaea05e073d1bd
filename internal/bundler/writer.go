package bundler

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/vk/fxbuild/internal/fsutil"
	"github.com/vk/fxbuild/internal/manifest"
)

const filePerm = 0o644

// Layout locates every input and output of a build pass. OutputDir and
// DescriptorPath are relative to Root; bundle references inside the
// descriptor are derived from OutputDir.
type Layout struct {
	Root           string
	ManifestPath   string
	SourceDir      string
	OutputDir      string
	DescriptorPath string
}

// DefaultLayout returns the conventional project layout rooted at root.
func DefaultLayout(root string) Layout {
	return Layout{
		Root:           root,
		ManifestPath:   "manifest.json",
		SourceDir:      "src",
		OutputDir:      "dist",
		DescriptorPath: "fxmanifest.lua",
	}
}

// abs resolves p against the layout root.
func (l Layout) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(l.Root, p)
}

// Manifest returns the manifest path on disk.
func (l Layout) Manifest() string { return l.abs(l.ManifestPath) }

// Source returns the source directory on disk.
func (l Layout) Source() string { return l.abs(l.SourceDir) }

// Descriptor returns the descriptor path on disk.
func (l Layout) Descriptor() string { return l.abs(l.DescriptorPath) }

// BundleRef is the descriptor entry for the bundle of category c.
func (l Layout) BundleRef(c manifest.Category) string {
	return path.Join(filepath.ToSlash(l.OutputDir), string(c)+".lua")
}

// BundlePath returns the bundle file of category c on disk.
func (l Layout) BundlePath(c manifest.Category) string {
	return l.abs(filepath.FromSlash(l.BundleRef(c)))
}

// Writer persists bundles and descriptors with overwrite semantics.
type Writer struct {
	layout Layout
}

// NewWriter creates a writer for the given layout.
func NewWriter(layout Layout) *Writer {
	return &Writer{layout: layout}
}

// WriteBundles writes every bundle, empty ones included, and returns the
// written paths in category order.
func (w *Writer) WriteBundles(bundles []Bundle) ([]string, error) {
	written := make([]string, 0, len(bundles))
	for _, b := range bundles {
		p := w.layout.BundlePath(b.Category)
		if err := fsutil.WriteFileAtomic(p, b.Content, filePerm); err != nil {
			return written, fmt.Errorf("failed to write %s bundle: %w", b.Category, err)
		}
		written = append(written, p)
	}
	return written, nil
}

// WriteDescriptor writes the rendered descriptor and returns its path.
func (w *Writer) WriteDescriptor(data []byte) (string, error) {
	p := w.layout.Descriptor()
	if err := fsutil.WriteFileAtomic(p, data, filePerm); err != nil {
		return "", fmt.Errorf("failed to write descriptor: %w", err)
	}
	return p, nil
}

// Refs returns the bundle reference of every category.
func (w *Writer) Refs() map[manifest.Category]string {
	refs := make(map[manifest.Category]string, len(manifest.Categories))
	for _, c := range manifest.Categories {
		refs[c] = w.layout.BundleRef(c)
	}
	return refs
}
