package bundler

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/vk/fxbuild/internal/manifest"
)

// Separator follows every aggregated file in a bundle.
const Separator = "\n"

// Bundle is the in-memory result of aggregating one category.
type Bundle struct {
	Category manifest.Category
	Content  []byte
	// Sources lists the aggregated entries in concatenation order.
	Sources []string
}

// Aggregate concatenates the non-external entries of every category, in
// declaration order, reading them from srcDir. The first unreadable file
// aborts the whole aggregation with a *SourceFileError.
func Aggregate(srcDir string, m *manifest.Manifest) ([]Bundle, error) {
	bundles := make([]Bundle, 0, len(manifest.Categories))
	for _, c := range manifest.Categories {
		b := Bundle{Category: c}
		var buf bytes.Buffer
		for _, entry := range m.Files(c) {
			if manifest.IsExternal(entry) {
				continue
			}
			path := filepath.Join(srcDir, filepath.FromSlash(entry))
			content, err := os.ReadFile(path)
			if err != nil {
				return nil, &SourceFileError{Category: c, Entry: entry, Path: path, Err: err}
			}
			buf.Write(content)
			buf.WriteString(Separator)
			b.Sources = append(b.Sources, entry)
		}
		b.Content = buf.Bytes()
		bundles = append(bundles, b)
	}
	return bundles, nil
}
