package config

import "context"

// Loader is the interface for a format-specific project file loader.
type Loader interface {
	// Load reads the project file at path and merges it over Defaults. A
	// missing file yields the defaults.
	Load(ctx context.Context, path string) (*Project, error)
}
