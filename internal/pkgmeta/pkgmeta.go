// Package pkgmeta resolves the resource name sent with "ensure" commands.
package pkgmeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// PackageFile is the metadata file read from the resource root.
const PackageFile = "package.json"

type packageJSON struct {
	Name string `json:"name"`
}

// ResourceName returns, in order of preference: override, the name field of
// package.json in root, or the base name of root.
func ResourceName(root, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	data, err := os.ReadFile(filepath.Join(root, PackageFile))
	switch {
	case err == nil:
		var pkg packageJSON
		if err := json.Unmarshal(data, &pkg); err != nil {
			return "", fmt.Errorf("failed to parse %s: %w", PackageFile, err)
		}
		if pkg.Name != "" {
			return pkg.Name, nil
		}
	case !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("failed to read %s: %w", PackageFile, err)
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve resource root: %w", err)
	}
	return filepath.Base(abs), nil
}
