package manifest

import "strings"

// ExternalMarker prefixes entries that are already resource references.
const ExternalMarker = "@"

// Category is one of the three script classes, each compiled to its own bundle.
type Category string

const (
	Shared Category = "shared"
	Server Category = "server"
	Client Category = "client"
)

// Categories lists every category in the order bundles and descriptor blocks
// are produced.
var Categories = []Category{Shared, Server, Client}

// Manifest is the parsed manifest document.
type Manifest struct {
	FxVersion string   `json:"fxVersion" yaml:"fxVersion"`
	Games     []string `json:"games" yaml:"games"`
	Scripts   Scripts  `json:"scripts" yaml:"scripts"`
}

// Scripts maps each category to its ordered file list.
type Scripts struct {
	Shared []string `json:"shared" yaml:"shared"`
	Server []string `json:"server" yaml:"server"`
	Client []string `json:"client" yaml:"client"`
}

// Files returns the declared entries of a category. The returned slice must
// not be modified.
func (m *Manifest) Files(c Category) []string {
	switch c {
	case Shared:
		return m.Scripts.Shared
	case Server:
		return m.Scripts.Server
	case Client:
		return m.Scripts.Client
	}
	return nil
}

// IsExternal reports whether entry is a pass-through resource reference.
func IsExternal(entry string) bool {
	return strings.HasPrefix(entry, ExternalMarker)
}

// External returns the external entries of a category in declaration order.
func (m *Manifest) External(c Category) []string {
	var out []string
	for _, entry := range m.Files(c) {
		if IsExternal(entry) {
			out = append(out, entry)
		}
	}
	return out
}
