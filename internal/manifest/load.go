package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads the manifest at path, decodes it according to its extension and
// validates it. Any failure is returned as a *ParseError or *ValidationError,
// both matching ErrParse.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	m, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}

	if issues := m.Validate(); len(issues) > 0 {
		return nil, &ValidationError{Path: path, Issues: issues}
	}
	return m, nil
}

// Decode parses manifest bytes. ext selects the format: ".yaml" and ".yml"
// are decoded as YAML, anything else as JSON.
func Decode(data []byte, ext string) (*Manifest, error) {
	var m Manifest
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
	}
	return &m, nil
}

// Validate checks the decoded manifest and returns every problem found.
func (m *Manifest) Validate() []error {
	var issues []error
	if strings.TrimSpace(m.FxVersion) == "" {
		issues = append(issues, fmt.Errorf("fxVersion is required"))
	} else if strings.ContainsAny(m.FxVersion, "'\n") {
		issues = append(issues, fmt.Errorf("fxVersion %q contains a quote or newline", m.FxVersion))
	}
	for i, g := range m.Games {
		switch {
		case strings.TrimSpace(g) == "":
			issues = append(issues, fmt.Errorf("games[%d] is empty", i))
		case strings.ContainsAny(g, "\"\n"):
			issues = append(issues, fmt.Errorf("games[%d] %q contains a quote or newline", i, g))
		}
	}
	for _, c := range Categories {
		for i, entry := range m.Files(c) {
			if err := validateEntry(entry); err != nil {
				issues = append(issues, fmt.Errorf("scripts.%s[%d]: %w", c, i, err))
			}
		}
	}
	return issues
}

func validateEntry(entry string) error {
	if strings.TrimSpace(entry) == "" {
		return fmt.Errorf("entry is empty")
	}
	// Entries are rendered inside double quotes in the descriptor.
	if strings.ContainsAny(entry, "\"\n") {
		return fmt.Errorf("entry %q contains a quote or newline", entry)
	}
	if IsExternal(entry) {
		if entry == ExternalMarker {
			return fmt.Errorf("external reference has no target")
		}
		return nil
	}
	slashed := filepath.ToSlash(entry)
	if path.IsAbs(slashed) || filepath.IsAbs(entry) {
		return fmt.Errorf("entry %q must be relative to the source directory", entry)
	}
	if cleaned := path.Clean(slashed); cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("entry %q escapes the source directory", entry)
	}
	return nil
}
