package bundler

import (
	"errors"
	"fmt"

	"github.com/vk/fxbuild/internal/manifest"
)

// ErrSourceRead marks a pass aborted because a listed source file could not
// be read.
var ErrSourceRead = errors.New("source file unreadable")

// SourceFileError reports the manifest entry whose file could not be read.
type SourceFileError struct {
	Category manifest.Category
	Entry    string
	Path     string
	Err      error
}

func (e *SourceFileError) Error() string {
	return fmt.Sprintf("failed to read %s script %q (%s): %v", e.Category, e.Entry, e.Path, e.Err)
}

func (e *SourceFileError) Unwrap() []error {
	return []error{ErrSourceRead, e.Err}
}
