package manifest

import (
	"errors"
	"fmt"
)

// ErrParse marks every failure that makes a manifest unusable for a build
// pass: unreadable file, malformed document or failed validation.
var ErrParse = errors.New("invalid manifest")

// ParseError reports a manifest that could not be read or decoded.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// ValidationError reports a well-formed manifest whose content is rejected.
type ValidationError struct {
	Path   string
	Issues []error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("manifest %s failed validation: %v", e.Path, errors.Join(e.Issues...))
}

func (e *ValidationError) Unwrap() []error {
	return append([]error{ErrParse}, e.Issues...)
}
