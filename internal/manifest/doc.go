// Package manifest loads and validates the resource manifest: the structured
// document that lists the fx version, the target games and, per script
// category, the ordered list of source files to bundle.
//
// Entries prefixed with ExternalMarker are references to files provided by
// another resource. They are never read from disk; the descriptor writer
// passes them through verbatim.
package manifest
