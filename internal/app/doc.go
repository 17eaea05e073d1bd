// Package app contains the core application logic. It defines the main App
// struct, its configuration and the two operating profiles, decoupled from
// any specific entrypoint like a CLI.
//
// The production profile runs exactly one build pass (and an optional
// upload) and returns. The development profile keeps a remote console
// connection to the host, watches the sources and rebuilds on every change.
package app
