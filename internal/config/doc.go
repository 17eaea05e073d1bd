// Package config defines the format-agnostic project configuration of a
// resource, along with the Loader interface for reading it from a project
// file. The concrete HCL implementation lives in the hcl_adapter package.
//
// A missing project file is not an error: every field has a default that
// matches the conventional layout (manifest.json, src/, dist/,
// fxmanifest.lua) and the local remote console.
package config
