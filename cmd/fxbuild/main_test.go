package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun_StartupError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A project file with a syntax error stops the app before any build.
	tempDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tempDir, "fxbuild.hcl"), []byte(`paths {`), 0o600)
	require.NoError(t, err, "failed to set up test file")

	out := &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, []string{"-mode", "production", tempDir})

	// --- Assert ---
	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "application startup failed")
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_ProductionBuild(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	tempDir := t.TempDir()
	files := map[string]string{
		"manifest.json": `{"fxVersion":"cerulean","games":["gta5"],"scripts":{"shared":[],"server":["main.lua"],"client":[]}}`,
		"src/main.lua":  "print('server')",
	}
	for rel, content := range files {
		full := filepath.Join(tempDir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, []string{"--mode=production", "--env-file", "", tempDir})

	// --- Assert ---
	require.NoError(t, err)
	data, err := os.ReadFile(filepath.Join(tempDir, "dist", "server.lua"))
	require.NoError(t, err)
	require.Equal(t, "print('server')\n", string(data))
	require.FileExists(t, filepath.Join(tempDir, "fxmanifest.lua"))
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
