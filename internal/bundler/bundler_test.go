package bundler_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/fxbuild/internal/bundler"
	"github.com/vk/fxbuild/internal/manifest"
)

// project lays out a resource directory for a build pass.
type project struct {
	t    *testing.T
	root string
}

func newProject(t *testing.T, manifestJSON string, sources map[string]string) *project {
	t.Helper()
	p := &project{t: t, root: t.TempDir()}
	p.write("manifest.json", manifestJSON)
	for name, content := range sources {
		p.write(filepath.Join("src", name), content)
	}
	return p
}

func (p *project) write(rel, content string) {
	p.t.Helper()
	full := filepath.Join(p.root, rel)
	require.NoError(p.t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(p.t, os.WriteFile(full, []byte(content), 0o644))
}

func (p *project) read(rel string) string {
	p.t.Helper()
	data, err := os.ReadFile(filepath.Join(p.root, rel))
	require.NoError(p.t, err)
	return string(data)
}

func (p *project) exists(rel string) bool {
	_, err := os.Stat(filepath.Join(p.root, rel))
	return err == nil
}

func (p *project) builder() *bundler.Builder {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return bundler.NewBuilder(bundler.DefaultLayout(p.root),
		bundler.WithClock(func() time.Time { return fixed }),
		bundler.WithIDGenerator(func() string { return "test-build" }),
	)
}

func TestBuild_SharedScenario(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, `{
		"fxVersion": "cerulean",
		"games": ["gta5"],
		"scripts": {
			"shared": ["@other_resource/file.lua", "utils.lua"],
			"server": [],
			"client": []
		}
	}`, map[string]string{"utils.lua": "print('hi')"})

	// --- Act ---
	res, err := p.builder().Build(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "test-build", res.ID)
	require.Equal(t, "print('hi')\n", p.read("dist/shared.lua"))
	require.Equal(t, "", p.read("dist/server.lua"), "empty categories still produce a file")
	require.Equal(t, "", p.read("dist/client.lua"))

	want := `fx_version 'cerulean'
games { "gta5" }
lua54 "yes"
shared_scripts {
    "@other_resource/file.lua",
    "dist/shared.lua"
}
server_scripts {
    "dist/server.lua"
}
client_scripts {
    "dist/client.lua"
}
`
	require.Equal(t, want, p.read("fxmanifest.lua"))
	require.Len(t, res.Files, 4)
	require.Equal(t, filepath.Join(p.root, "fxmanifest.lua"), res.Files[3], "descriptor is written last")
}

func TestBuild_OrderAndMarkers(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, `{
		"fxVersion": "adamant",
		"games": ["gta5", "rdr3"],
		"scripts": {
			"shared": ["b.lua", "@lib/one.lua", "a.lua", "@lib/two.lua"],
			"server": ["server/main.lua", "@oxmysql/lib/MySQL.lua"],
			"client": ["client/nested/ui.lua"]
		}
	}`, map[string]string{
		"a.lua":                "A",
		"b.lua":                "B\n",
		"server/main.lua":      "S",
		"client/nested/ui.lua": "C",
	})

	// --- Act ---
	_, err := p.builder().Build(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "B\n\nA\n", p.read("dist/shared.lua"), "declared order is kept, one separator per file")
	require.Equal(t, "S\n", p.read("dist/server.lua"))
	require.Equal(t, "C\n", p.read("dist/client.lua"))

	descriptor := p.read("fxmanifest.lua")
	require.Contains(t, descriptor, `games { "gta5" , "rdr3" }`)
	require.Contains(t, descriptor, "shared_scripts {\n    \"@lib/one.lua\",\n    \"@lib/two.lua\",\n    \"dist/shared.lua\"\n}\n")
	require.Contains(t, descriptor, "server_scripts {\n    \"@oxmysql/lib/MySQL.lua\",\n    \"dist/server.lua\"\n}\n")
	for _, plain := range []string{"a.lua", "b.lua", "server/main.lua", "client/nested/ui.lua"} {
		assert.NotContains(t, descriptor, `"`+plain+`"`, "aggregated entries never appear individually")
	}
	for _, bundle := range []string{"dist/shared.lua", "dist/server.lua", "dist/client.lua"} {
		assert.NotContains(t, p.read(bundle), "@", "external references are never aggregated")
	}
}

func TestBuild_Idempotent(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, `{
		"fxVersion": "cerulean",
		"games": ["gta5"],
		"scripts": {"shared": ["x.lua"], "server": ["@a/b.lua", "y.lua"], "client": ["x.lua"]}
	}`, map[string]string{"x.lua": "local x = 1", "y.lua": "local y = 2"})
	outputs := []string{"dist/shared.lua", "dist/server.lua", "dist/client.lua", "fxmanifest.lua"}

	// --- Act ---
	_, err := p.builder().Build(context.Background())
	require.NoError(t, err)
	first := make(map[string]string)
	for _, o := range outputs {
		first[o] = p.read(o)
	}
	_, err = p.builder().Build(context.Background())
	require.NoError(t, err)

	// --- Assert ---
	for _, o := range outputs {
		require.Equal(t, first[o], p.read(o), "output %s changed between identical passes", o)
	}
}

func TestBuild_MalformedManifestWritesNothing(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, `{"fxVersion": "cerulean", "scripts": {`, map[string]string{"a.lua": "A"})

	// --- Act ---
	res, err := p.builder().Build(context.Background())

	// --- Assert ---
	require.Nil(t, res)
	require.ErrorIs(t, err, manifest.ErrParse)
	require.False(t, p.exists("dist"), "no output directory may be created")
	require.False(t, p.exists("fxmanifest.lua"))
}

func TestBuild_MalformedManifestKeepsPreviousOutputs(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, `{"fxVersion": "cerulean", "scripts": {"shared": ["a.lua"]}}`, map[string]string{"a.lua": "A"})
	_, err := p.builder().Build(context.Background())
	require.NoError(t, err)
	before := p.read("fxmanifest.lua")
	p.write("manifest.json", `{"fxVersion": `)

	// --- Act ---
	_, err = p.builder().Build(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, manifest.ErrParse)
	require.Equal(t, before, p.read("fxmanifest.lua"))
	require.Equal(t, "A\n", p.read("dist/shared.lua"))
}

func TestBuild_MissingSourceAborts(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, `{
		"fxVersion": "cerulean",
		"scripts": {"shared": ["a.lua"], "server": [], "client": ["missing.lua"]}
	}`, map[string]string{"a.lua": "A"})

	// --- Act ---
	_, err := p.builder().Build(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, bundler.ErrSourceRead)
	var srcErr *bundler.SourceFileError
	require.True(t, errors.As(err, &srcErr))
	require.Equal(t, manifest.Client, srcErr.Category)
	require.Equal(t, "missing.lua", srcErr.Entry)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.False(t, p.exists("fxmanifest.lua"), "no descriptor may reference a bundle from this pass")
	require.False(t, p.exists("dist/shared.lua"), "aggregation fails before any bundle is written")
}

func TestBuild_MissingSourceLeavesPreviousDescriptor(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, `{"fxVersion": "cerulean", "scripts": {"client": ["a.lua"]}}`, map[string]string{"a.lua": "A"})
	_, err := p.builder().Build(context.Background())
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(p.root, "src", "a.lua")))
	p.write("src/b.lua", "B")
	p.write("manifest.json", `{"fxVersion": "bodacious", "scripts": {"client": ["b.lua", "a.lua"]}}`)

	// --- Act ---
	_, err = p.builder().Build(context.Background())

	// --- Assert ---
	require.ErrorIs(t, err, bundler.ErrSourceRead)
	require.True(t, strings.HasPrefix(p.read("fxmanifest.lua"), "fx_version 'cerulean'"))
	require.Equal(t, "A\n", p.read("dist/client.lua"))
}

func TestBuild_CancelledContext(t *testing.T) {
	p := newProject(t, `{"fxVersion": "cerulean"}`, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.builder().Build(ctx)

	require.ErrorIs(t, err, context.Canceled)
	require.False(t, p.exists("fxmanifest.lua"))
}

func TestBuild_CustomLayout(t *testing.T) {
	// --- Arrange ---
	p := newProject(t, "", nil)
	p.write("resource.yaml", "fxVersion: cerulean\nscripts:\n  server: [main.lua]\n")
	p.write("lua/main.lua", "S")
	layout := bundler.Layout{
		Root:           p.root,
		ManifestPath:   "resource.yaml",
		SourceDir:      "lua",
		OutputDir:      "build/out",
		DescriptorPath: "fxmanifest.lua",
	}

	// --- Act ---
	_, err := bundler.NewBuilder(layout).Build(context.Background())

	// --- Assert ---
	require.NoError(t, err)
	require.Equal(t, "S\n", p.read("build/out/server.lua"))
	require.Contains(t, p.read("fxmanifest.lua"), `"build/out/server.lua"`)
}
