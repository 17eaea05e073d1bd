package bundler

import (
	"fmt"
	"strings"

	"github.com/vk/fxbuild/internal/manifest"
)

// interpreterFlag is emitted verbatim into every descriptor.
const interpreterFlag = `lua54 "yes"`

// RenderDescriptor generates the resource descriptor. Each category block
// keeps only the external entries of the manifest, in declaration order,
// followed by the reference to that category's bundle. refs maps every
// category to its bundle path as seen from the descriptor.
func RenderDescriptor(m *manifest.Manifest, refs map[manifest.Category]string) []byte {
	var sb strings.Builder

	fmt.Fprintf(&sb, "fx_version '%s'\n", m.FxVersion)

	games := make([]string, len(m.Games))
	for i, g := range m.Games {
		games[i] = fmt.Sprintf(` "%s" `, g)
	}
	fmt.Fprintf(&sb, "games {%s}\n", strings.Join(games, ","))

	sb.WriteString(interpreterFlag + "\n")

	for _, c := range manifest.Categories {
		entries := append(m.External(c), refs[c])
		quoted := make([]string, len(entries))
		for i, e := range entries {
			quoted[i] = fmt.Sprintf(`    "%s"`, e)
		}
		fmt.Fprintf(&sb, "%s_scripts {\n%s\n}\n", c, strings.Join(quoted, ",\n"))
	}

	return []byte(sb.String())
}
