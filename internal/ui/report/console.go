// # internal/ui/report/console.go
package report

import (
	"fmt"
	"strings"

	"modmap/internal/graph"
)

// RenderConsole produces the human-readable module listing: one block per
// module with member files and dependency names. structsByModule is optional
// type attribution; pass nil to omit it.
func RenderConsole(result graph.Result, structsByModule map[string][]string) []byte {
	var b strings.Builder

	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("Module boundary analysis\n")
	b.WriteString(strings.Repeat("=", 60) + "\n")

	for _, mod := range result.Modules {
		b.WriteString(fmt.Sprintf("\nModule: %s\n", mod.Name))
		b.WriteString(strings.Repeat("-", 40) + "\n")
		for _, f := range mod.Files {
			b.WriteString(fmt.Sprintf("  file: %s\n", f))
		}
		if types := structsByModule[mod.Name]; len(types) > 0 {
			b.WriteString(fmt.Sprintf("  types: %s\n", strings.Join(types, ", ")))
		}
		if len(mod.Dependencies) > 0 {
			b.WriteString(fmt.Sprintf("  depends on: %s\n", strings.Join(mod.Dependencies, ", ")))
		} else {
			b.WriteString("  depends on: none\n")
		}
	}

	stats := result.Stats
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%d files in %d modules (%d singleton, %d merged)\n",
		stats.FileCount, stats.ModuleCount, stats.SingletonCount, stats.MergedCount))
	if stats.DroppedEdges > 0 {
		b.WriteString(fmt.Sprintf("%d call edges dropped (unknown files)\n", stats.DroppedEdges))
	}

	return []byte(b.String())
}
