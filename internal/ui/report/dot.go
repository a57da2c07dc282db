// # internal/ui/report/dot.go
package report

import (
	"fmt"
	"strings"

	"modmap/internal/graph"
)

// RenderDOT emits the module dependency graph in Graphviz syntax. Merged
// modules are filled so grouping decisions stand out from singletons.
func RenderDOT(result graph.Result) []byte {
	var buf strings.Builder

	buf.WriteString("digraph modules {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	for _, mod := range result.Modules {
		label := moduleLabel(mod)
		if len(mod.Files) > 1 {
			buf.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\", fillcolor=\"lightyellow\", style=\"rounded,filled\"];\n", mod.Name, label))
		} else {
			buf.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\"];\n", mod.Name, label))
		}
	}
	buf.WriteString("\n")

	for _, edge := range result.Edges {
		buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\";\n", edge.From, edge.To))
	}

	buf.WriteString("}\n")
	return []byte(buf.String())
}
