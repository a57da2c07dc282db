package report

import (
	"fmt"
	"strings"
	"unicode"

	"modmap/internal/graph"
)

// RenderMermaid draws the module dependency graph as a Mermaid flowchart.
// Edges keep call direction even though the console report is directionless.
func RenderMermaid(result graph.Result) []byte {
	var b strings.Builder
	b.WriteString("%%{init: {'theme': 'base', 'flowchart': {'nodeSpacing': 60, 'rankSpacing': 90, 'curve': 'basis'}}}%%\n")
	b.WriteString("flowchart LR\n")

	names := make([]string, 0, len(result.Modules))
	for _, mod := range result.Modules {
		names = append(names, mod.Name)
	}
	ids := makeIDs(names)

	for _, mod := range result.Modules {
		b.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", ids[mod.Name], escapeLabel(moduleLabel(mod))))
	}

	if len(names) > 0 {
		b.WriteString("\n")
		b.WriteString("  classDef moduleNode fill:#f7fbff,stroke:#4d6480,stroke-width:1px,color:#000000;\n")
		b.WriteString("  class ")
		b.WriteString(strings.Join(toIDs(names, ids), ","))
		b.WriteString(" moduleNode;\n")
	}

	if len(result.Edges) > 0 {
		b.WriteString("\n")
		for _, edge := range result.Edges {
			b.WriteString(fmt.Sprintf("  %s --> %s\n", ids[edge.From], ids[edge.To]))
		}
	}

	return []byte(b.String())
}

func moduleLabel(mod graph.Module) string {
	return fmt.Sprintf("%s\\n(%d files, %s)", mod.Name, len(mod.Files), humanBytes(mod.Bytes))
}

func humanBytes(n int64) string {
	if n >= 1024 {
		return fmt.Sprintf("%.1f KiB", float64(n)/1024)
	}
	return fmt.Sprintf("%d B", n)
}

func sanitizeID(name string) string {
	if name == "" {
		return "m"
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		b.WriteRune('_')
	}
	out := b.String()
	if out == "" {
		return "m"
	}
	if unicode.IsDigit(rune(out[0])) {
		return "m_" + out
	}
	return out
}

func makeIDs(names []string) map[string]string {
	ids := make(map[string]string, len(names))
	used := make(map[string]int, len(names))
	for _, name := range names {
		base := sanitizeID(name)
		idx := used[base]
		used[base] = idx + 1
		if idx == 0 {
			ids[name] = base
			continue
		}
		ids[name] = fmt.Sprintf("%s_%d", base, idx+1)
	}
	return ids
}

func toIDs(names []string, ids map[string]string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if id, ok := ids[name]; ok {
			out = append(out, id)
		}
	}
	return out
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}
