package report

import (
	"fmt"
	"strings"

	"modmap/internal/graph"
)

// RenderTSV emits one row per module for spreadsheet-style consumption.
func RenderTSV(result graph.Result) []byte {
	var buf strings.Builder

	buf.WriteString("Module\tFiles\tBytes\tDependencies\n")
	for _, mod := range result.Modules {
		buf.WriteString(fmt.Sprintf(
			"%s\t%d\t%d\t%s\n",
			mod.Name,
			len(mod.Files),
			mod.Bytes,
			strings.Join(mod.Dependencies, ","),
		))
	}

	return []byte(buf.String())
}
