package report

import (
	"encoding/json"

	"modmap/internal/graph"
)

type moduleEntry struct {
	Module       string   `json:"module"`
	Files        []string `json:"files"`
	Dependencies []string `json:"dependencies"`
}

// RenderStructure serializes the partition as the module_structure document:
// an array of {module, files, dependencies} objects in discovery order.
func RenderStructure(result graph.Result) ([]byte, error) {
	entries := make([]moduleEntry, 0, len(result.Modules))
	for _, mod := range result.Modules {
		deps := mod.Dependencies
		if deps == nil {
			deps = []string{}
		}
		entries = append(entries, moduleEntry{
			Module:       mod.Name,
			Files:        mod.Files,
			Dependencies: deps,
		})
	}
	return json.MarshalIndent(entries, "", "  ")
}
