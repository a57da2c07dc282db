package metadata

import (
	"strings"

	"modmap/internal/shared/util"
)

// FunctionID identifies a function by its defining file and name. Extractor
// documents encode it as "<relative_path>:<name>"; the name alone is not
// unique across files.
type FunctionID struct {
	File string
	Name string
}

func (id FunctionID) String() string {
	return id.File + ":" + id.Name
}

// ParseFunctionID splits an extractor key on the first colon. Keys produced
// for unresolvable callees use the reserved "unknown" file prefix.
func ParseFunctionID(key string) (FunctionID, bool) {
	file, name, ok := strings.Cut(key, ":")
	if !ok || name == "" {
		return FunctionID{}, false
	}
	return FunctionID{File: util.NormalizePath(file), Name: name}, true
}

// CallEdge is a directed caller -> callee relation. Edges are deduplicated
// at load time.
type CallEdge struct {
	Caller FunctionID
	Callee FunctionID
}

type FunctionSpan struct {
	Name      string `json:"name"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// FileRecord is one entry of the file-info document. Size is resolved
// against the project directory after loading; a missing source file keeps
// size zero, matching the extractor's behavior.
type FileRecord struct {
	Path      string         `json:"file"`
	Functions []FunctionSpan `json:"functions"`
	Includes  []string       `json:"includes"`
	Size      int64          `json:"-"`
}

// StructRecord is one entry of the optional struct-info document. Unions and
// enums share the shape, keyed by a different name field.
type StructRecord struct {
	Name      string        `json:"-"`
	Kind      string        `json:"-"`
	Fields    []StructField `json:"fields"`
	DefinedIn string        `json:"defined_in"`
	StartLine int           `json:"start_line"`
	EndLine   int           `json:"end_line"`
}

type StructField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}
