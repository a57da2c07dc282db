// # internal/graph/graph.go
package graph

import (
	"log/slog"
	"sort"

	"modmap/internal/metadata"
	"modmap/internal/shared/util"
)

// Input carries everything the partitioner needs. Partition is a pure
// function over it: no ambient state, identical input yields identical
// output.
type Input struct {
	Edges          []metadata.CallEdge
	Files          []metadata.FileRecord
	EntryFunction  string
	InitPatterns   []string
	MaxModuleBytes int64
}

// Module is one named partition of the input files. Immutable once emitted.
type Module struct {
	Name         string
	Files        []string
	Bytes        int64
	Dependencies []string
}

// DependencyEdge preserves call direction between modules. Module-level
// Dependencies are directionless; emitters that care about direction use
// these edges instead.
type DependencyEdge struct {
	From string
	To   string
}

type Stats struct {
	FileCount       int
	ModuleCount     int
	SingletonCount  int
	MergedCount     int
	MaxModuleBytes  int64
	DependencyEdges int
	DroppedEdges    int
}

type Result struct {
	Modules []Module
	Edges   []DependencyEdge
	Stats   Stats
}

// fileGraph is the file-level view of the call graph: directed cross-file
// call relations plus the undirected same-directory mergeable relation.
type fileGraph struct {
	records   map[string]*metadata.FileRecord
	calls     map[string]map[string]bool
	mergeable map[string]map[string]bool
	dropped   int
}

func buildFileGraph(in Input) *fileGraph {
	fg := &fileGraph{
		records:   make(map[string]*metadata.FileRecord, len(in.Files)),
		calls:     make(map[string]map[string]bool),
		mergeable: make(map[string]map[string]bool),
	}
	for i := range in.Files {
		rec := &in.Files[i]
		fg.records[rec.Path] = rec
	}

	for _, edge := range in.Edges {
		callerFile := util.NormalizePath(edge.Caller.File)
		calleeFile := util.NormalizePath(edge.Callee.File)

		if _, ok := fg.records[callerFile]; !ok {
			slog.Warn("dropping call edge with unknown caller file", "caller", edge.Caller.String())
			fg.dropped++
			continue
		}
		if _, ok := fg.records[calleeFile]; !ok {
			slog.Warn("dropping call edge with unknown callee file", "callee", edge.Callee.String())
			fg.dropped++
			continue
		}
		if callerFile == calleeFile {
			continue
		}

		if fg.calls[callerFile] == nil {
			fg.calls[callerFile] = make(map[string]bool)
		}
		fg.calls[callerFile][calleeFile] = true

		// Merging never crosses a directory boundary.
		if util.DirOf(callerFile) == util.DirOf(calleeFile) {
			fg.link(callerFile, calleeFile)
			fg.link(calleeFile, callerFile)
		}
	}

	return fg
}

func (fg *fileGraph) link(a, b string) {
	if fg.mergeable[a] == nil {
		fg.mergeable[a] = make(map[string]bool)
	}
	fg.mergeable[a][b] = true
}

// components finds connected components of the mergeable relation within the
// given file set. Both discovery and membership are ordered lexicographically
// so repeated runs produce identical output.
func (fg *fileGraph) components(files []string) [][]string {
	inSet := make(map[string]bool, len(files))
	for _, f := range files {
		inSet[f] = true
	}

	ordered := append([]string(nil), files...)
	sort.Strings(ordered)

	visited := make(map[string]bool, len(files))
	var result [][]string

	for _, start := range ordered {
		if visited[start] {
			continue
		}
		component := []string{}
		stack := []string{start}
		visited[start] = true
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, current)
			for _, neighbor := range util.SortedStringKeys(fg.mergeable[current]) {
				if inSet[neighbor] && !visited[neighbor] {
					visited[neighbor] = true
					stack = append(stack, neighbor)
				}
			}
		}
		sort.Strings(component)
		result = append(result, component)
	}

	return result
}

func (fg *fileGraph) totalBytes(files []string) int64 {
	var total int64
	for _, f := range files {
		if rec, ok := fg.records[f]; ok {
			total += rec.Size
		}
	}
	return total
}
