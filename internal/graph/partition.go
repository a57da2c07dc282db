package graph

import (
	"sort"
	"strings"

	"modmap/internal/metadata"
	"modmap/internal/shared/util"
)

// Partition groups the input files into modules: connected components of the
// same-directory mergeable graph, refined by the entry-point, init-pattern
// and size exclusion rules, then named and wired with dependency edges.
//
// Every input file lands in exactly one module.
func Partition(in Input) Result {
	fg := buildFileGraph(in)

	byDir := make(map[string][]string)
	for _, rec := range in.Files {
		dir := util.DirOf(rec.Path)
		byDir[dir] = append(byDir[dir], rec.Path)
	}

	namer := newNamer()
	var modules []Module

	for _, dir := range util.SortedStringKeys(byDir) {
		files := byDir[dir]
		sort.Strings(files)

		var groups [][]string
		for _, component := range fg.components(files) {
			groups = append(groups, refineCandidate(fg, in, component)...)
		}

		// Candidates surface in order of their smallest member path so
		// collision suffixes are stable across runs.
		sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })

		for _, group := range groups {
			modules = append(modules, Module{
				Name:  namer.name(dir, group),
				Files: group,
				Bytes: fg.totalBytes(group),
			})
		}
	}

	disambiguateNames(modules)
	edges := dependencyEdges(fg, modules)
	attachDependencies(modules, edges)

	return Result{
		Modules: modules,
		Edges:   edges,
		Stats:   computeStats(in, fg, modules, edges),
	}
}

// refineCandidate applies the exclusion rules to one connected component, in
// precedence order: entry-point isolation, init-pattern isolation, then the
// merge size ceiling. Splitting a file out re-groups the remainder over the
// component's original subgraph edges only.
func refineCandidate(fg *fileGraph, in Input, component []string) [][]string {
	entries, rest := splitMatching(component, func(f string) bool {
		return hasFunction(fg.records[f], in.EntryFunction)
	})

	var groups [][]string
	for _, f := range entries {
		groups = append(groups, []string{f})
	}

	for _, sub := range regroup(fg, rest) {
		groups = append(groups, refineInit(fg, in, sub)...)
	}
	return groups
}

func refineInit(fg *fileGraph, in Input, component []string) [][]string {
	inits, rest := splitMatching(component, func(f string) bool {
		return hasInitFunction(fg.records[f], in.InitPatterns)
	})

	var groups [][]string
	for _, f := range inits {
		groups = append(groups, []string{f})
	}

	for _, sub := range regroup(fg, rest) {
		groups = append(groups, applySizeCeiling(fg, in, sub)...)
	}
	return groups
}

// applySizeCeiling rejects the merge wholesale when the candidate is too
// large: the entire component falls back to one file per module. A single
// file over the ceiling stays a singleton either way.
func applySizeCeiling(fg *fileGraph, in Input, component []string) [][]string {
	if len(component) > 1 && fg.totalBytes(component) > in.MaxModuleBytes {
		groups := make([][]string, 0, len(component))
		for _, f := range component {
			groups = append(groups, []string{f})
		}
		return groups
	}
	return [][]string{component}
}

func splitMatching(files []string, match func(string) bool) (matched, rest []string) {
	for _, f := range files {
		if match(f) {
			matched = append(matched, f)
		} else {
			rest = append(rest, f)
		}
	}
	return matched, rest
}

func regroup(fg *fileGraph, files []string) [][]string {
	if len(files) == 0 {
		return nil
	}
	return fg.components(files)
}

func hasFunction(rec *metadata.FileRecord, name string) bool {
	if rec == nil || name == "" {
		return false
	}
	for _, fn := range rec.Functions {
		if fn.Name == name {
			return true
		}
	}
	return false
}

func hasInitFunction(rec *metadata.FileRecord, patterns []string) bool {
	if rec == nil {
		return false
	}
	for _, fn := range rec.Functions {
		lower := strings.ToLower(fn.Name)
		for _, pattern := range patterns {
			if strings.Contains(lower, strings.ToLower(pattern)) {
				return true
			}
		}
	}
	return false
}

// disambiguateNames qualifies module names that collide across directories
// with their parent directory, so every module name in a result is unique and
// dependency lists stay unambiguous for consumers.
func disambiguateNames(modules []Module) {
	count := make(map[string]int)
	for _, mod := range modules {
		count[mod.Name]++
	}
	for i := range modules {
		if count[modules[i].Name] < 2 {
			continue
		}
		if dir := util.DirOf(modules[i].Files[0]); dir != "" {
			modules[i].Name = dir + "/" + modules[i].Name
		}
	}
}

// dependencyEdges lifts directed file-level call relations to module level.
// Module identity is the index into the modules slice, not the display name.
func dependencyEdges(fg *fileGraph, modules []Module) []DependencyEdge {
	moduleOf := make(map[string]int)
	for i, mod := range modules {
		for _, f := range mod.Files {
			moduleOf[f] = i
		}
	}

	seen := make(map[[2]int]bool)
	var edges []DependencyEdge
	for _, from := range util.SortedStringKeys(fg.calls) {
		for _, to := range util.SortedStringKeys(fg.calls[from]) {
			fromIdx, fromOK := moduleOf[from]
			toIdx, toOK := moduleOf[to]
			if !fromOK || !toOK || fromIdx == toIdx {
				continue
			}
			key := [2]int{fromIdx, toIdx}
			if seen[key] {
				continue
			}
			seen[key] = true
			edges = append(edges, DependencyEdge{
				From: modules[fromIdx].Name,
				To:   modules[toIdx].Name,
			})
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}

// attachDependencies fills each module's directionless dependency list from
// the directed edge set.
func attachDependencies(modules []Module, edges []DependencyEdge) {
	related := make(map[string]map[string]bool)
	add := func(a, b string) {
		if related[a] == nil {
			related[a] = make(map[string]bool)
		}
		related[a][b] = true
	}
	for _, edge := range edges {
		add(edge.From, edge.To)
		add(edge.To, edge.From)
	}

	for i := range modules {
		modules[i].Dependencies = util.SortedStringKeys(related[modules[i].Name])
	}
}

func computeStats(in Input, fg *fileGraph, modules []Module, edges []DependencyEdge) Stats {
	stats := Stats{
		FileCount:       len(in.Files),
		ModuleCount:     len(modules),
		DependencyEdges: len(edges),
		DroppedEdges:    fg.dropped,
	}
	for _, mod := range modules {
		if len(mod.Files) == 1 {
			stats.SingletonCount++
		} else {
			stats.MergedCount++
		}
		if mod.Bytes > stats.MaxModuleBytes {
			stats.MaxModuleBytes = mod.Bytes
		}
	}
	return stats
}
