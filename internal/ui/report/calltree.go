package report

import (
	"sort"
	"strings"

	"modmap/internal/metadata"
)

// RenderCallTree prints the function call hierarchy as an indented text
// tree, one tree per root (a function nobody calls). Cycles are cut at the
// repeated node with a marker.
func RenderCallTree(edges []metadata.CallEdge) []byte {
	children := make(map[metadata.FunctionID][]metadata.FunctionID)
	called := make(map[metadata.FunctionID]bool)
	nodes := make(map[metadata.FunctionID]bool)

	for _, e := range edges {
		children[e.Caller] = append(children[e.Caller], e.Callee)
		called[e.Callee] = true
		nodes[e.Caller] = true
		nodes[e.Callee] = true
	}
	for id := range children {
		sort.Slice(children[id], func(i, j int) bool {
			return children[id][i].String() < children[id][j].String()
		})
	}

	var roots []metadata.FunctionID
	for id := range nodes {
		if !called[id] {
			roots = append(roots, id)
		}
	}
	if len(roots) == 0 {
		// Fully cyclic graph: start from every caller.
		for id := range children {
			roots = append(roots, id)
		}
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].String() < roots[j].String() })

	var b strings.Builder
	for _, root := range roots {
		b.WriteString(root.String() + "\n")
		onPath := map[metadata.FunctionID]bool{root: true}
		renderSubtree(&b, children, root, "", onPath)
	}
	return []byte(b.String())
}

func renderSubtree(b *strings.Builder, children map[metadata.FunctionID][]metadata.FunctionID, node metadata.FunctionID, prefix string, onPath map[metadata.FunctionID]bool) {
	kids := children[node]
	for i, kid := range kids {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(kids)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}

		if onPath[kid] {
			b.WriteString(prefix + connector + kid.String() + " (cycle)\n")
			continue
		}

		b.WriteString(prefix + connector + kid.String() + "\n")
		onPath[kid] = true
		renderSubtree(b, children, kid, childPrefix, onPath)
		delete(onPath, kid)
	}
}
