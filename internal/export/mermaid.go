// Package export renders analysis results into human-readable formats.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/eitatech/gatomia-wiki/internal/graph"
)

// GenerateMermaid produces a Mermaid graph TD diagram of the component
// dependency graph. Leaf components are grouped into module subgraphs;
// resolved edges become arrows labeled by relationship kind.
func GenerateMermaid(g *graph.Graph, tree graph.ModuleTree) string {
	// Node ids must be alphanumeric for Mermaid.
	nodeIDs := make(map[string]string)
	nextID := 0
	getID := func(component string) string {
		if id, ok := nodeIDs[component]; ok {
			return id
		}
		id := fmt.Sprintf("N%d", nextID)
		nextID++
		nodeIDs[component] = id
		return id
	}

	moduleOf := make(map[string]string)
	for _, name := range tree.ModuleNames() {
		for _, component := range memberIDs(tree[name]) {
			moduleOf[component] = name
		}
	}

	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, name := range tree.ModuleNames() {
		members := memberIDs(tree[name])
		if len(members) == 0 {
			continue
		}
		sort.Strings(members)

		sb.WriteString(fmt.Sprintf("  subgraph %s[\"%.40s\"]\n", getID(name+"_module"), name))
		for _, member := range members {
			sb.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", getID(member), shortLabel(member)))
		}
		sb.WriteString("  end\n")
	}

	for _, id := range g.Order {
		if _, clustered := moduleOf[id]; clustered {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s[\"%s\"]\n", getID(id), shortLabel(id)))
	}

	for _, e := range g.ResolvedEdges() {
		if e.Caller == e.Callee {
			continue
		}
		src, tgt := getID(e.Caller), getID(e.Callee)
		if e.Kind != "" && e.Kind != graph.EdgeKindCall {
			sb.WriteString(fmt.Sprintf("  %s -->|%s| %s\n", src, e.Kind, tgt))
			continue
		}
		sb.WriteString(fmt.Sprintf("  %s --> %s\n", src, tgt))
	}

	return sb.String()
}

// memberIDs returns a module's component ids, child modules included.
func memberIDs(m *graph.Module) []string {
	out := append([]string(nil), m.Components...)
	for _, child := range m.Children {
		out = append(out, memberIDs(child)...)
	}
	return out
}

// shortLabel returns the last 2 id segments for readability.
func shortLabel(id string) string {
	parts := strings.Split(id, ".")
	if len(parts) <= 2 {
		return id
	}
	return strings.Join(parts[len(parts)-2:], ".")
}
