package graph

import (
	"sort"
	"strings"
)

// ClusterOptions tunes directory-based module clustering.
type ClusterOptions struct {
	// Containers lists top-level wrapper directories that hold the real
	// code one level down, such as a directory named after the project.
	// "lib" and "app" are always treated as containers.
	Containers []string

	// MaxDepth bounds the module hierarchy. Values <= 1 produce the
	// flat baseline tree; larger values sub-group module members by
	// their remaining directory segments, one child level per depth.
	MaxDepth int
}

// builtin container segments collapsed before picking a module name.
var containerDirs = []string{"lib", "app"}

// ClusterModules groups leaf components into modules by directory
// structure. The result is a coarse starting tree that downstream
// consumers refine; components in root-level files are left unclustered.
//
// Naming follows the shallowest meaningful segment: "src/be/parser.py"
// clusters under "be", "app/src/be/parser.py" under "src/be", and
// "cli/run.py" under "cli".
func ClusterModules(leaves []string, components map[string]*Component, opts ClusterOptions) ModuleTree {
	containers := make(map[string]bool, len(containerDirs)+len(opts.Containers))
	for _, c := range containerDirs {
		containers[c] = true
	}
	for _, c := range opts.Containers {
		containers[c] = true
	}

	maxDepth := opts.MaxDepth
	if maxDepth < 1 {
		maxDepth = 1
	}

	tree := make(ModuleTree)
	for _, leaf := range leaves {
		component, ok := components[leaf]
		if !ok {
			continue
		}
		name, rest := moduleKeyFor(component.RelativePath, containers)
		if name == "" {
			continue
		}
		mod, ok := tree[name]
		if !ok {
			mod = &Module{Path: name, Children: map[string]*Module{}}
			tree[name] = mod
		}
		mod.place(leaf, rest, 1, maxDepth)
	}

	for _, mod := range tree {
		mod.sortMembers()
	}
	return tree
}

// place inserts a component at the right hierarchy level. rest holds the
// path segments below the module's directory, the file name last; a
// component descends one child level per remaining directory segment
// until maxDepth is reached.
func (m *Module) place(leaf string, rest []string, depth, maxDepth int) {
	if depth >= maxDepth || len(rest) <= 1 {
		m.Components = append(m.Components, leaf)
		return
	}
	seg := rest[0]
	child, ok := m.Children[seg]
	if !ok {
		child = &Module{Path: m.Path + "/" + seg, Children: map[string]*Module{}}
		m.Children[seg] = child
	}
	child.place(leaf, rest[1:], depth+1, maxDepth)
}

func (m *Module) sortMembers() {
	sort.Strings(m.Components)
	for _, child := range m.Children {
		child.sortMembers()
	}
}

// moduleKeyFor derives the module name from a repo-relative file path,
// plus the path segments left below the module's directory. Root-level
// files yield "".
func moduleKeyFor(relPath string, containers map[string]bool) (string, []string) {
	parts := strings.Split(relPath, "/")
	if len(parts) <= 1 {
		return "", nil
	}

	switch {
	case containers[parts[0]] && len(parts) > 2:
		// A wrapper directory: name by the level below it, and keep the
		// src/<area> pair together when the wrapper holds a src tree.
		if parts[1] == "src" && len(parts) > 3 {
			return parts[1] + "/" + parts[2], parts[3:]
		}
		return parts[1], parts[2:]
	case parts[0] == "src" && len(parts) > 2:
		return parts[1], parts[2:]
	default:
		return parts[0], parts[1:]
	}
}

// ModuleNames returns the sorted module names of a tree.
func (t ModuleTree) ModuleNames() []string {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ComponentCount returns the number of components across every module,
// children included.
func (t ModuleTree) ComponentCount() int {
	total := 0
	for _, mod := range t {
		total += mod.count()
	}
	return total
}

func (m *Module) count() int {
	total := len(m.Components)
	for _, child := range m.Children {
		total += child.count()
	}
	return total
}
