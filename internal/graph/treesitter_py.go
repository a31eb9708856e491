package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// pyExtractor extracts components and dependency edges from Python source.
type pyExtractor struct{}

func (e *pyExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
	var components []Component
	e.collectDecls(root, f, scope{}, &components)

	table := newDeclTable()
	for i := range components {
		table.add(&components[i])
	}

	var edges []DependencyEdge
	e.collectRels(root, f, scope{}, table, &edges)
	return components, edges
}

// collectDecls is the declaration pass: every class and function definition
// becomes a Component. Scope is threaded by value so siblings are isolated.
func (e *pyExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, sc scope, out *[]Component) {
	switch node.Kind() {
	case "class_definition":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		doc := pyDocstring(node, f.source)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          KindClass,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			HasDocstring:  doc != "",
			Docstring:     doc,
			BaseTypes:     pyBaseTypes(node, f.source),
			EnclosingType: sc.enclosingType,
			DisplayLabel:  name,
		})
		body := node.ChildByFieldName("body")
		if body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectDecls(c, f, scope{enclosingType: name}, out)
			})
		}
		return

	case "function_definition":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		kind := KindFunction
		label := name
		if sc.enclosingType != "" {
			kind = KindMethod
			label = sc.enclosingType + "." + name
		}
		start, end := span(node)
		doc := pyDocstring(node, f.source)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          kind,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			HasDocstring:  doc != "",
			Docstring:     doc,
			Parameters:    paramList(node.ChildByFieldName("parameters"), f.source),
			EnclosingType: sc.enclosingType,
			DisplayLabel:  label,
		})
		// Nested defs are not components; do not descend.
		return
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectDecls(c, f, sc, out)
	})
}

// collectRels is the relationship pass: calls and class inheritance become
// edges attributed to the innermost enclosing declaration.
func (e *pyExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "class_definition":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		classID := f.componentID(sc.enclosingType, name)
		for _, base := range pyBaseTypes(node, f.source) {
			root := strings.SplitN(base, ".", 2)[0]
			if pythonBuiltins[root] {
				continue
			}
			line, _ := span(node)
			*out = append(*out, localEdge(f, table, classID, base, line, EdgeKindInherits))
		}
		body := node.ChildByFieldName("body")
		if body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectRels(c, f, scope{enclosingType: name}, table, out)
			})
		}
		return

	case "function_definition":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		inner := scope{enclosingType: sc.enclosingType, enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "call":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		callee := e.callName(node.ChildByFieldName("function"), f.source)
		if callee == "" {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, callee, line, EdgeKindCall))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

// callName extracts the called name from the function part of a call node.
// Simple identifiers come back as-is, self.x collapses to x so methods of
// the current class resolve locally, and other attributes keep their
// dotted form. Builtins yield "".
func (e *pyExtractor) callName(fn *tree_sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		name := fn.Utf8Text(source)
		if pythonBuiltins[name] {
			return ""
		}
		return name
	case "attribute":
		obj := fn.ChildByFieldName("object")
		attr := nodeText(fn.ChildByFieldName("attribute"), source)
		if attr == "" {
			return ""
		}
		if obj != nil && obj.Kind() == "identifier" {
			base := obj.Utf8Text(source)
			if pythonBuiltins[base] {
				return ""
			}
			if base == "self" || base == "cls" {
				return attr
			}
			return base + "." + attr
		}
		return attr
	}
	return ""
}

// pyBaseTypes returns the named superclasses of a class_definition.
func pyBaseTypes(node *tree_sitter.Node, source []byte) []string {
	args := node.ChildByFieldName("superclasses")
	if args == nil {
		return nil
	}
	var bases []string
	eachChild(args, func(c *tree_sitter.Node) {
		switch c.Kind() {
		case "identifier", "attribute":
			bases = append(bases, c.Utf8Text(source))
		case "keyword_argument":
			// metaclass=... and friends are not base types
		}
	})
	return bases
}

// pyDocstring returns the leading string literal of a class or function
// body, with surrounding quotes stripped.
func pyDocstring(node *tree_sitter.Node, source []byte) string {
	body := node.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first == nil || first.Kind() != "expression_statement" {
		return ""
	}
	str := firstChildOfKind(first, "string")
	if str == nil {
		return ""
	}
	return strings.Trim(str.Utf8Text(source), "\"'\n\t ")
}
