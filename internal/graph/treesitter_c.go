package graph

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// cExtractor extracts components and dependency edges from C source.
type cExtractor struct{}

func (e *cExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
	var components []Component
	e.collectDecls(root, f, &components)

	table := newDeclTable()
	for i := range components {
		table.add(&components[i])
	}

	var edges []DependencyEdge
	e.collectRels(root, f, scope{}, table, &edges)
	return components, edges
}

func (e *cExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, out *[]Component) {
	switch node.Kind() {
	case "function_definition":
		name := cDeclaratorName(node.ChildByFieldName("declarator"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         KindFunction,
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			Parameters:   cParams(node.ChildByFieldName("declarator"), f.source),
			DisplayLabel: name,
		})
		return

	case "struct_specifier", "enum_specifier":
		// Only definitions with a body declare a type; bare references
		// like "struct foo x;" do not.
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" || node.ChildByFieldName("body") == nil {
			break
		}
		kind := KindStruct
		if node.Kind() == "enum_specifier" {
			kind = KindEnum
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         kind,
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			DisplayLabel: name,
		})

	case "type_definition":
		name := nodeText(node.ChildByFieldName("declarator"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         KindType,
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			DisplayLabel: name,
		})

	case "declaration":
		// File-scope variable definitions.
		if parent := node.Parent(); parent == nil || parent.Kind() != "translation_unit" {
			break
		}
		name := cVariableName(node, f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         KindVariable,
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			DisplayLabel: name,
		})
		return
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectDecls(c, f, out)
	})
}

func (e *cExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "function_definition":
		name := cDeclaratorName(node.ChildByFieldName("declarator"), f.source)
		if name == "" {
			return
		}
		inner := scope{enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "call_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		fn := node.ChildByFieldName("function")
		if fn == nil || fn.Kind() != "identifier" {
			break
		}
		name := fn.Utf8Text(f.source)
		if name == "" || cBuiltins[name] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, name, line, EdgeKindCall))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

// cDeclaratorName unwraps pointer and function declarators down to the
// declared identifier.
func cDeclaratorName(node *tree_sitter.Node, source []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier":
			return node.Utf8Text(source)
		case "function_declarator", "pointer_declarator",
			"array_declarator", "parenthesized_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return ""
		}
	}
	return ""
}

// cParams returns the parameter declarations of a function declarator.
func cParams(node *tree_sitter.Node, source []byte) []string {
	for node != nil && node.Kind() != "function_declarator" {
		node = node.ChildByFieldName("declarator")
	}
	if node == nil {
		return nil
	}
	return paramList(node.ChildByFieldName("parameters"), source)
}

// cVariableName returns the declared name of a file-scope variable
// declaration, or "" when the declaration is a prototype or extern.
func cVariableName(node *tree_sitter.Node, source []byte) string {
	if firstChildOfKind(node, "storage_class_specifier") != nil {
		if spec := firstChildOfKind(node, "storage_class_specifier"); nodeText(spec, source) == "extern" {
			return ""
		}
	}
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "init_declarator":
			return cDeclaratorName(c.ChildByFieldName("declarator"), source)
		case "identifier":
			return c.Utf8Text(source)
		case "function_declarator":
			// Prototype, not a variable.
			return ""
		case "pointer_declarator", "array_declarator":
			return cDeclaratorName(c, source)
		}
	}
	return ""
}
