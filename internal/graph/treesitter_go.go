package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// goExtractor extracts components and dependency edges from Go source.
type goExtractor struct{}

func (e *goExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
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

func (e *goExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, out *[]Component) {
	switch node.Kind() {
	case "function_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		doc := goDoc(node, f.source)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         KindFunction,
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			HasDocstring: doc != "",
			Docstring:    doc,
			Parameters:   paramList(node.ChildByFieldName("parameters"), f.source),
			DisplayLabel: name,
		})
		return

	case "method_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		recv := goReceiverType(node.ChildByFieldName("receiver"), f.source)
		if name == "" || recv == "" {
			break
		}
		start, end := span(node)
		doc := goDoc(node, f.source)
		*out = append(*out, Component{
			ID:            f.componentID(recv, name),
			Name:          name,
			Kind:          KindMethod,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			HasDocstring:  doc != "",
			Docstring:     doc,
			Parameters:    paramList(node.ChildByFieldName("parameters"), f.source),
			EnclosingType: recv,
			DisplayLabel:  recv + "." + name,
		})
		return

	case "type_declaration":
		doc := goDoc(node, f.source)
		eachChild(node, func(spec *tree_sitter.Node) {
			if spec.Kind() != "type_spec" {
				return
			}
			name := nodeText(spec.ChildByFieldName("name"), f.source)
			if name == "" {
				return
			}
			start, end := span(node)
			*out = append(*out, Component{
				ID:           f.componentID("", name),
				Name:         name,
				Kind:         goTypeKind(spec.ChildByFieldName("type")),
				FilePath:     f.relPath,
				RelativePath: f.relPath,
				StartLine:    start,
				EndLine:      end,
				SourceCode:   f.snippet(node),
				HasDocstring: doc != "",
				Docstring:    doc,
				DisplayLabel: name,
			})
		})
		return
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectDecls(c, f, out)
	})
}

func (e *goExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "function_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		inner := scope{enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "method_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		recv := goReceiverType(node.ChildByFieldName("receiver"), f.source)
		if name == "" || recv == "" {
			return
		}
		inner := scope{enclosingType: recv, enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "call_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		name := goCallName(node.ChildByFieldName("function"), f.source)
		if name == "" || goBuiltins[name] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, name, line, EdgeKindCall))

	case "composite_literal":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		typeName := goLiteralType(node.ChildByFieldName("type"), f.source)
		if typeName == "" || goBuiltins[typeName] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindCreates))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

func goTypeKind(typeNode *tree_sitter.Node) ComponentKind {
	if typeNode == nil {
		return KindType
	}
	switch typeNode.Kind() {
	case "struct_type":
		return KindStruct
	case "interface_type":
		return KindInterface
	default:
		return KindType
	}
}

// goReceiverType returns the bare receiver type name, stripping pointers
// and type parameters.
func goReceiverType(recv *tree_sitter.Node, source []byte) string {
	if recv == nil || recv.NamedChildCount() == 0 {
		return ""
	}
	decl := recv.NamedChild(0)
	if decl == nil {
		return ""
	}
	t := decl.ChildByFieldName("type")
	if t == nil {
		return ""
	}
	text := t.Utf8Text(source)
	text = strings.TrimPrefix(text, "*")
	if idx := strings.Index(text, "["); idx >= 0 {
		text = text[:idx]
	}
	return text
}

// goCallName extracts the called name. Selector calls keep only the field
// so pkg.Fn and recv.Method both yield the rightmost segment.
func goCallName(fn *tree_sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Utf8Text(source)
	case "selector_expression":
		return nodeText(fn.ChildByFieldName("field"), source)
	case "parenthesized_expression":
		return goCallName(fn.NamedChild(0), source)
	}
	return ""
}

// goLiteralType reduces a composite literal type to its bare name.
func goLiteralType(t *tree_sitter.Node, source []byte) string {
	if t == nil {
		return ""
	}
	switch t.Kind() {
	case "type_identifier":
		return t.Utf8Text(source)
	case "qualified_type":
		return nodeText(t.ChildByFieldName("name"), source)
	case "generic_type":
		return goLiteralType(t.ChildByFieldName("type"), source)
	}
	return ""
}

// goDoc returns the contiguous // comment block immediately preceding a
// declaration.
func goDoc(node *tree_sitter.Node, source []byte) string {
	var lines []string
	prev := node.PrevSibling()
	for prev != nil && prev.Kind() == "comment" {
		text := prev.Utf8Text(source)
		if !strings.HasPrefix(text, "//") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "//"))}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}
