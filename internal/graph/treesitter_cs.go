package graph

import (
	"strings"
	"unicode"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// csExtractor extracts components and dependency edges from C# source.
type csExtractor struct{}

func (e *csExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
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

func (e *csExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, sc scope, out *[]Component) {
	switch node.Kind() {
	case "class_declaration", "interface_declaration", "struct_declaration",
		"enum_declaration", "record_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		doc := csDoc(node, f.source)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          csTypeKind(node.Kind()),
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			HasDocstring:  doc != "",
			Docstring:     doc,
			BaseTypes:     csBaseTypes(node, f.source),
			EnclosingType: sc.enclosingType,
			DisplayLabel:  name,
		})
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectDecls(c, f, scope{enclosingType: name}, out)
			})
		}
		return

	case "method_declaration", "constructor_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		label := name
		if sc.enclosingType != "" {
			label = sc.enclosingType + "." + name
		}
		start, end := span(node)
		doc := csDoc(node, f.source)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
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
			EnclosingType: sc.enclosingType,
			DisplayLabel:  label,
		})
		return
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectDecls(c, f, sc, out)
	})
}

func (e *csExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "class_declaration", "interface_declaration", "struct_declaration",
		"enum_declaration", "record_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		typeID := f.componentID(sc.enclosingType, name)
		line, _ := span(node)
		for _, base := range csBaseTypes(node, f.source) {
			if csharpBuiltins[base] {
				continue
			}
			// Interface names follow the I-prefix convention; everything
			// else in the base list is treated as a superclass.
			kind := EdgeKindInherits
			if isCSInterfaceName(base) {
				kind = EdgeKindImplements
			}
			*out = append(*out, localEdge(f, table, typeID, base, line, kind))
		}
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectRels(c, f, scope{enclosingType: name}, table, out)
			})
		}
		return

	case "method_declaration", "constructor_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		inner := scope{enclosingType: sc.enclosingType, enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "field_declaration", "property_declaration":
		if sc.enclosingType == "" {
			break
		}
		typeName := csFieldTypeName(node, f.source)
		if typeName != "" && !csharpBuiltins[typeName] {
			line, _ := span(node)
			caller := f.componentID("", sc.enclosingType)
			*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindUsesField))
		}

	case "invocation_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		name := csInvocationName(node.ChildByFieldName("function"), f.source)
		if name == "" || csharpBuiltins[name] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, name, line, EdgeKindCall))

	case "object_creation_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		typeName := csTypeName(node.ChildByFieldName("type"), f.source)
		if typeName == "" || csharpBuiltins[typeName] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindCreates))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

func csTypeKind(nodeKind string) ComponentKind {
	switch nodeKind {
	case "interface_declaration":
		return KindInterface
	case "struct_declaration":
		return KindStruct
	case "enum_declaration":
		return KindEnum
	case "record_declaration":
		return KindRecord
	default:
		return KindClass
	}
}

// csTypeName reduces a type node to its bare rightmost name.
func csTypeName(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "identifier", "type_identifier":
		return node.Utf8Text(source)
	case "generic_name":
		if id := firstChildOfKind(node, "identifier"); id != nil {
			return id.Utf8Text(source)
		}
	case "qualified_name":
		parts := strings.Split(node.Utf8Text(source), ".")
		return parts[len(parts)-1]
	case "nullable_type", "array_type":
		return csTypeName(node.NamedChild(0), source)
	case "predefined_type":
		return node.Utf8Text(source)
	}
	return ""
}

// csFieldTypeName pulls the declared type out of a field or property.
func csFieldTypeName(node *tree_sitter.Node, source []byte) string {
	if node.Kind() == "property_declaration" {
		return csTypeName(node.ChildByFieldName("type"), source)
	}
	decl := firstChildOfKind(node, "variable_declaration")
	if decl == nil {
		return ""
	}
	return csTypeName(decl.ChildByFieldName("type"), source)
}

// csInvocationName extracts the invoked member name. Member accesses keep
// only the rightmost segment so Foo.Bar() and this.Bar() both yield Bar.
func csInvocationName(fn *tree_sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Utf8Text(source)
	case "generic_name":
		if id := firstChildOfKind(fn, "identifier"); id != nil {
			return id.Utf8Text(source)
		}
	case "member_access_expression":
		return nodeText(fn.ChildByFieldName("name"), source)
	}
	return ""
}

// csBaseTypes returns the entries of a declaration's base_list.
func csBaseTypes(node *tree_sitter.Node, source []byte) []string {
	list := firstChildOfKind(node, "base_list")
	if list == nil {
		return nil
	}
	var bases []string
	eachChild(list, func(c *tree_sitter.Node) {
		switch c.Kind() {
		case "identifier", "qualified_name", "generic_name":
			if name := csTypeName(c, source); name != "" {
				bases = append(bases, name)
			}
		}
	})
	return bases
}

// isCSInterfaceName reports the I-prefix interface naming convention.
func isCSInterfaceName(name string) bool {
	if len(name) < 2 || name[0] != 'I' {
		return false
	}
	return unicode.IsUpper(rune(name[1]))
}

// csDoc returns the /// documentation comment block immediately preceding
// the declaration, joined without the comment markers.
func csDoc(node *tree_sitter.Node, source []byte) string {
	var lines []string
	prev := node.PrevSibling()
	for prev != nil && prev.Kind() == "comment" {
		text := prev.Utf8Text(source)
		if !strings.HasPrefix(text, "///") {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(text, "///"))}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}
