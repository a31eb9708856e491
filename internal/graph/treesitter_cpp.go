package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// cppExtractor extracts components and dependency edges from C++ source.
// It shares declarator handling with the C extractor and adds classes,
// namespaces, and out-of-line method definitions.
type cppExtractor struct{}

func (e *cppExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
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

func (e *cppExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, sc scope, out *[]Component) {
	switch node.Kind() {
	case "class_specifier", "struct_specifier":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" || node.ChildByFieldName("body") == nil {
			break
		}
		kind := KindClass
		if node.Kind() == "struct_specifier" {
			kind = KindStruct
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          kind,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			BaseTypes:     cppBaseTypes(node, f.source),
			EnclosingType: sc.enclosingType,
			DisplayLabel:  name,
		})
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectDecls(c, f, scope{enclosingType: name}, out)
			})
		}
		return

	case "enum_specifier":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" || node.ChildByFieldName("body") == nil {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          KindEnum,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			EnclosingType: sc.enclosingType,
			DisplayLabel:  name,
		})

	case "function_definition":
		enclosing, name := cppFunctionName(node.ChildByFieldName("declarator"), f.source)
		if name == "" {
			break
		}
		if enclosing == "" {
			enclosing = sc.enclosingType
		}
		kind := KindFunction
		label := name
		if enclosing != "" {
			kind = KindMethod
			label = enclosing + "." + name
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:            f.componentID(enclosing, name),
			Name:          name,
			Kind:          kind,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			Parameters:    cParams(node.ChildByFieldName("declarator"), f.source),
			EnclosingType: enclosing,
			DisplayLabel:  label,
		})
		return

	case "namespace_definition":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name != "" {
			start, end := span(node)
			*out = append(*out, Component{
				ID:           f.componentID("", name),
				Name:         name,
				Kind:         KindNamespace,
				FilePath:     f.relPath,
				RelativePath: f.relPath,
				StartLine:    start,
				EndLine:      end,
				DisplayLabel: name,
			})
		}
		// Members of a namespace keep their own ids; only an enclosing
		// class qualifies a name.
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectDecls(c, f, sc, out)
			})
		}
		return

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
		e.collectDecls(c, f, sc, out)
	})
}

func (e *cppExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "class_specifier", "struct_specifier":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" || node.ChildByFieldName("body") == nil {
			break
		}
		typeID := f.componentID(sc.enclosingType, name)
		line, _ := span(node)
		for _, base := range cppBaseTypes(node, f.source) {
			if cppBuiltins[base] {
				continue
			}
			*out = append(*out, localEdge(f, table, typeID, base, line, EdgeKindInherits))
		}
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectRels(c, f, scope{enclosingType: name}, table, out)
			})
		}
		return

	case "function_definition":
		enclosing, name := cppFunctionName(node.ChildByFieldName("declarator"), f.source)
		if name == "" {
			return
		}
		if enclosing == "" {
			enclosing = sc.enclosingType
		}
		inner := scope{enclosingType: enclosing, enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "call_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		name := cppCallName(node.ChildByFieldName("function"), f.source)
		if name == "" || cppBuiltins[name] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, name, line, EdgeKindCall))

	case "new_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		typeName := nodeText(node.ChildByFieldName("type"), f.source)
		typeName = strings.TrimSpace(typeName)
		if typeName == "" || cppBuiltins[typeName] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindCreates))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

// cppFunctionName unwraps a function declarator to its declared name.
// Out-of-line definitions like Widget::draw return ("Widget", "draw");
// free functions return ("", name). Operators and destructors are skipped.
func cppFunctionName(node *tree_sitter.Node, source []byte) (string, string) {
	for node != nil {
		switch node.Kind() {
		case "identifier", "field_identifier":
			return "", node.Utf8Text(source)
		case "qualified_identifier":
			enclosing := nodeText(node.ChildByFieldName("scope"), source)
			_, name := cppFunctionName(node.ChildByFieldName("name"), source)
			return enclosing, name
		case "function_declarator", "pointer_declarator",
			"reference_declarator", "parenthesized_declarator":
			node = node.ChildByFieldName("declarator")
		default:
			return "", ""
		}
	}
	return "", ""
}

// cppCallName extracts the called name from a call expression's function
// part. Member calls and scope-qualified calls keep only the rightmost
// segment.
func cppCallName(fn *tree_sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Utf8Text(source)
	case "field_expression":
		return nodeText(fn.ChildByFieldName("field"), source)
	case "qualified_identifier":
		text := fn.Utf8Text(source)
		parts := strings.Split(text, "::")
		if len(parts) > 1 && cppBuiltins[parts[0]] {
			return ""
		}
		return parts[len(parts)-1]
	case "template_function":
		return nodeText(fn.ChildByFieldName("name"), source)
	}
	return ""
}

// cppBaseTypes returns the base classes from a base_class_clause.
func cppBaseTypes(node *tree_sitter.Node, source []byte) []string {
	clause := firstChildOfKind(node, "base_class_clause")
	if clause == nil {
		return nil
	}
	var bases []string
	eachChild(clause, func(c *tree_sitter.Node) {
		switch c.Kind() {
		case "type_identifier":
			bases = append(bases, c.Utf8Text(source))
		case "qualified_identifier", "template_type":
			text := c.Utf8Text(source)
			if idx := strings.Index(text, "<"); idx >= 0 {
				text = text[:idx]
			}
			parts := strings.Split(text, "::")
			bases = append(bases, parts[len(parts)-1])
		}
	})
	return bases
}
