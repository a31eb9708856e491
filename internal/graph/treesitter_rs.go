package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// rsExtractor extracts components and dependency edges from Rust source.
// Functions inside impl blocks become methods of the implemented type.
type rsExtractor struct{}

func (e *rsExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
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

func (e *rsExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, sc scope, out *[]Component) {
	switch node.Kind() {
	case "struct_item", "enum_item", "trait_item", "type_item", "union_item":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		doc := rsDoc(node, f.source)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         rsTypeKind(node.Kind()),
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			HasDocstring: doc != "",
			Docstring:    doc,
			DisplayLabel: name,
		})
		return

	case "function_item":
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
		doc := rsDoc(node, f.source)
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
		return

	case "impl_item":
		typeName := rsTypeName(node.ChildByFieldName("type"), f.source)
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectDecls(c, f, scope{enclosingType: typeName}, out)
			})
		}
		return

	case "mod_item":
		// Inline modules share the file's id space.
		if body := firstChildOfKind(node, "declaration_list"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectDecls(c, f, sc, out)
			})
		}
		return
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectDecls(c, f, sc, out)
	})
}

func (e *rsExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "impl_item":
		typeName := rsTypeName(node.ChildByFieldName("type"), f.source)
		if traitName := rsTypeName(node.ChildByFieldName("trait"), f.source); traitName != "" && typeName != "" && !rustBuiltins[traitName] {
			line, _ := span(node)
			typeID := f.componentID("", typeName)
			*out = append(*out, localEdge(f, table, typeID, traitName, line, EdgeKindImplements))
		}
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectRels(c, f, scope{enclosingType: typeName}, table, out)
			})
		}
		return

	case "function_item":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		inner := scope{enclosingType: sc.enclosingType, enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "call_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		name := rsCallName(node.ChildByFieldName("function"), f.source)
		if name == "" || rustBuiltins[name] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, name, line, EdgeKindCall))

	case "struct_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		typeName := rsTypeName(node.ChildByFieldName("name"), f.source)
		if typeName == "" || rustBuiltins[typeName] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindCreates))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

func rsTypeKind(nodeKind string) ComponentKind {
	switch nodeKind {
	case "enum_item":
		return KindEnum
	case "trait_item":
		return KindInterface
	case "type_item":
		return KindType
	default:
		return KindStruct
	}
}

// rsTypeName reduces a type node to its bare name, stripping generics,
// references, and path qualifiers.
func rsTypeName(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "type_identifier", "identifier":
		return node.Utf8Text(source)
	case "generic_type":
		return rsTypeName(node.ChildByFieldName("type"), source)
	case "scoped_type_identifier", "scoped_identifier":
		return nodeText(node.ChildByFieldName("name"), source)
	case "reference_type":
		return rsTypeName(node.ChildByFieldName("type"), source)
	}
	return ""
}

// rsCallName extracts the called name. Method calls keep the field name;
// path calls like Widget::new keep the rightmost segment with its type
// prefix so local resolution can try the type first.
func rsCallName(fn *tree_sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Utf8Text(source)
	case "field_expression":
		return nodeText(fn.ChildByFieldName("field"), source)
	case "scoped_identifier":
		path := nodeText(fn.ChildByFieldName("path"), source)
		name := nodeText(fn.ChildByFieldName("name"), source)
		if name == "" {
			return ""
		}
		if path != "" && rustBuiltins[path] {
			return ""
		}
		if path != "" && !strings.Contains(path, "::") {
			return path + "." + name
		}
		return name
	}
	return ""
}

// rsDoc returns the /// doc comment block immediately preceding an item.
func rsDoc(node *tree_sitter.Node, source []byte) string {
	var lines []string
	prev := node.PrevSibling()
	for prev != nil && (prev.Kind() == "line_comment" || prev.Kind() == "block_comment") {
		text := prev.Utf8Text(source)
		if !strings.HasPrefix(text, "///") && !strings.HasPrefix(text, "/**") {
			break
		}
		text = strings.TrimPrefix(text, "///")
		lines = append([]string{strings.TrimSpace(text)}, lines...)
		prev = prev.PrevSibling()
	}
	return strings.Join(lines, "\n")
}
