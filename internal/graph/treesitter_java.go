package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// javaExtractor extracts components and dependency edges from Java source.
type javaExtractor struct{}

func (e *javaExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
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

func (e *javaExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, sc scope, out *[]Component) {
	switch node.Kind() {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		doc := javaDoc(node, f.source)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          javaTypeKind(node.Kind()),
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			HasDocstring:  doc != "",
			Docstring:     doc,
			BaseTypes:     javaBaseTypes(node, f.source),
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
		doc := javaDoc(node, f.source)
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

func (e *javaExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "class_declaration", "interface_declaration", "enum_declaration",
		"record_declaration", "annotation_type_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		typeID := f.componentID(sc.enclosingType, name)
		line, _ := span(node)
		if super := node.ChildByFieldName("superclass"); super != nil {
			if base := javaTypeName(super, f.source); base != "" && !javaBuiltins[base] {
				*out = append(*out, localEdge(f, table, typeID, base, line, EdgeKindInherits))
			}
		}
		if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
			for _, base := range javaTypeList(ifaces, f.source) {
				if !javaBuiltins[base] {
					*out = append(*out, localEdge(f, table, typeID, base, line, EdgeKindImplements))
				}
			}
		}
		// Interfaces extend other interfaces through extends_interfaces.
		if ext := firstChildOfKind(node, "extends_interfaces"); ext != nil {
			for _, base := range javaTypeList(ext, f.source) {
				if !javaBuiltins[base] {
					*out = append(*out, localEdge(f, table, typeID, base, line, EdgeKindInherits))
				}
			}
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

	case "field_declaration":
		// A field whose declared type is a project type is a structural use.
		if sc.enclosingType == "" {
			break
		}
		typeName := javaTypeName(node.ChildByFieldName("type"), f.source)
		if typeName != "" && !javaBuiltins[typeName] {
			line, _ := span(node)
			caller := f.componentID("", sc.enclosingType)
			*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindUsesField))
		}

	case "method_invocation":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" || javaBuiltins[name] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, name, line, EdgeKindCall))

	case "object_creation_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		typeName := javaTypeName(node.ChildByFieldName("type"), f.source)
		if typeName == "" || javaBuiltins[typeName] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindCreates))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

func javaTypeKind(nodeKind string) ComponentKind {
	switch nodeKind {
	case "interface_declaration":
		return KindInterface
	case "enum_declaration":
		return KindEnum
	case "record_declaration":
		return KindRecord
	case "annotation_type_declaration":
		return KindAnnotation
	default:
		return KindClass
	}
}

// javaTypeName pulls the bare type name out of a type node, unwrapping
// generics and scope qualifiers down to the rightmost identifier.
func javaTypeName(node *tree_sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	switch node.Kind() {
	case "type_identifier", "identifier":
		return node.Utf8Text(source)
	case "generic_type":
		return javaTypeName(node.NamedChild(0), source)
	case "scoped_type_identifier":
		parts := strings.Split(node.Utf8Text(source), ".")
		return parts[len(parts)-1]
	case "array_type":
		return javaTypeName(node.ChildByFieldName("element"), source)
	case "superclass":
		if t := firstChildOfKind(node, "type_identifier"); t != nil {
			return t.Utf8Text(source)
		}
		if t := firstChildOfKind(node, "generic_type"); t != nil {
			return javaTypeName(t, source)
		}
		return ""
	}
	if t := firstChildOfKind(node, "type_identifier"); t != nil {
		return t.Utf8Text(source)
	}
	return ""
}

// javaTypeList collects type names from a super_interfaces or
// extends_interfaces node.
func javaTypeList(node *tree_sitter.Node, source []byte) []string {
	list := firstChildOfKind(node, "type_list")
	if list == nil {
		return nil
	}
	var names []string
	eachChild(list, func(c *tree_sitter.Node) {
		if name := javaTypeName(c, source); name != "" {
			names = append(names, name)
		}
	})
	return names
}

// javaBaseTypes returns every extended or implemented type of a declaration.
func javaBaseTypes(node *tree_sitter.Node, source []byte) []string {
	var bases []string
	if super := node.ChildByFieldName("superclass"); super != nil {
		if name := javaTypeName(super, source); name != "" {
			bases = append(bases, name)
		}
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		bases = append(bases, javaTypeList(ifaces, source)...)
	}
	if ext := firstChildOfKind(node, "extends_interfaces"); ext != nil {
		bases = append(bases, javaTypeList(ext, source)...)
	}
	return bases
}

// javaDoc returns the text of a Javadoc block comment immediately
// preceding the declaration, or "".
func javaDoc(node *tree_sitter.Node, source []byte) string {
	prev := node.PrevSibling()
	if prev == nil || prev.Kind() != "block_comment" {
		return ""
	}
	text := prev.Utf8Text(source)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return text
}
