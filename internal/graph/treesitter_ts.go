package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// tsExtractor extracts components and dependency edges from TypeScript
// source. Arrow functions bound to top-level consts count as functions.
type tsExtractor struct{}

func (e *tsExtractor) Extract(root *tree_sitter.Node, f *fileContext) ([]Component, []DependencyEdge) {
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

func (e *tsExtractor) collectDecls(node *tree_sitter.Node, f *fileContext, sc scope, out *[]Component) {
	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          KindClass,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			BaseTypes:     tsHeritage(node, f.source),
			EnclosingType: sc.enclosingType,
			DisplayLabel:  name,
		})
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectDecls(c, f, scope{enclosingType: name}, out)
			})
		}
		return

	case "interface_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         KindInterface,
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			BaseTypes:    tsExtendsTypes(node, f.source),
			DisplayLabel: name,
		})
		return

	case "enum_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:           f.componentID("", name),
			Name:         name,
			Kind:         KindEnum,
			FilePath:     f.relPath,
			RelativePath: f.relPath,
			StartLine:    start,
			EndLine:      end,
			SourceCode:   f.snippet(node),
			DisplayLabel: name,
		})
		return

	case "type_alias_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
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
		return

	case "function_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
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
			Parameters:   paramList(node.ChildByFieldName("parameters"), f.source),
			DisplayLabel: name,
		})
		return

	case "method_definition":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" || sc.enclosingType == "" {
			break
		}
		start, end := span(node)
		*out = append(*out, Component{
			ID:            f.componentID(sc.enclosingType, name),
			Name:          name,
			Kind:          KindMethod,
			FilePath:      f.relPath,
			RelativePath:  f.relPath,
			StartLine:     start,
			EndLine:       end,
			SourceCode:    f.snippet(node),
			Parameters:    paramList(node.ChildByFieldName("parameters"), f.source),
			EnclosingType: sc.enclosingType,
			DisplayLabel:  sc.enclosingType + "." + name,
		})
		return

	case "lexical_declaration", "variable_declaration":
		// const fn = () => {} at module level counts as a function.
		if !tsTopLevel(node) {
			break
		}
		eachChild(node, func(decl *tree_sitter.Node) {
			if decl.Kind() != "variable_declarator" {
				return
			}
			name := nodeText(decl.ChildByFieldName("name"), f.source)
			value := decl.ChildByFieldName("value")
			if name == "" || value == nil {
				return
			}
			if value.Kind() != "arrow_function" && value.Kind() != "function_expression" {
				return
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
				Parameters:   paramList(value.ChildByFieldName("parameters"), f.source),
				DisplayLabel: name,
			})
		})
		return
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectDecls(c, f, sc, out)
	})
}

func (e *tsExtractor) collectRels(node *tree_sitter.Node, f *fileContext, sc scope, table *declTable, out *[]DependencyEdge) {
	switch node.Kind() {
	case "class_declaration", "abstract_class_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		classID := f.componentID(sc.enclosingType, name)
		line, _ := span(node)
		if heritage := firstChildOfKind(node, "class_heritage"); heritage != nil {
			if ext := firstChildOfKind(heritage, "extends_clause"); ext != nil {
				for _, base := range tsClauseNames(ext, f.source) {
					if !tsBuiltins[base] {
						*out = append(*out, localEdge(f, table, classID, base, line, EdgeKindInherits))
					}
				}
			}
			if impl := firstChildOfKind(heritage, "implements_clause"); impl != nil {
				for _, base := range tsClauseNames(impl, f.source) {
					if !tsBuiltins[base] {
						*out = append(*out, localEdge(f, table, classID, base, line, EdgeKindImplements))
					}
				}
			}
		}
		if body := node.ChildByFieldName("body"); body != nil {
			eachChild(body, func(c *tree_sitter.Node) {
				e.collectRels(c, f, scope{enclosingType: name}, table, out)
			})
		}
		return

	case "interface_declaration":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		ifaceID := f.componentID("", name)
		line, _ := span(node)
		for _, base := range tsExtendsTypes(node, f.source) {
			if !tsBuiltins[base] {
				*out = append(*out, localEdge(f, table, ifaceID, base, line, EdgeKindInherits))
			}
		}
		return

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

	case "method_definition":
		name := nodeText(node.ChildByFieldName("name"), f.source)
		if name == "" {
			return
		}
		inner := scope{enclosingType: sc.enclosingType, enclosingFunc: name}
		eachChild(node, func(c *tree_sitter.Node) {
			e.collectRels(c, f, inner, table, out)
		})
		return

	case "variable_declarator":
		// Enter arrow function bodies with the binding as the caller.
		name := nodeText(node.ChildByFieldName("name"), f.source)
		value := node.ChildByFieldName("value")
		if name != "" && value != nil &&
			(value.Kind() == "arrow_function" || value.Kind() == "function_expression") &&
			sc.enclosingFunc == "" && sc.enclosingType == "" {
			inner := scope{enclosingFunc: name}
			e.collectRels(value, f, inner, table, out)
			return
		}

	case "call_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		name := tsCallName(node.ChildByFieldName("function"), f.source)
		if name == "" || tsBuiltins[name] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, name, line, EdgeKindCall))

	case "new_expression":
		caller := sc.callerID(f)
		if caller == "" {
			break
		}
		typeName := tsCallName(node.ChildByFieldName("constructor"), f.source)
		if typeName == "" || tsBuiltins[typeName] {
			break
		}
		line, _ := span(node)
		*out = append(*out, localEdge(f, table, caller, typeName, line, EdgeKindCreates))
	}

	eachChild(node, func(c *tree_sitter.Node) {
		e.collectRels(c, f, sc, table, out)
	})
}

// tsTopLevel reports whether a statement sits at module scope, directly
// or behind an export statement.
func tsTopLevel(node *tree_sitter.Node) bool {
	parent := node.Parent()
	if parent == nil {
		return false
	}
	if parent.Kind() == "program" {
		return true
	}
	if parent.Kind() == "export_statement" {
		grandparent := parent.Parent()
		return grandparent != nil && grandparent.Kind() == "program"
	}
	return false
}

// tsCallName extracts the invoked name; member calls like this.render()
// and obj.render() keep only the property segment.
func tsCallName(fn *tree_sitter.Node, source []byte) string {
	if fn == nil {
		return ""
	}
	switch fn.Kind() {
	case "identifier":
		return fn.Utf8Text(source)
	case "member_expression":
		obj := fn.ChildByFieldName("object")
		if obj != nil && obj.Kind() == "identifier" && tsBuiltins[obj.Utf8Text(source)] {
			return ""
		}
		return nodeText(fn.ChildByFieldName("property"), source)
	}
	return ""
}

// tsClauseNames returns the identifiers named by an extends or implements
// clause, generics stripped.
func tsClauseNames(clause *tree_sitter.Node, source []byte) []string {
	var names []string
	eachChild(clause, func(c *tree_sitter.Node) {
		switch c.Kind() {
		case "identifier", "type_identifier":
			names = append(names, c.Utf8Text(source))
		case "generic_type":
			if name := nodeText(c.ChildByFieldName("name"), source); name != "" {
				names = append(names, name)
			}
		case "member_expression", "nested_type_identifier":
			parts := strings.Split(c.Utf8Text(source), ".")
			names = append(names, parts[len(parts)-1])
		}
	})
	return names
}

// tsExtendsTypes returns the supertypes of an interface declaration.
func tsExtendsTypes(node *tree_sitter.Node, source []byte) []string {
	clause := firstChildOfKind(node, "extends_type_clause")
	if clause == nil {
		return nil
	}
	return tsClauseNames(clause, source)
}

// tsHeritage returns every extended or implemented name of a class.
func tsHeritage(node *tree_sitter.Node, source []byte) []string {
	heritage := firstChildOfKind(node, "class_heritage")
	if heritage == nil {
		return nil
	}
	var bases []string
	if ext := firstChildOfKind(heritage, "extends_clause"); ext != nil {
		bases = append(bases, tsClauseNames(ext, source)...)
	}
	if impl := firstChildOfKind(heritage, "implements_clause"); impl != nil {
		bases = append(bases, tsClauseNames(impl, source)...)
	}
	return bases
}
