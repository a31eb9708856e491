package graph

// --- Enums ---

// ComponentKind classifies extracted declarations. The set is open per
// language; analyzers may emit kinds beyond the constants listed here
// (e.g. "abstract class" for Java).
type ComponentKind string

const (
	KindFunction   ComponentKind = "function"
	KindMethod     ComponentKind = "method"
	KindClass      ComponentKind = "class"
	KindStruct     ComponentKind = "struct"
	KindInterface  ComponentKind = "interface"
	KindEnum       ComponentKind = "enum"
	KindRecord     ComponentKind = "record"
	KindNamespace  ComponentKind = "namespace"
	KindVariable   ComponentKind = "variable"
	KindType       ComponentKind = "type"
	KindAnnotation ComponentKind = "annotation"
)

// EdgeKind is the informal classification of a dependency edge. Not all
// analyzers populate all kinds.
type EdgeKind string

const (
	EdgeKindCall       EdgeKind = "call"
	EdgeKindInherits   EdgeKind = "inherits"
	EdgeKindImplements EdgeKind = "implements"
	EdgeKindUsesField  EdgeKind = "uses-field"
	EdgeKindCreates    EdgeKind = "creates"
)

// Language identifies a programming language for parsing.
type Language string

const (
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangCSharp     Language = "csharp"
	LangC          Language = "c"
	LangCpp        Language = "cpp"
	LangGo         Language = "go"
	LangTypeScript Language = "typescript"
	LangRust       Language = "rust"
)

// SupportedLanguages lists every language with a registered grammar and
// extractor, in a fixed order.
var SupportedLanguages = []Language{
	LangPython, LangJava, LangCSharp, LangC, LangCpp,
	LangGo, LangTypeScript, LangRust,
}

// languageExtensions maps each language to the source extensions it owns.
// Extensions are stripped when building component ids.
var languageExtensions = map[Language][]string{
	LangPython:     {".py", ".pyx"},
	LangJava:       {".java"},
	LangCSharp:     {".cs"},
	LangC:          {".c", ".h"},
	LangCpp:        {".cpp", ".cc", ".cxx", ".hpp"},
	LangGo:         {".go"},
	LangTypeScript: {".ts", ".tsx"},
	LangRust:       {".rs"},
}

// LanguageForExtension returns the language owning the given file
// extension, or false when no analyzer handles it. ".h" headers are
// claimed by the C analyzer; the C++ analyzer handles ".hpp".
func LanguageForExtension(ext string) (Language, bool) {
	for _, lang := range SupportedLanguages {
		for _, e := range languageExtensions[lang] {
			if e == ext {
				return lang, true
			}
		}
	}
	return "", false
}

// Extensions returns the file extensions recognized for a language.
func (l Language) Extensions() []string {
	return languageExtensions[l]
}

// --- Models ---

// Component is one extracted declaration (function, type, method, ...).
// Components are created exactly once during the analysis pass over their
// file and never mutated afterward.
type Component struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Kind          ComponentKind `json:"kind"`
	FilePath      string        `json:"file_path"`
	RelativePath  string        `json:"relative_path"`
	StartLine     int           `json:"start_line"`
	EndLine       int           `json:"end_line"`
	SourceCode    string        `json:"source_code"`
	HasDocstring  bool          `json:"has_docstring"`
	Docstring     string        `json:"docstring,omitempty"`
	Parameters    []string      `json:"parameters,omitempty"`
	BaseTypes     []string      `json:"base_types,omitempty"`
	EnclosingType string        `json:"enclosing_type,omitempty"`
	DisplayLabel  string        `json:"display_label"`
}

// DependencyEdge is a directed relationship from a caller component to a
// callee. Callee holds a fully-qualified component id when Resolved is
// true, otherwise a bare symbol name pending global resolution. Edges are
// mutated exactly once, by the global resolution pass.
type DependencyEdge struct {
	Caller   string   `json:"caller"`
	Callee   string   `json:"callee"`
	CallLine int      `json:"call_line"`
	Resolved bool     `json:"resolved"`
	Kind     EdgeKind `json:"kind,omitempty"`
}

// Module is a named grouping of leaf components with a directory path and
// optional child modules. Children are attached only while the tree is
// being assembled; afterwards the tree is read-only.
type Module struct {
	Path       string             `json:"path"`
	Components []string           `json:"components"`
	Children   map[string]*Module `json:"children"`
}

// ModuleTree maps top-level module names to their Module nodes.
type ModuleTree map[string]*Module

// Level is one position in the leaf-first processing order: an ordered
// list of component ids that may all be processed once every earlier
// level is complete.
type Level []string

// GraphStats summarizes a built dependency graph.
type GraphStats struct {
	ComponentCount int `json:"component_count"`
	EdgeCount      int `json:"edge_count"`
	ResolvedEdges  int `json:"resolved_edges"`
	LeafCount      int `json:"leaf_count"`
	ModuleCount    int `json:"module_count"`
}
