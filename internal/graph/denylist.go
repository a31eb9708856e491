package graph

// Per-language denylists of builtin and standard-library names. References
// to these never become dependency edges; they would otherwise flood the
// graph with permanently unresolvable noise.

var pythonBuiltins = stringSet(
	"print", "len", "str", "int", "float", "bool", "list", "dict", "tuple", "set",
	"range", "enumerate", "zip", "isinstance", "hasattr", "getattr", "setattr",
	"open", "super", "__import__", "type", "object", "Exception", "ValueError",
	"TypeError", "KeyError", "IndexError", "AttributeError", "ImportError",
	"max", "min", "sum", "abs", "round", "sorted", "reversed", "filter", "map",
	"any", "all", "next", "iter", "callable", "repr", "format", "exec", "eval",
)

var javaBuiltins = stringSet(
	"boolean", "byte", "char", "double", "float", "int", "long", "short",
	"Boolean", "Byte", "Character", "Double", "Float", "Integer", "Long", "Short",
	"String", "Object", "List", "Set", "Map", "Collection", "Optional",
	"void", "Void",
)

var csharpBuiltins = stringSet(
	"bool", "byte", "sbyte", "char", "decimal", "double", "float", "int", "uint",
	"long", "ulong", "short", "ushort", "string", "object", "void",
	"Boolean", "Byte", "SByte", "Char", "Decimal", "Double", "Single", "Int32", "UInt32",
	"Int64", "UInt64", "Int16", "UInt16", "String", "Object", "Void",
	"List", "Dictionary", "IList", "IDictionary", "IEnumerable", "ICollection",
	"Task", "CancellationToken", "DateTime", "TimeSpan", "Guid",
)

var cBuiltins = stringSet(
	"printf", "scanf", "malloc", "free", "strlen", "strcpy", "strcmp",
	"memcpy", "memset", "exit", "abort", "fopen", "fclose", "fread", "fwrite",
	"calloc", "realloc", "sprintf", "snprintf", "fprintf", "strncpy", "strncmp",
	"strcat", "strchr", "strstr", "atoi", "atof", "qsort", "assert",
)

var cppBuiltins = stringSet(
	"printf", "malloc", "free", "memcpy", "memset", "exit", "assert",
	"std", "string", "vector", "map", "set", "pair", "shared_ptr", "unique_ptr",
	"make_shared", "make_unique", "move", "forward", "swap", "sort", "find",
	"cout", "cerr", "cin", "endl", "size_t", "int64_t", "uint64_t",
	"int32_t", "uint32_t", "int8_t", "uint8_t", "bool", "void",
)

var goBuiltins = stringSet(
	"make", "new", "len", "cap", "append", "copy", "delete", "close",
	"panic", "recover", "print", "println", "min", "max", "clear",
	"string", "int", "int8", "int16", "int32", "int64",
	"uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	"float32", "float64", "complex64", "complex128",
	"bool", "byte", "rune", "error", "any",
)

var tsBuiltins = stringSet(
	"console", "require", "parseInt", "parseFloat", "isNaN", "setTimeout",
	"setInterval", "clearTimeout", "clearInterval", "encodeURIComponent",
	"decodeURIComponent", "JSON", "Math", "Object", "Array", "String",
	"Number", "Boolean", "Promise", "Map", "Set", "Symbol", "Error",
	"Date", "RegExp", "fetch",
)

var rustBuiltins = stringSet(
	"println", "print", "eprintln", "eprint", "format", "vec", "panic",
	"assert", "assert_eq", "assert_ne", "debug_assert", "write", "writeln",
	"matches", "todo", "unimplemented", "unreachable", "include_str",
	"Some", "None", "Ok", "Err", "Box", "Vec", "String", "Option", "Result",
	"Rc", "Arc", "RefCell", "Mutex", "HashMap", "HashSet", "BTreeMap",
	"Default", "Clone", "Copy", "Debug", "Drop", "Self",
)

func stringSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
