package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// findComponent returns the component with the given id, or nil.
func findComponent(components []Component, id string) *Component {
	for i := range components {
		if components[i].ID == id {
			return &components[i]
		}
	}
	return nil
}

// findEdges returns all edges from caller with the given kind.
func findEdges(edges []DependencyEdge, caller string, kind EdgeKind) []DependencyEdge {
	var out []DependencyEdge
	for _, e := range edges {
		if e.Caller == caller && e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func analyze(t *testing.T, relPath, source string, lang Language) *AnalyzeResult {
	t.Helper()
	p := NewTreeSitterParser()
	defer p.Close()
	res, err := p.Analyze(context.Background(), relPath, []byte(source), lang)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

// ---------------------------------------------------------------------------
// Parser surface
// ---------------------------------------------------------------------------

func TestTreeSitterParser_SupportedLanguages(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	langs := p.SupportedLanguages()
	assert.Len(t, langs, 8, "should support exactly 8 languages")

	langSet := make(map[Language]bool, len(langs))
	for _, l := range langs {
		langSet[l] = true
	}
	for _, want := range SupportedLanguages {
		assert.True(t, langSet[want], "should support %s", want)
	}
}

func TestTreeSitterParser_UnsupportedLanguage(t *testing.T) {
	p := NewTreeSitterParser()
	defer p.Close()

	_, err := p.Analyze(context.Background(), "x.cob", []byte("x"), Language("cobol"))
	assert.Error(t, err)
}

func TestTreeSitterParser_SyntaxErrorsAreTolerated(t *testing.T) {
	// Tree-sitter produces a partial tree for broken source; analysis
	// keeps whatever declarations still parse.
	src := `
def good():
    pass

def broken(

class Late:
    pass
`
	res := analyze(t, "pkg/broken.py", src, LangPython)
	assert.NotNil(t, findComponent(res.Components, "pkg.broken.good"))
}

// ---------------------------------------------------------------------------
// Python
// ---------------------------------------------------------------------------

func TestPyExtractor(t *testing.T) {
	src := `
class Animal:
    """Base creature."""

    def speak(self):
        pass


class Dog(Animal):
    def speak(self):
        self.bark()

    def bark(self):
        pass


def feed(dog):
    dog.speak()
`
	res := analyze(t, "pkg/pets.py", src, LangPython)

	animal := findComponent(res.Components, "pkg.pets.Animal")
	require.NotNil(t, animal)
	assert.Equal(t, KindClass, animal.Kind)
	assert.True(t, animal.HasDocstring)
	assert.Equal(t, "Base creature.", animal.Docstring)

	speak := findComponent(res.Components, "pkg.pets.Animal.speak")
	require.NotNil(t, speak)
	assert.Equal(t, KindMethod, speak.Kind)
	assert.Equal(t, "Animal", speak.EnclosingType)
	assert.Equal(t, "Animal.speak", speak.DisplayLabel)

	dog := findComponent(res.Components, "pkg.pets.Dog")
	require.NotNil(t, dog)
	assert.Equal(t, []string{"Animal"}, dog.BaseTypes)

	feed := findComponent(res.Components, "pkg.pets.feed")
	require.NotNil(t, feed)
	assert.Equal(t, KindFunction, feed.Kind)
	assert.Empty(t, feed.EnclosingType)
	assert.Greater(t, feed.StartLine, 0)
	assert.LessOrEqual(t, feed.StartLine, feed.EndLine)

	inherits := findEdges(res.Edges, "pkg.pets.Dog", EdgeKindInherits)
	require.Len(t, inherits, 1)
	assert.True(t, inherits[0].Resolved)
	assert.Equal(t, "pkg.pets.Animal", inherits[0].Callee)

	// self.bark() resolves to the method declared in the same file.
	calls := findEdges(res.Edges, "pkg.pets.Dog.speak", EdgeKindCall)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Resolved)
	assert.Equal(t, "pkg.pets.Dog.bark", calls[0].Callee)
}

func TestPyExtractor_BuiltinsFiltered(t *testing.T) {
	src := `
def report(items):
    print(len(items))
    helper(items)
`
	res := analyze(t, "tools.py", src, LangPython)

	calls := findEdges(res.Edges, "tools.report", EdgeKindCall)
	require.Len(t, calls, 1, "print and len are builtins, only helper remains")
	assert.Equal(t, "helper", calls[0].Callee)
	assert.False(t, calls[0].Resolved)
}

func TestPyExtractor_ModuleLevelCallsSkipped(t *testing.T) {
	src := `
def setup():
    pass

setup()
`
	res := analyze(t, "app.py", src, LangPython)
	for _, e := range res.Edges {
		assert.NotEmpty(t, e.Caller, "module-level calls have no enclosing declaration")
	}
}

// ---------------------------------------------------------------------------
// Java
// ---------------------------------------------------------------------------

func TestJavaExtractor(t *testing.T) {
	src := `
/** Greets people. */
public class Greeter extends Base implements Speaker {
    private Helper helper;

    public void greet() {
        helper.say();
        Helper h = new Helper();
    }
}
`
	res := analyze(t, "com/app/Greeter.java", src, LangJava)

	greeter := findComponent(res.Components, "com.app.Greeter.Greeter")
	require.NotNil(t, greeter)
	assert.Equal(t, KindClass, greeter.Kind)
	assert.True(t, greeter.HasDocstring)
	assert.ElementsMatch(t, []string{"Base", "Speaker"}, greeter.BaseTypes)

	greet := findComponent(res.Components, "com.app.Greeter.Greeter.greet")
	require.NotNil(t, greet)
	assert.Equal(t, KindMethod, greet.Kind)
	assert.Equal(t, "Greeter", greet.EnclosingType)

	inherits := findEdges(res.Edges, "com.app.Greeter.Greeter", EdgeKindInherits)
	require.Len(t, inherits, 1)
	assert.Equal(t, "Base", inherits[0].Callee)

	implements := findEdges(res.Edges, "com.app.Greeter.Greeter", EdgeKindImplements)
	require.Len(t, implements, 1)
	assert.Equal(t, "Speaker", implements[0].Callee)

	uses := findEdges(res.Edges, "com.app.Greeter.Greeter", EdgeKindUsesField)
	require.Len(t, uses, 1)
	assert.Equal(t, "Helper", uses[0].Callee)

	calls := findEdges(res.Edges, "com.app.Greeter.Greeter.greet", EdgeKindCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "say", calls[0].Callee)

	creates := findEdges(res.Edges, "com.app.Greeter.Greeter.greet", EdgeKindCreates)
	require.Len(t, creates, 1)
	assert.Equal(t, "Helper", creates[0].Callee)
}

func TestJavaExtractor_InterfaceAndEnum(t *testing.T) {
	src := `
public interface Speaker {
    void say();
}

enum Color { RED, GREEN }
`
	res := analyze(t, "com/app/Types.java", src, LangJava)

	speaker := findComponent(res.Components, "com.app.Types.Speaker")
	require.NotNil(t, speaker)
	assert.Equal(t, KindInterface, speaker.Kind)

	color := findComponent(res.Components, "com.app.Types.Color")
	require.NotNil(t, color)
	assert.Equal(t, KindEnum, color.Kind)
}

func TestJavaExtractor_PrimitiveFieldsIgnored(t *testing.T) {
	src := `
public class Counter {
    private int count;
    private String name;
}
`
	res := analyze(t, "Counter.java", src, LangJava)
	uses := findEdges(res.Edges, "Counter.Counter", EdgeKindUsesField)
	assert.Empty(t, uses, "int and String are builtin types")
}

// ---------------------------------------------------------------------------
// C#
// ---------------------------------------------------------------------------

func TestCSExtractor(t *testing.T) {
	src := `
public interface IShape
{
    double Area();
}

public class Circle : IShape
{
    private Renderer renderer;

    public double Area()
    {
        renderer.Render();
        var r = new Renderer();
        return 3.14;
    }
}
`
	res := analyze(t, "Geometry/Circle.cs", src, LangCSharp)

	shape := findComponent(res.Components, "Geometry.Circle.IShape")
	require.NotNil(t, shape)
	assert.Equal(t, KindInterface, shape.Kind)

	circle := findComponent(res.Components, "Geometry.Circle.Circle")
	require.NotNil(t, circle)
	assert.Equal(t, KindClass, circle.Kind)
	assert.Equal(t, []string{"IShape"}, circle.BaseTypes)

	area := findComponent(res.Components, "Geometry.Circle.Circle.Area")
	require.NotNil(t, area)
	assert.Equal(t, KindMethod, area.Kind)

	// IShape follows the I-prefix convention, so the base is implements.
	implements := findEdges(res.Edges, "Geometry.Circle.Circle", EdgeKindImplements)
	require.Len(t, implements, 1)
	assert.True(t, implements[0].Resolved)
	assert.Equal(t, "Geometry.Circle.IShape", implements[0].Callee)

	calls := findEdges(res.Edges, "Geometry.Circle.Circle.Area", EdgeKindCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "Render", calls[0].Callee)

	creates := findEdges(res.Edges, "Geometry.Circle.Circle.Area", EdgeKindCreates)
	require.Len(t, creates, 1)
	assert.Equal(t, "Renderer", creates[0].Callee)
}

// ---------------------------------------------------------------------------
// C
// ---------------------------------------------------------------------------

func TestCExtractor(t *testing.T) {
	src := `
struct point {
    int x;
    int y;
};

static int origin_x = 0;

int add(int a, int b) {
    return a + b;
}

int compute(void) {
    printf("computing\n");
    return add(1, 2);
}
`
	res := analyze(t, "src/math/calc.c", src, LangC)

	point := findComponent(res.Components, "src.math.calc.point")
	require.NotNil(t, point)
	assert.Equal(t, KindStruct, point.Kind)

	origin := findComponent(res.Components, "src.math.calc.origin_x")
	require.NotNil(t, origin)
	assert.Equal(t, KindVariable, origin.Kind)

	add := findComponent(res.Components, "src.math.calc.add")
	require.NotNil(t, add)
	assert.Equal(t, KindFunction, add.Kind)
	assert.Len(t, add.Parameters, 2)

	// printf is a system function and is filtered.
	calls := findEdges(res.Edges, "src.math.calc.compute", EdgeKindCall)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Resolved)
	assert.Equal(t, "src.math.calc.add", calls[0].Callee)
}

func TestCExtractor_ExternAndPrototypesSkipped(t *testing.T) {
	src := `
extern int shared_counter;

int declared_only(int a);
`
	res := analyze(t, "decls.c", src, LangC)
	assert.Empty(t, res.Components, "externs and prototypes are not definitions")
}

// ---------------------------------------------------------------------------
// C++
// ---------------------------------------------------------------------------

func TestCppExtractor(t *testing.T) {
	src := `
class Shape {
public:
    virtual double area();
};

class Circle : public Shape {
public:
    double area();
};

double Circle::area() {
    return 3.14;
}

void render() {
    Circle c;
    double a = c.area();
}
`
	res := analyze(t, "src/geometry.cpp", src, LangCpp)

	shape := findComponent(res.Components, "src.geometry.Shape")
	require.NotNil(t, shape)
	assert.Equal(t, KindClass, shape.Kind)

	circle := findComponent(res.Components, "src.geometry.Circle")
	require.NotNil(t, circle)
	assert.Equal(t, []string{"Shape"}, circle.BaseTypes)

	// Out-of-line definition binds to the class.
	area := findComponent(res.Components, "src.geometry.Circle.area")
	require.NotNil(t, area)
	assert.Equal(t, KindMethod, area.Kind)
	assert.Equal(t, "Circle", area.EnclosingType)

	inherits := findEdges(res.Edges, "src.geometry.Circle", EdgeKindInherits)
	require.Len(t, inherits, 1)
	assert.True(t, inherits[0].Resolved)
	assert.Equal(t, "src.geometry.Shape", inherits[0].Callee)

	calls := findEdges(res.Edges, "src.geometry.render", EdgeKindCall)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Resolved)
	assert.Equal(t, "src.geometry.Circle.area", calls[0].Callee)
}

// ---------------------------------------------------------------------------
// Go
// ---------------------------------------------------------------------------

func TestGoExtractor(t *testing.T) {
	src := `package shapes

// Circle is a shape.
type Circle struct {
	r float64
}

func (c *Circle) Area() float64 {
	return scale(c.r)
}

func scale(x float64) float64 {
	return x * x
}

func build() Circle {
	return Circle{r: 1}
}
`
	res := analyze(t, "geo/shapes.go", src, LangGo)

	circle := findComponent(res.Components, "geo.shapes.Circle")
	require.NotNil(t, circle)
	assert.Equal(t, KindStruct, circle.Kind)
	assert.True(t, circle.HasDocstring)

	area := findComponent(res.Components, "geo.shapes.Circle.Area")
	require.NotNil(t, area)
	assert.Equal(t, KindMethod, area.Kind)
	assert.Equal(t, "Circle", area.EnclosingType)

	calls := findEdges(res.Edges, "geo.shapes.Circle.Area", EdgeKindCall)
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Resolved)
	assert.Equal(t, "geo.shapes.scale", calls[0].Callee)

	creates := findEdges(res.Edges, "geo.shapes.build", EdgeKindCreates)
	require.Len(t, creates, 1)
	assert.True(t, creates[0].Resolved)
	assert.Equal(t, "geo.shapes.Circle", creates[0].Callee)
}

// ---------------------------------------------------------------------------
// TypeScript
// ---------------------------------------------------------------------------

func TestTSExtractor(t *testing.T) {
	src := `
interface Shape {
  area(): number;
}

export class Circle implements Shape {
  area(): number {
    return this.radius();
  }

  radius(): number {
    return 1;
  }
}

export function render(): void {
  const c = new Circle();
  c.area();
}

export const helper = () => {
  render();
};
`
	res := analyze(t, "src/ui/shapes.ts", src, LangTypeScript)

	shape := findComponent(res.Components, "src.ui.shapes.Shape")
	require.NotNil(t, shape)
	assert.Equal(t, KindInterface, shape.Kind)

	circle := findComponent(res.Components, "src.ui.shapes.Circle")
	require.NotNil(t, circle)
	assert.Equal(t, []string{"Shape"}, circle.BaseTypes)

	radius := findComponent(res.Components, "src.ui.shapes.Circle.radius")
	require.NotNil(t, radius)
	assert.Equal(t, KindMethod, radius.Kind)

	helper := findComponent(res.Components, "src.ui.shapes.helper")
	require.NotNil(t, helper, "top-level arrow function consts are functions")
	assert.Equal(t, KindFunction, helper.Kind)

	implements := findEdges(res.Edges, "src.ui.shapes.Circle", EdgeKindImplements)
	require.Len(t, implements, 1)
	assert.True(t, implements[0].Resolved)

	areaCalls := findEdges(res.Edges, "src.ui.shapes.Circle.area", EdgeKindCall)
	require.Len(t, areaCalls, 1)
	assert.Equal(t, "src.ui.shapes.Circle.radius", areaCalls[0].Callee)

	creates := findEdges(res.Edges, "src.ui.shapes.render", EdgeKindCreates)
	require.Len(t, creates, 1)
	assert.Equal(t, "src.ui.shapes.Circle", creates[0].Callee)

	helperCalls := findEdges(res.Edges, "src.ui.shapes.helper", EdgeKindCall)
	require.Len(t, helperCalls, 1)
	assert.Equal(t, "src.ui.shapes.render", helperCalls[0].Callee)
}

// ---------------------------------------------------------------------------
// Rust
// ---------------------------------------------------------------------------

func TestRsExtractor(t *testing.T) {
	src := `
/// A circle.
pub struct Circle {
    radius: f64,
}

pub trait Area {
    fn area(&self) -> f64;
}

impl Area for Circle {
    fn area(&self) -> f64 {
        self.radius * self.radius
    }
}

pub fn build() -> Circle {
    Circle { radius: 1.0 }
}

pub fn measure(c: &Circle) -> f64 {
    c.area()
}
`
	res := analyze(t, "src/lib.rs", src, LangRust)

	circle := findComponent(res.Components, "src.lib.Circle")
	require.NotNil(t, circle)
	assert.Equal(t, KindStruct, circle.Kind)
	assert.True(t, circle.HasDocstring)

	area := findComponent(res.Components, "src.lib.Area")
	require.NotNil(t, area)
	assert.Equal(t, KindInterface, area.Kind)

	method := findComponent(res.Components, "src.lib.Circle.area")
	require.NotNil(t, method, "impl methods belong to the implemented type")
	assert.Equal(t, KindMethod, method.Kind)

	implements := findEdges(res.Edges, "src.lib.Circle", EdgeKindImplements)
	require.Len(t, implements, 1)
	assert.True(t, implements[0].Resolved)
	assert.Equal(t, "src.lib.Area", implements[0].Callee)

	creates := findEdges(res.Edges, "src.lib.build", EdgeKindCreates)
	require.Len(t, creates, 1)
	assert.Equal(t, "src.lib.Circle", creates[0].Callee)

	calls := findEdges(res.Edges, "src.lib.measure", EdgeKindCall)
	require.Len(t, calls, 1)
	assert.Equal(t, "src.lib.Circle.area", calls[0].Callee)
}

// ---------------------------------------------------------------------------
// Identifier construction
// ---------------------------------------------------------------------------

func TestComponentID_MethodInClass(t *testing.T) {
	src := `
class Foo:
    def bar(self):
        pass
`
	res := analyze(t, "pkg/mod/thing.py", src, LangPython)

	bar := findComponent(res.Components, "pkg.mod.thing.Foo.bar")
	require.NotNil(t, bar)
	assert.Equal(t, "Foo", bar.EnclosingType)
	assert.Equal(t, "Foo.bar", bar.DisplayLabel)
}

func TestModulePath(t *testing.T) {
	assert.Equal(t, "pkg.mod.thing", modulePath("pkg/mod/thing.py", LangPython))
	assert.Equal(t, "main", modulePath("main.go", LangGo))
	assert.Equal(t, "src.app.view", modulePath("src/app/view.tsx", LangTypeScript))
	assert.Equal(t, "include.util", modulePath("include/util.hpp", LangCpp))
}
