package outline

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lexcodex/contour/frontend"
)

func TestRenderFlatModule(t *testing.T) {
	res := &frontend.ParseResult{
		Tree: &frontend.Tree{
			Units: []frontend.Decl{{
				Kind:  frontend.KindModule,
				Name:  "Foo",
				Range: frontend.Range{StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 10},
				Members: []frontend.Decl{
					{Kind: frontend.KindFunction, Name: "bar", Range: frontend.Range{StartLine: 2, StartCol: 2, EndLine: 3, EndCol: 0}},
					{Kind: frontend.KindFunction, Name: "baz", Range: frontend.Range{StartLine: 4, StartCol: 2, EndLine: 5, EndCol: 10}},
				},
			}},
		},
	}
	file, err := Build("demo.src", res)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := `---
type : file
name : demo.src
locationSpan : {start: [1,0], end: [5,10]}
footerSpan : [0, -1]
parsingErrorsDetected : false
children :
  - type : module
    name : Foo
    locationSpan : {start: [1,0], end: [5,10]}
    headerSpan : [0, -1]
    footerSpan : [0, -1]
`
	if got := Render(file); got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderEmptyFile(t *testing.T) {
	file, err := Build("empty.src", &frontend.ParseResult{Tree: &frontend.Tree{}})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := `---
type : file
name : empty.src
locationSpan : {start: [0,0], end: [0,0]}
footerSpan : [0, -1]
parsingErrorsDetected : false
`
	got := Render(file)
	if got != want {
		t.Fatalf("unexpected report:\n%s", got)
	}
	if strings.Contains(got, "children :") {
		t.Fatal("expected the children line to be omitted for an empty outline")
	}
}

func TestRenderParsingErrors(t *testing.T) {
	file := &File{
		Name:     "broken.src",
		Location: Span(1, 0, 2, 0),
		Footer:   NoSpan,
		Children: []Section{
			Container{Kind: "module", Name: "M", Location: Span(1, 0, 2, 0), Header: NoSpan, Footer: NoSpan},
		},
		ParsingErrors: []ParsingError{
			{Location: Position{Line: 4, Column: 2}, Message: `Unexpected token "let"`},
			{Location: Position{Line: 9, Column: 0}, Message: "missing closing brace"},
		},
	}

	want := `---
type : file
name : broken.src
locationSpan : {start: [1,0], end: [2,0]}
footerSpan : [0, -1]
parsingErrorsDetected : true
children :
  - type : module
    name : M
    locationSpan : {start: [1,0], end: [2,0]}
    headerSpan : [0, -1]
    footerSpan : [0, -1]
parsingErrors :
  - location: [4,2]
    message: "Unexpected token \"let\""
  - location: [9,0]
    message: "missing closing brace"
`
	if got := Render(file); got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderNestedChildren(t *testing.T) {
	method := Terminal{Kind: "method", Name: "Run", Location: Span(5, 2, 17, 3), Span: NoSpan}
	class := Container{Kind: "class", Name: "Engine", Location: Span(3, 0, 18, 1), Header: NoSpan, Footer: NoSpan, Children: []Section{method}}
	leaf := Terminal{Kind: "variable", Name: "x", Location: Span(19, 0, 19, 10), Span: NoSpan}
	module := Container{Kind: "module", Name: "app", Location: Span(1, 0, 20, 1), Header: NoSpan, Footer: NoSpan, Children: []Section{class, leaf}}
	file := &File{Name: "app.src", Location: Span(1, 0, 20, 1), Footer: NoSpan, Children: []Section{module}}

	want := `---
type : file
name : app.src
locationSpan : {start: [1,0], end: [20,1]}
footerSpan : [0, -1]
parsingErrorsDetected : false
children :
  - type : module
    name : app
    locationSpan : {start: [1,0], end: [20,1]}
    headerSpan : [0, -1]
    footerSpan : [0, -1]
    children :
    - type : class
      name : Engine
      locationSpan : {start: [3,0], end: [18,1]}
      headerSpan : [0, -1]
      footerSpan : [0, -1]
      children :
      - type : method
        name : Run
        locationSpan : {start: [5,2], end: [17,3]}
        span : [0, -1]
    - type : variable
      name : x
      locationSpan : {start: [19,0], end: [19,10]}
      span : [0, -1]
`
	if got := Render(file); got != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderDeterminism(t *testing.T) {
	file := &File{
		Name:     "same.src",
		Location: Span(1, 0, 8, 0),
		Footer:   NoSpan,
		Children: []Section{
			Container{Kind: "namespace", Name: "a.b", Location: Span(1, 0, 8, 0), Header: NoSpan, Footer: NoSpan},
		},
	}
	first := Render(file)
	second := Render(file)
	if first != second {
		t.Fatal("expected byte-identical output across runs")
	}

	var buf bytes.Buffer
	if err := Write(&buf, file); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if buf.String() != first {
		t.Fatal("expected Write to emit exactly the rendered report")
	}
}

func TestRenderWhitespaceDiscipline(t *testing.T) {
	file := &File{
		Name:     "clean.src",
		Location: Span(1, 0, 4, 0),
		Footer:   NoSpan,
		Children: []Section{
			Container{
				Kind: "module", Name: "m", Location: Span(1, 0, 4, 0), Header: NoSpan, Footer: NoSpan,
				Children: []Section{
					Terminal{Kind: "function", Name: "f", Location: Span(2, 0, 3, 1), Span: NoSpan},
				},
			},
		},
		ParsingErrors: []ParsingError{{Location: Position{Line: 2, Column: 1}, Message: "odd token"}},
	}

	got := Render(file)
	if !strings.HasSuffix(got, "\n") || strings.HasSuffix(got, "\n\n") {
		t.Fatal("expected exactly one trailing newline")
	}
	for _, line := range strings.Split(strings.TrimSuffix(got, "\n"), "\n") {
		if line == "" {
			t.Fatal("expected no blank lines")
		}
		if strings.ContainsRune(line, '\t') {
			t.Fatalf("expected no tabs: %q", line)
		}
		if strings.TrimRight(line, " ") != line {
			t.Fatalf("expected no trailing whitespace: %q", line)
		}
	}
}
