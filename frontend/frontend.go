package frontend

// Kind classifies a declaration in a language-neutral vocabulary.
type Kind string

const (
	KindModule    Kind = "module"
	KindNamespace Kind = "namespace"
	KindPackage   Kind = "package"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindInterface Kind = "interface"
	KindEnum      Kind = "enum"
	KindType      Kind = "type"
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindField     Kind = "field"
	KindConstant  Kind = "constant"
	KindVariable  Kind = "variable"
	KindProperty  Kind = "property"
	KindDocument  Kind = "document"
	KindSection   Kind = "section"
	KindCodeBlock Kind = "codeblock"
)

// Composite reports whether declarations of this kind own nested members.
func (k Kind) Composite() bool {
	switch k {
	case KindModule, KindNamespace, KindPackage, KindClass, KindStruct,
		KindInterface, KindEnum, KindDocument, KindSection:
		return true
	default:
		return false
	}
}

// Range locates a declaration in its source file. Lines are one-relative and
// columns zero-relative; the end position points one character past the last
// included character.
type Range struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// Decl is one declaration in the parse tree, carrying its immediate members
// in declaration order.
type Decl struct {
	Kind    Kind
	Name    string
	Range   Range
	Members []Decl
}

// Tree holds the top-level declarative units of one parsed file.
type Tree struct {
	Units []Decl
}

// Diagnostic is a recoverable issue reported while parsing. Line is
// one-relative, Column zero-relative.
type Diagnostic struct {
	Line    int
	Column  int
	Message string
}

// ParseResult carries whatever the frontend could produce for a file. A nil
// Tree means no parse tree could be built; Diagnostics may be present either
// way and never invalidate the tree.
type ParseResult struct {
	Tree        *Tree
	Diagnostics []Diagnostic
}

// Frontend converts file contents into a declaration tree. An error reports
// a component failure (I/O, a dead subprocess); an unparsable file is not an
// error and comes back as a ParseResult with a nil Tree.
type Frontend interface {
	Parse(content string, filePath string) (*ParseResult, error)
	Language() string
}
