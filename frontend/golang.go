package frontend

import (
	"go/ast"
	"go/parser"
	"go/scanner"
	"go/token"
)

// GoFrontend builds declaration trees from Go source using the standard
// library parser.
type GoFrontend struct{}

// NewGoFrontend creates a Go frontend.
func NewGoFrontend() *GoFrontend {
	return &GoFrontend{}
}

// Language implements Frontend.
func (f *GoFrontend) Language() string { return "go" }

// Parse implements Frontend. Syntax errors become diagnostics and still
// yield a tree; the tree is withheld only when the file has no usable
// package clause to anchor a unit on.
func (f *GoFrontend) Parse(content string, filePath string) (*ParseResult, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filePath, content, parser.AllErrors|parser.SkipObjectResolution)

	result := &ParseResult{}
	if err != nil {
		if list, ok := err.(scanner.ErrorList); ok {
			for _, e := range list {
				result.Diagnostics = append(result.Diagnostics, Diagnostic{
					Line:    e.Pos.Line,
					Column:  e.Pos.Column - 1,
					Message: e.Msg,
				})
			}
		} else {
			result.Diagnostics = append(result.Diagnostics, Diagnostic{Line: 1, Message: err.Error()})
		}
	}

	// A broken package clause makes the parser hand back a placeholder
	// file whose Package position is unset.
	if file == nil || file.Name == nil || !file.Package.IsValid() {
		return result, nil
	}

	unit := Decl{
		Kind:  KindPackage,
		Name:  file.Name.Name,
		Range: rangeBetween(fset, file.Package, file.Name.End()),
	}
	for _, decl := range file.Decls {
		unit.Members = append(unit.Members, topLevelDecls(fset, decl)...)
	}

	result.Tree = &Tree{Units: []Decl{unit}}
	return result, nil
}

func topLevelDecls(fset *token.FileSet, decl ast.Decl) []Decl {
	switch d := decl.(type) {
	case *ast.FuncDecl:
		out := Decl{Kind: KindFunction, Name: d.Name.Name, Range: nodeRange(fset, d)}
		if d.Recv != nil && len(d.Recv.List) > 0 {
			out.Kind = KindMethod
			if recv := exprName(d.Recv.List[0].Type); recv != "" {
				out.Name = recv + "." + d.Name.Name
			}
		}
		return []Decl{out}
	case *ast.GenDecl:
		return genDecls(fset, d)
	default:
		return nil
	}
}

// genDecls flattens a const, var, or type declaration into one entry per
// introduced name. Imports carry no names worth outlining and are dropped.
func genDecls(fset *token.FileSet, d *ast.GenDecl) []Decl {
	var out []Decl
	for _, spec := range d.Specs {
		switch s := spec.(type) {
		case *ast.TypeSpec:
			td := Decl{Name: s.Name.Name, Range: specRange(fset, d, s)}
			switch t := s.Type.(type) {
			case *ast.StructType:
				td.Kind = KindStruct
				td.Members = fieldDecls(fset, t.Fields, KindField)
			case *ast.InterfaceType:
				td.Kind = KindInterface
				td.Members = fieldDecls(fset, t.Methods, KindMethod)
			default:
				td.Kind = KindType
			}
			out = append(out, td)
		case *ast.ValueSpec:
			kind := KindVariable
			if d.Tok == token.CONST {
				kind = KindConstant
			}
			r := specRange(fset, d, s)
			for _, name := range s.Names {
				out = append(out, Decl{Kind: kind, Name: name.Name, Range: r})
			}
		}
	}
	return out
}

// specRange covers the whole declaration for an ungrouped spec so the
// keyword stays inside the span, and just the spec line inside a group.
func specRange(fset *token.FileSet, d *ast.GenDecl, spec ast.Spec) Range {
	if d.Lparen.IsValid() {
		return nodeRange(fset, spec)
	}
	return nodeRange(fset, d)
}

func fieldDecls(fset *token.FileSet, fields *ast.FieldList, kind Kind) []Decl {
	if fields == nil {
		return nil
	}
	var out []Decl
	for _, field := range fields.List {
		r := nodeRange(fset, field)
		if len(field.Names) == 0 {
			// Embedded entry, named after its type expression.
			if name := exprName(field.Type); name != "" {
				out = append(out, Decl{Kind: kind, Name: name, Range: r})
			}
			continue
		}
		for _, name := range field.Names {
			out = append(out, Decl{Kind: kind, Name: name.Name, Range: r})
		}
	}
	return out
}

// exprName extracts the base identifier of a type expression, unwrapping
// pointers and type parameter lists.
func exprName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if prefix := exprName(e.X); prefix != "" {
			return prefix + "." + e.Sel.Name
		}
		return e.Sel.Name
	case *ast.StarExpr:
		return exprName(e.X)
	case *ast.IndexExpr:
		return exprName(e.X)
	case *ast.IndexListExpr:
		return exprName(e.X)
	default:
		return ""
	}
}

func nodeRange(fset *token.FileSet, node ast.Node) Range {
	return rangeBetween(fset, node.Pos(), node.End())
}

// rangeBetween converts token positions to a Range. go/token columns are
// one-based; shift to zero-based.
func rangeBetween(fset *token.FileSet, start, end token.Pos) Range {
	s := fset.Position(start)
	e := fset.Position(end)
	return Range{
		StartLine: s.Line,
		StartCol:  s.Column - 1,
		EndLine:   e.Line,
		EndCol:    e.Column - 1,
	}
}
