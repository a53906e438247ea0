package lsp

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"go.lsp.dev/protocol"

	"github.com/lexcodex/contour/frontend"
)

// Frontend adapts a language server to the frontend contract, so languages
// without a built-in parser still produce outlines.
type Frontend struct {
	client   *Client
	language string
}

// NewFrontend wraps a running client for one language.
func NewFrontend(client *Client, language string) *Frontend {
	return &Frontend{client: client, language: language}
}

// Language implements frontend.Frontend.
func (f *Frontend) Language() string { return f.language }

// Parse implements frontend.Frontend. The server owns parsing: a null
// symbol response means it could make nothing of the file and the result
// carries no tree. Diagnostics are best effort; a server that never
// publishes any simply contributes none.
func (f *Frontend) Parse(content string, filePath string) (*frontend.ParseResult, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	docs, infos, err := f.client.DocumentSymbols(ctx, filePath, content)
	if err != nil {
		return nil, err
	}

	result := &frontend.ParseResult{}
	if diags, err := f.client.Diagnostics(ctx, filePath, content); err == nil {
		for _, d := range diags {
			result.Diagnostics = append(result.Diagnostics, frontend.Diagnostic{
				Line:    int(d.Range.Start.Line) + 1,
				Column:  int(d.Range.Start.Character),
				Message: d.Message,
			})
		}
	}

	switch {
	case docs != nil:
		tree := &frontend.Tree{}
		for _, sym := range docs {
			tree.Units = append(tree.Units, symbolDecl(sym))
		}
		result.Tree = tree
	case infos != nil:
		result.Tree = infoTree(filePath, infos)
	}
	return result, nil
}

func symbolDecl(sym protocol.DocumentSymbol) frontend.Decl {
	d := frontend.Decl{
		Kind:  mapSymbolKind(sym.Kind),
		Name:  symbolName(sym.Name),
		Range: rangeFromLSP(sym.Range),
	}
	for _, child := range sym.Children {
		d.Members = append(d.Members, symbolDecl(child))
	}
	return d
}

// infoTree wraps a flat symbol list in a single document unit; flat
// responses carry no hierarchy to recover.
func infoTree(filePath string, infos []protocol.SymbolInformation) *frontend.Tree {
	if len(infos) == 0 {
		return &frontend.Tree{}
	}
	base := filepath.Base(filePath)
	unit := frontend.Decl{
		Kind:  frontend.KindDocument,
		Name:  strings.TrimSuffix(base, filepath.Ext(base)),
		Range: rangeFromLSP(infos[0].Location.Range),
	}
	for _, sym := range infos {
		unit.Members = append(unit.Members, frontend.Decl{
			Kind:  mapSymbolKind(sym.Kind),
			Name:  symbolName(sym.Name),
			Range: rangeFromLSP(sym.Location.Range),
		})
	}
	return &frontend.Tree{Units: []frontend.Decl{unit}}
}

func symbolName(name string) string {
	if name == "" {
		return "anonymous"
	}
	return name
}

// rangeFromLSP converts a protocol range. LSP lines are zero-based; shift
// to one-based. Characters are already zero-based and the end position is
// exclusive on both sides of the conversion.
func rangeFromLSP(r protocol.Range) frontend.Range {
	return frontend.Range{
		StartLine: int(r.Start.Line) + 1,
		StartCol:  int(r.Start.Character),
		EndLine:   int(r.End.Line) + 1,
		EndCol:    int(r.End.Character),
	}
}

func mapSymbolKind(kind protocol.SymbolKind) frontend.Kind {
	switch int(kind) {
	case 1: // File
		return frontend.KindDocument
	case 2: // Module
		return frontend.KindModule
	case 3: // Namespace
		return frontend.KindNamespace
	case 4: // Package
		return frontend.KindPackage
	case 5: // Class
		return frontend.KindClass
	case 6: // Method
		return frontend.KindMethod
	case 7: // Property
		return frontend.KindProperty
	case 8: // Field
		return frontend.KindField
	case 9: // Constructor
		return frontend.KindFunction
	case 10: // Enum
		return frontend.KindEnum
	case 11: // Interface
		return frontend.KindInterface
	case 12: // Function
		return frontend.KindFunction
	case 14: // Constant
		return frontend.KindConstant
	case 22: // EnumMember
		return frontend.KindConstant
	case 23: // Struct
		return frontend.KindStruct
	case 24: // Event
		return frontend.KindProperty
	case 25: // Operator
		return frontend.KindFunction
	case 26: // TypeParameter
		return frontend.KindType
	default: // Variable and the value-like kinds
		return frontend.KindVariable
	}
}
