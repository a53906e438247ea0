package outline

import (
	"errors"
	"fmt"

	"github.com/lexcodex/contour/frontend"
)

// ErrParseUnavailable reports that the frontend could not produce a parse
// tree for a file, leaving nothing to outline. Per-construct diagnostics are
// recoverable and never cause this error.
var ErrParseUnavailable = errors.New("parse tree unavailable")

// BuildOption adjusts how Build assembles the outline.
type BuildOption func(*buildOptions)

type buildOptions struct {
	nested bool
}

// WithNested makes Build recurse into member declarations, classifying each
// as a nested Container or Terminal by kind. The default keeps children
// empty and emits only the outermost container per top-level unit.
func WithNested(nested bool) BuildOption {
	return func(o *buildOptions) { o.nested = nested }
}

// Build assembles the outline document for one parsed file. It fails with
// ErrParseUnavailable when res carries no parse tree; diagnostics alone never
// abort construction and are collected into the document's ParsingErrors.
func Build(name string, res *frontend.ParseResult, opts ...BuildOption) (*File, error) {
	var options buildOptions
	for _, opt := range opts {
		opt(&options)
	}
	if res == nil || res.Tree == nil {
		return nil, fmt.Errorf("%s: %w", name, ErrParseUnavailable)
	}

	file := &File{Name: name, Footer: NoSpan}
	for _, d := range res.Diagnostics {
		file.ParsingErrors = append(file.ParsingErrors, ParsingError{
			Location: Position{Line: d.Line, Column: d.Column},
			Message:  d.Message,
		})
	}

	for _, unit := range res.Tree.Units {
		file.Children = append(file.Children, buildUnit(unit, options.nested))
	}

	if len(file.Children) > 0 {
		spans := make([]LineSpan, len(file.Children))
		for i, child := range file.Children {
			spans[i] = child.LocationSpan()
		}
		file.Location = Cover(spans[0], spans[1:]...)
	}
	return file, nil
}

// buildUnit emits the container for one top-level declarative unit. Its span
// is the union of the unit's own syntactic range and the ranges of its
// immediate members, so the container always encloses everything it owns.
func buildUnit(unit frontend.Decl, nested bool) Container {
	span := spanOf(unit.Range)
	if len(unit.Members) > 0 {
		members := make([]LineSpan, len(unit.Members))
		for i, m := range unit.Members {
			members[i] = spanOf(m.Range)
		}
		span = span.Union(Cover(members[0], members[1:]...))
	}
	out := Container{
		Kind:     string(unit.Kind),
		Name:     unit.Name,
		Location: span,
		Header:   NoSpan,
		Footer:   NoSpan,
	}
	if !nested {
		return out
	}
	for _, m := range unit.Members {
		child := buildDecl(m)
		out.Children = append(out.Children, child)
		out.Location = out.Location.Union(child.LocationSpan())
	}
	return out
}

// buildDecl classifies a declaration by kind: composite kinds become nested
// containers, everything else a terminal leaf.
func buildDecl(d frontend.Decl) Section {
	if !d.Kind.Composite() {
		return Terminal{
			Kind:     string(d.Kind),
			Name:     d.Name,
			Location: spanOf(d.Range),
			Span:     NoSpan,
		}
	}
	out := Container{
		Kind:     string(d.Kind),
		Name:     d.Name,
		Location: spanOf(d.Range),
		Header:   NoSpan,
		Footer:   NoSpan,
	}
	for _, m := range d.Members {
		child := buildDecl(m)
		out.Children = append(out.Children, child)
		out.Location = out.Location.Union(child.LocationSpan())
	}
	return out
}

func spanOf(r frontend.Range) LineSpan {
	return Span(r.StartLine, r.StartCol, r.EndLine, r.EndCol)
}
