package outline

import "fmt"

// Position is a point in a source file. Lines are one-relative; columns are
// zero-relative, counted in characters within the line.
type Position struct {
	Line   int
	Column int
}

// Before reports whether p precedes q in (line, column) order.
func (p Position) Before(q Position) bool {
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Column < q.Column
}

func minPos(a, b Position) Position {
	if b.Before(a) {
		return b
	}
	return a
}

func maxPos(a, b Position) Position {
	if a.Before(b) {
		return b
	}
	return a
}

// LineSpan is a half-open interval of source positions: End points one
// character past the last included character, either on the same line or at
// column 0 of the following line.
type LineSpan struct {
	Start Position
	End   Position
}

// Span builds a LineSpan from raw line/column coordinates.
func Span(startLine, startCol, endLine, endCol int) LineSpan {
	return LineSpan{
		Start: Position{Line: startLine, Column: startCol},
		End:   Position{Line: endLine, Column: endCol},
	}
}

// Union returns the smallest span enclosing both s and t.
func (s LineSpan) Union(t LineSpan) LineSpan {
	return LineSpan{Start: minPos(s.Start, t.Start), End: maxPos(s.End, t.End)}
}

// Contains reports whether s encloses t.
func (s LineSpan) Contains(t LineSpan) bool {
	return !t.Start.Before(s.Start) && !s.End.Before(t.End)
}

// Cover unions one or more spans. The required first argument keeps the
// union of zero spans unrepresentable.
func Cover(first LineSpan, rest ...LineSpan) LineSpan {
	out := first
	for _, s := range rest {
		out = out.Union(s)
	}
	return out
}

// String renders the span in report notation.
func (s LineSpan) String() string {
	return fmt.Sprintf("{start: [%d,%d], end: [%d,%d]}",
		s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}

// CharacterSpan is a closed interval [First, Last] of zero-relative character
// offsets inside a single construct, used for header/footer sub-ranges.
type CharacterSpan struct {
	First int
	Last  int
}

// NoSpan is the canonical value for a character sub-range the builder did not
// compute.
var NoSpan = CharacterSpan{First: 0, Last: -1}

// Empty reports whether the span covers no characters.
func (c CharacterSpan) Empty() bool {
	return c.Last < c.First
}

// String renders the span in report notation.
func (c CharacterSpan) String() string {
	return fmt.Sprintf("[%d, %d]", c.First, c.Last)
}
