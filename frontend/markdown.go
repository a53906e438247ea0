package frontend

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownFrontend outlines Markdown documents with goldmark. Headings nest
// by level and fenced code blocks attach to their enclosing section, so the
// document structure mirrors what a reader sees in the rendered page.
type MarkdownFrontend struct{}

// NewMarkdownFrontend creates a Markdown frontend.
func NewMarkdownFrontend() *MarkdownFrontend {
	return &MarkdownFrontend{}
}

// Language implements Frontend.
func (f *MarkdownFrontend) Language() string { return "markdown" }

// mdBlock is a section under construction. Its end line stays unknown until
// the next heading of the same or an outer level arrives, or the file ends.
type mdBlock struct {
	kind      Kind
	name      string
	level     int // heading level, 0 for the implicit document block
	startLine int
	endLine   int
	children  []*mdBlock
}

// Parse implements Frontend. Markdown has no syntax errors: any input is a
// valid document, so the result never carries diagnostics.
func (f *MarkdownFrontend) Parse(content string, filePath string) (*ParseResult, error) {
	src := []byte(content)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	offsets := lineOffsets(src)
	total := countLines(src, offsets)

	var roots []*mdBlock
	var stack []*mdBlock

	push := func(b *mdBlock) {
		if len(stack) == 0 {
			roots = append(roots, b)
		} else {
			top := stack[len(stack)-1]
			top.children = append(top.children, b)
		}
		stack = append(stack, b)
	}
	closeTop := func(endLine int) {
		top := stack[len(stack)-1]
		top.endLine = endLine
		stack = stack[:len(stack)-1]
	}

	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			if node.Lines().Len() == 0 {
				continue
			}
			line := lineAt(offsets, node.Lines().At(0).Start)
			// The level-0 document block only ever wraps content that
			// precedes the first heading.
			for len(stack) > 0 && (stack[len(stack)-1].level == 0 || stack[len(stack)-1].level >= node.Level) {
				closeTop(line - 1)
			}
			name := strings.TrimSpace(string(node.Text(src)))
			if name == "" {
				name = "section"
			}
			push(&mdBlock{kind: KindSection, name: name, level: node.Level, startLine: line})

		case *ast.FencedCodeBlock:
			block, ok := fencedBlock(node, src, offsets, total)
			if !ok {
				continue
			}
			f.attach(block, &roots, &stack, filePath)

		case *ast.CodeBlock:
			if node.Lines().Len() == 0 {
				continue
			}
			first := lineAt(offsets, node.Lines().At(0).Start)
			last := lineAt(offsets, node.Lines().At(node.Lines().Len()-1).Start)
			block := &mdBlock{kind: KindCodeBlock, name: "code", startLine: first, endLine: last}
			f.attach(block, &roots, &stack, filePath)
		}
	}
	for len(stack) > 0 {
		closeTop(total)
	}

	units := make([]Decl, 0, len(roots))
	for _, b := range roots {
		units = append(units, blockDecl(b))
	}
	return &ParseResult{Tree: &Tree{Units: units}}, nil
}

// attach hangs a code block off the innermost open section, opening the
// implicit document block for code that appears before any heading.
func (f *MarkdownFrontend) attach(block *mdBlock, roots *[]*mdBlock, stack *[]*mdBlock, filePath string) {
	if len(*stack) == 0 {
		base := filepath.Base(filePath)
		doc := &mdBlock{
			kind:      KindDocument,
			name:      strings.TrimSuffix(base, filepath.Ext(base)),
			startLine: 1,
		}
		*roots = append(*roots, doc)
		*stack = append(*stack, doc)
	}
	top := (*stack)[len(*stack)-1]
	top.children = append(top.children, block)
}

// fencedBlock locates a fenced code block from its content lines, widening
// by one line on each side for the fences. An empty block with no info
// string has no located line at all and is dropped.
func fencedBlock(node *ast.FencedCodeBlock, src []byte, offsets []int, total int) (*mdBlock, bool) {
	name := "code"
	if lang := node.Language(src); len(lang) > 0 {
		name = string(lang)
	}
	if node.Lines().Len() > 0 {
		first := lineAt(offsets, node.Lines().At(0).Start) - 1
		if first < 1 {
			first = 1
		}
		last := lineAt(offsets, node.Lines().At(node.Lines().Len()-1).Start) + 1
		if last > total {
			last = total
		}
		return &mdBlock{kind: KindCodeBlock, name: name, startLine: first, endLine: last}, true
	}
	if node.Info != nil {
		line := lineAt(offsets, node.Info.Segment.Start)
		last := line + 1
		if last > total {
			last = total
		}
		return &mdBlock{kind: KindCodeBlock, name: name, startLine: line, endLine: last}, true
	}
	return nil, false
}

// blockDecl converts a finished block into a declaration. Spans are line
// granular: each construct runs from column 0 of its first line to column 0
// of the line after its last.
func blockDecl(b *mdBlock) Decl {
	d := Decl{
		Kind: b.kind,
		Name: b.name,
		Range: Range{
			StartLine: b.startLine,
			StartCol:  0,
			EndLine:   b.endLine + 1,
			EndCol:    0,
		},
	}
	for _, c := range b.children {
		d.Members = append(d.Members, blockDecl(c))
	}
	return d
}

// lineOffsets returns the byte offset of the start of each line.
func lineOffsets(src []byte) []int {
	offsets := []int{0}
	for i, b := range src {
		if b == '\n' {
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// lineAt maps a byte offset to its one-based line number.
func lineAt(offsets []int, pos int) int {
	i := sort.Search(len(offsets), func(i int) bool { return offsets[i] > pos })
	if i < 1 {
		return 1
	}
	return i
}

func countLines(src []byte, offsets []int) int {
	if len(src) == 0 {
		return 0
	}
	if src[len(src)-1] == '\n' {
		return len(offsets) - 1
	}
	return len(offsets)
}
