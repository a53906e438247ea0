package frontend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGoFrontendParse(t *testing.T) {
	source := `package sample

import "io"

const answer = 42

var enabled = true

type Reader struct {
	src io.Reader
	pos int
}

func (r *Reader) Len() int {
	return r.pos
}

func Open(name string) (*Reader, error) {
	return &Reader{}, nil
}

type Closer interface {
	io.Closer
	Shutdown() error
}
`
	f := NewGoFrontend()
	require.Equal(t, "go", f.Language())

	res, err := f.Parse(source, "sample.go")
	require.NoError(t, err)
	require.Empty(t, res.Diagnostics)
	require.NotNil(t, res.Tree)
	require.Len(t, res.Tree.Units, 1)

	unit := res.Tree.Units[0]
	require.Equal(t, KindPackage, unit.Kind)
	require.Equal(t, "sample", unit.Name)
	require.Equal(t, Range{StartLine: 1, StartCol: 0, EndLine: 1, EndCol: 14}, unit.Range)

	require.Len(t, unit.Members, 6)
	kinds := make([]Kind, len(unit.Members))
	names := make([]string, len(unit.Members))
	for i, m := range unit.Members {
		kinds[i] = m.Kind
		names[i] = m.Name
	}
	require.Equal(t, []Kind{KindConstant, KindVariable, KindStruct, KindMethod, KindFunction, KindInterface}, kinds)
	require.Equal(t, []string{"answer", "enabled", "Reader", "Reader.Len", "Open", "Closer"}, names)

	// Imports never show up in the outline.
	for _, name := range names {
		require.NotEqual(t, "io", name)
	}

	reader := unit.Members[2]
	require.Len(t, reader.Members, 2)
	require.Equal(t, KindField, reader.Members[0].Kind)
	require.Equal(t, "src", reader.Members[0].Name)
	require.Equal(t, "pos", reader.Members[1].Name)
	require.Equal(t, 9, reader.Range.StartLine)
	require.Equal(t, 12, reader.Range.EndLine)

	method := unit.Members[3]
	require.Equal(t, Range{StartLine: 14, StartCol: 0, EndLine: 16, EndCol: 1}, method.Range)

	closer := unit.Members[5]
	require.Len(t, closer.Members, 2)
	require.Equal(t, KindMethod, closer.Members[0].Kind)
	require.Equal(t, "io.Closer", closer.Members[0].Name)
	require.Equal(t, "Shutdown", closer.Members[1].Name)
}

func TestGoFrontendGenerics(t *testing.T) {
	source := `package tree

type Node[T any] struct {
	value T
}

func (n *Node[T]) Value() T {
	return n.value
}
`
	res, err := NewGoFrontend().Parse(source, "tree.go")
	require.NoError(t, err)
	require.NotNil(t, res.Tree)

	members := res.Tree.Units[0].Members
	require.Len(t, members, 2)
	require.Equal(t, KindStruct, members[0].Kind)
	require.Equal(t, "Node", members[0].Name)
	require.Equal(t, KindMethod, members[1].Kind)
	require.Equal(t, "Node.Value", members[1].Name)
}

func TestGoFrontendGroupedSpecs(t *testing.T) {
	source := `package config

const (
	modeOff = iota
	modeOn
)

var (
	debug   bool
	verbose bool
)

type (
	Alias = string
	Count int
)
`
	res, err := NewGoFrontend().Parse(source, "config.go")
	require.NoError(t, err)
	require.NotNil(t, res.Tree)

	members := res.Tree.Units[0].Members
	require.Len(t, members, 6)
	require.Equal(t, "modeOff", members[0].Name)
	require.Equal(t, KindConstant, members[0].Kind)
	require.Equal(t, "modeOn", members[1].Name)
	require.Equal(t, KindVariable, members[2].Kind)
	require.Equal(t, "debug", members[2].Name)
	require.Equal(t, KindType, members[4].Kind)
	require.Equal(t, "Alias", members[4].Name)
	require.Equal(t, "Count", members[5].Name)

	// Grouped specs each carry their own line, not the whole block.
	require.Equal(t, 4, members[0].Range.StartLine)
	require.Equal(t, 5, members[1].Range.StartLine)
	require.Equal(t, 9, members[2].Range.StartLine)
}

func TestGoFrontendSyntaxErrors(t *testing.T) {
	source := `package sample

func Broken( {
}
`
	res, err := NewGoFrontend().Parse(source, "broken.go")
	require.NoError(t, err)
	// A bad function does not take down the file outline.
	require.NotNil(t, res.Tree)
	require.Equal(t, "sample", res.Tree.Units[0].Name)
	require.NotEmpty(t, res.Diagnostics)
	require.Equal(t, 3, res.Diagnostics[0].Line)
	require.Contains(t, res.Diagnostics[0].Message, "expected")
}

func TestGoFrontendNoPackageClause(t *testing.T) {
	res, err := NewGoFrontend().Parse("func x() {}\n", "orphan.go")
	require.NoError(t, err)
	require.Nil(t, res.Tree)
	require.NotEmpty(t, res.Diagnostics)
	require.Equal(t, 1, res.Diagnostics[0].Line)
	require.Equal(t, 0, res.Diagnostics[0].Column)
	require.Contains(t, res.Diagnostics[0].Message, "package")
}

func TestGoFrontendEmptyContent(t *testing.T) {
	res, err := NewGoFrontend().Parse("", "empty.go")
	require.NoError(t, err)
	require.Nil(t, res.Tree)
	require.NotEmpty(t, res.Diagnostics)
}
