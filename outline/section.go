package outline

// Section is one node of the outline: a Container that owns nested
// declarations, or a Terminal leaf. The two concrete types are the only
// implementations; consumers dispatch with a type switch.
type Section interface {
	// LocationSpan returns the construct's line span.
	LocationSpan() LineSpan

	section()
}

// Container is a construct that owns nested declarations, such as a module,
// namespace, or class. Header and Footer locate the construct's opening and
// closing syntax when known; otherwise they hold NoSpan.
type Container struct {
	Kind     string
	Name     string
	Location LineSpan
	Header   CharacterSpan
	Footer   CharacterSpan
	Children []Section
}

// LocationSpan implements Section.
func (c Container) LocationSpan() LineSpan { return c.Location }

func (Container) section() {}

// Terminal is a leaf construct with no nested declarations, such as a
// function, field, or binding.
type Terminal struct {
	Kind     string
	Name     string
	Location LineSpan
	Span     CharacterSpan
}

// LocationSpan implements Section.
func (t Terminal) LocationSpan() LineSpan { return t.Location }

func (Terminal) section() {}

// ParsingError is a located diagnostic reported by the frontend while
// analyzing the file. Diagnostics never prevent an outline from being built.
type ParsingError struct {
	Location Position
	Message  string
}

// File is the root outline document for one source file. Location spans from
// the start of the first child to the end of the last; a file with no
// children carries the degenerate span ((0,0),(0,0)).
type File struct {
	Name          string
	Location      LineSpan
	Footer        CharacterSpan
	Children      []Section
	ParsingErrors []ParsingError
}
