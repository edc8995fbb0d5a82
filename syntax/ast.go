package syntax

// Node is implemented by every AST node. SrcStart/SrcEnd are fixed at
// parse time; ResStart/ResEnd are only meaningful after Root.Render has
// run (and both equal SrcStart/SrcEnd until then, a default rather than a
// sentinel; DumpPosMap checks that each Root was rendered before reading
// Res* fields, while the accessors themselves do not check).
type Node interface {
	SrcStart() Position
	SrcEnd() Position
	ResStart() Position
	ResEnd() Position
}

// span holds the four positions shared by every node and is embedded by
// each concrete type rather than stored behind an interface, since
// rendering mutates it in place during the single top-down walk.
type span struct {
	srcStart, srcEnd Position
	resStart, resEnd Position
	rendered         bool
}

func (s *span) SrcStart() Position { return s.srcStart }
func (s *span) SrcEnd() Position   { return s.srcEnd }
func (s *span) ResStart() Position { return s.resStart }
func (s *span) ResEnd() Position   { return s.resEnd }

func newSpan(start, end Position) span {
	return span{srcStart: start, srcEnd: end, resStart: start, resEnd: end}
}

// PlainText is literal text destined for output verbatim.
type PlainText struct {
	span
	Content string
}

// NewPlainText builds a PlainText node spanning [start, start+len(content)).
func NewPlainText(start Position, content string) *PlainText {
	end := start.AddDelta(DeltaFromString(content))
	return &PlainText{span: newSpan(start, end), Content: content}
}

// NewParagraphNode renders to exactly "\n\n" regardless of how many
// newlines its source span covered.
type NewParagraphNode struct {
	span
}

// Blank renders to the empty string: brackets and consumed command
// tokens whose own markup carries no output.
type Blank struct {
	span
}

// Group is a brace-delimited sequence of child nodes.
type Group struct {
	span
	Elems []Node
}

// Command is a parsed command invocation: a prototype plus the argument
// nodes bound to it. Toks holds the prototype's template expanded against
// Args, populated the first time the command is rendered.
type Command struct {
	span
	Proto Prototype
	Args  []Node
	Toks  []Node
}

// Root is a top-level or transcluded document. Filename is empty for an
// anonymous top-level source and set to the resolved path for a
// transcluded sub-document.
type Root struct {
	span
	Filename string
	Elems    []Node
}

// NewRoot builds a Root spanning its children (or a zero-width span at
// Origin when there are none).
func NewRoot(filename string, elems []Node) *Root {
	start, end := Origin, Origin
	if len(elems) > 0 {
		start = elems[0].SrcStart()
		end = elems[len(elems)-1].SrcEnd()
	}
	return &Root{span: newSpan(start, end), Filename: filename, Elems: elems}
}
