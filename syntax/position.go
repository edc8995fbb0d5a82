// Package syntax implements the core of protex: a lexer, a command-driven
// parser, a renderer and a bidirectional position map for LaTeX-like
// markup. It has no knowledge of where a command catalog comes from or how
// a cleaned document is ultimately consumed — callers supply a Catalog and,
// for transclusion, a FileOpener.
package syntax

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a single point in a source, expressed as a character (rune)
// offset plus the derived line and column. Offset is the authoritative ordering key;
// line and column exist for callers that want to report results in
// human terms.
type Position struct {
	Offset int
	Col    int
	Line   int
}

// Origin is the canonical start-of-source position: offset 0, column 0,
// line 1.
var Origin = Position{Offset: 0, Col: 0, Line: 1}

func (p Position) String() string {
	return fmt.Sprintf("L%dC%d", p.Line, p.Col)
}

// Less orders positions by Offset alone; Offset is sufficient since it is
// monotonic across the whole source regardless of line breaks.
func (p Position) Less(other Position) bool { return p.Offset < other.Offset }

// LessEq reports whether p sorts at or before other.
func (p Position) LessEq(other Position) bool { return p.Offset <= other.Offset }

// Equal reports whether p and other denote the same offset.
func (p Position) Equal(other Position) bool { return p.Offset == other.Offset }

// Delta is a signed advance in (offset, col, line), the result of
// "consuming" some text starting from an arbitrary position. It has the
// same shape as Position but is interpreted additively.
type Delta struct {
	Offset int
	Col    int
	Line   int
}

func (d Delta) String() string {
	if d.Line == 0 {
		return fmt.Sprintf("c+%d", d.Col)
	}
	return fmt.Sprintf("l+%dC%d", d.Line, d.Col)
}

// DeltaFromString derives the delta produced by consuming s: if s contains
// newlines, the delta's column becomes the length of the text following
// the last newline; otherwise it tracks the offset.
func DeltaFromString(s string) Delta {
	if !strings.ContainsRune(s, '\n') {
		n := utf8.RuneCountInString(s)
		return Delta{Offset: n, Col: n, Line: 0}
	}
	lines := strings.Split(s, "\n")
	last := lines[len(lines)-1]
	return Delta{
		Offset: utf8.RuneCountInString(s),
		Col:    utf8.RuneCountInString(last),
		Line:   len(lines) - 1,
	}
}

// Add advances p by n characters without crossing a line boundary. The
// caller is responsible for knowing the advanced range contains no
// newline; Add itself performs no such check.
func (p Position) Add(n int) Position {
	return Position{Offset: p.Offset + n, Col: p.Col + n, Line: p.Line}
}

// AddDelta advances p by a Delta. When the delta spans at least one line,
// the resulting column is the delta's own column (the length of its last
// line); otherwise the delta's column is added on top of p's column.
func (p Position) AddDelta(d Delta) Position {
	col := p.Col + d.Col
	if d.Line > 0 {
		col = d.Col
	}
	return Position{Offset: p.Offset + d.Offset, Col: col, Line: p.Line + d.Line}
}

// OutOfRangeError reports an arithmetic precondition violation: a
// subtraction where the left operand sorts before the right one. It
// indicates a programmer error — positions derived from real token spans
// should never violate monotonicity.
type OutOfRangeError struct {
	A, B Position
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("position arithmetic out of range: %s - %s", e.A, e.B)
}

// Sub computes the delta between two positions such that
// other.AddDelta(p.Sub(other)) == p. It requires p >= other and reports
// OutOfRangeError otherwise.
func (p Position) Sub(other Position) (Delta, error) {
	if p.Offset < other.Offset {
		return Delta{}, &OutOfRangeError{A: p, B: other}
	}
	if p.Offset == other.Offset {
		return Delta{}, nil
	}
	lineDelta := p.Line - other.Line
	if lineDelta > 0 {
		return Delta{Offset: p.Offset - other.Offset, Col: p.Col, Line: lineDelta}, nil
	}
	return Delta{Offset: p.Offset - other.Offset, Col: p.Col - other.Col, Line: 0}, nil
}

// FromSource returns the position reached by starting at Origin and
// consuming the whole of s.
func FromSource(s string) Position {
	return Origin.AddDelta(DeltaFromString(s))
}

// AdvanceRune advances p by a single rune, crossing into a new line when r
// is '\n'.
func (p Position) AdvanceRune(r rune) Position {
	if r == '\n' {
		return Position{Offset: p.Offset + 1, Col: 0, Line: p.Line + 1}
	}
	return Position{Offset: p.Offset + 1, Col: p.Col + 1, Line: p.Line}
}
