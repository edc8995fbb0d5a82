package syntax

import (
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestDeltaFromString(t *testing.T) {
	tests := []struct {
		in   string
		want Delta
	}{
		{"", Delta{0, 0, 0}},
		{"abc", Delta{3, 3, 0}},
		{"abc\ndef", Delta{7, 3, 1}},
		{"\n\n", Delta{2, 0, 2}},
		{"a\nbb\nccc", Delta{8, 3, 2}},
	}
	for _, test := range tests {
		got := DeltaFromString(test.in)
		qt.Assert(t, got, qt.Equals, test.want)
	}
}

// S6: TextDeltaPos.from_source("abc\ndef") yields (offset=7, col=3, line=1);
// TextPos.from_source("abc\ndef") yields (offset=7, col=3, line=2).
func TestFromSourceScenarioS6(t *testing.T) {
	delta := DeltaFromString("abc\ndef")
	qt.Assert(t, delta, qt.Equals, Delta{Offset: 7, Col: 3, Line: 1})

	pos := FromSource("abc\ndef")
	qt.Assert(t, pos, qt.Equals, Position{Offset: 7, Col: 3, Line: 2})
}

func TestPositionAddDelta(t *testing.T) {
	p := Origin.AddDelta(DeltaFromString("ab"))
	qt.Assert(t, p, qt.Equals, Position{Offset: 2, Col: 2, Line: 1})

	p2 := p.AddDelta(DeltaFromString("c\nd"))
	qt.Assert(t, p2, qt.Equals, Position{Offset: 5, Col: 1, Line: 2})
}

// Delta correctness (property 4): from_source(a++b) == from_source(a) + delta_from(b).
func TestDeltaCorrectnessProperty(t *testing.T) {
	cases := [][2]string{
		{"Hop ", "Un titre"},
		{"abc\n", "def"},
		{"", "abc"},
		{"line1\nline2\n\n", "line4"},
	}
	for _, c := range cases {
		a, b := c[0], c[1]
		got := FromSource(a + b)
		want := FromSource(a).AddDelta(DeltaFromString(b))
		qt.Assert(t, got, qt.Equals, want, qt.Commentf("a=%q b=%q", a, b))
	}
}

func TestPositionSub(t *testing.T) {
	start := Origin
	end := FromSource("abc\ndef")
	d, err := end.Sub(start)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, start.AddDelta(d), qt.Equals, end)

	_, err = start.Sub(end)
	_, ok := err.(*OutOfRangeError)
	qt.Assert(t, ok, qt.IsTrue)

	same, err := start.Sub(start)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, same, qt.Equals, Delta{})
}

func TestPositionAdd(t *testing.T) {
	p := Origin.Add(3)
	qt.Assert(t, p, qt.Equals, Position{Offset: 3, Col: 3, Line: 1})
}

func TestPositionLess(t *testing.T) {
	a := Position{Offset: 1}
	b := Position{Offset: 2}
	qt.Assert(t, a.Less(b), qt.IsTrue)
	qt.Assert(t, b.Less(a), qt.IsFalse)
	qt.Assert(t, a.LessEq(a), qt.IsTrue)
	qt.Assert(t, a.Equal(Position{Offset: 1, Col: 99, Line: 99}), qt.IsTrue)
}
