package syntax

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()
	lx := NewLexer("test", strings.NewReader(src))
	var toks []Token
	for {
		tok, err := lx.Next()
		qt.Assert(t, err, qt.IsNil)
		toks = append(toks, tok)
		if tok.Kind == TokEOF {
			break
		}
	}
	return toks
}

func kinds(toks []Token) []TokKind {
	out := make([]TokKind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestLexerWordAndWhitespace(t *testing.T) {
	toks := lexAll(t, "Hop there")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokWord, TokWhitespace, TokWord, TokEOF})
	qt.Assert(t, toks[0].Text, qt.Equals, "Hop")
	qt.Assert(t, toks[1].Text, qt.Equals, " ")
	qt.Assert(t, toks[2].Text, qt.Equals, "there")
}

func TestLexerWhitespaceRunCollapses(t *testing.T) {
	toks := lexAll(t, "a   \t b")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokWord, TokWhitespace, TokWord, TokEOF})
	qt.Assert(t, toks[1].Text, qt.Equals, " ")
}

func TestLexerSingleNewlineIsWhitespace(t *testing.T) {
	toks := lexAll(t, "a\nb")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokWord, TokWhitespace, TokWord, TokEOF})
	qt.Assert(t, toks[1].Text, qt.Equals, " ")
}

func TestLexerNewParagraph(t *testing.T) {
	toks := lexAll(t, "a\n\nb")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokWord, TokNewParagraph, TokWord, TokEOF})

	toks = lexAll(t, "a\n \n\nb")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokWord, TokNewParagraph, TokWord, TokEOF})
}

func TestLexerCommandIdent(t *testing.T) {
	toks := lexAll(t, "\\title{x}")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokCommand, TokOpenBra, TokWord, TokCloseBra, TokEOF})
	qt.Assert(t, toks[0].Text, qt.Equals, "title")
}

func TestLexerCommandSingleSpecialChar(t *testing.T) {
	toks := lexAll(t, "\\\\ \\% \\{ \\}")
	var names []string
	for _, tok := range toks {
		if tok.Kind == TokCommand {
			names = append(names, tok.Text)
		}
	}
	qt.Assert(t, names, qt.DeepEquals, []string{"\\", "%", "{", "}"})
}

func TestLexerCommandFollowedByNonSpecialCharIsEmptyName(t *testing.T) {
	// Backslash-space: space isn't in special_command_chars, so the
	// command name is empty and the space is re-lexed as ordinary
	// whitespace, not swallowed into the command name.
	toks := lexAll(t, "a\\ b")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{
		TokWord, TokCommand, TokWhitespace, TokWord, TokEOF,
	})
	qt.Assert(t, toks[0].Text, qt.Equals, "a")
	qt.Assert(t, toks[1].Text, qt.Equals, "")
	qt.Assert(t, toks[2].Text, qt.Equals, " ")
	qt.Assert(t, toks[3].Text, qt.Equals, "b")
}

func TestLexerCommandFollowedByBracketIsEmptyName(t *testing.T) {
	// '[' isn't in special_command_chars either: the command name is
	// empty and the bracket survives as its own token.
	toks := lexAll(t, "\\[x]")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{
		TokCommand, TokOpenSqBra, TokWord, TokCloseSqBra, TokEOF,
	})
	qt.Assert(t, toks[0].Text, qt.Equals, "")
}

func TestLexerComment(t *testing.T) {
	toks := lexAll(t, "a%a comment\nb")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokWord, TokWord, TokEOF})
	qt.Assert(t, toks[0].Text, qt.Equals, "a")
	qt.Assert(t, toks[1].Text, qt.Equals, "b")
}

func TestLexerBrackets(t *testing.T) {
	toks := lexAll(t, "[a]")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokOpenSqBra, TokWord, TokCloseSqBra, TokEOF})
}

func TestLexerPositionsPartitionSource(t *testing.T) {
	toks := lexAll(t, "Hop \\title{x}\nb")
	for i := 1; i < len(toks); i++ {
		prev, cur := toks[i-1], toks[i]
		qt.Assert(t, prev.End.Offset <= cur.Start.Offset, qt.IsTrue)
	}
}

func TestLexerEmptySourceIsEOF(t *testing.T) {
	toks := lexAll(t, "")
	qt.Assert(t, kinds(toks), qt.DeepEquals, []TokKind{TokEOF})
}
