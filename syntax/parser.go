package syntax

import "path/filepath"

// closeBraNode is a sentinel used internally to thread a CloseBra token
// through the same single-slot pushback as every other node. It never
// appears in a finished AST; parseGroupBody strips it out and uses it
// only to find the end of a Group.
type closeBraNode struct{ span }

// ParserOption configures a Parser at construction time.
type ParserOption func(*Parser)

// ExpandInput enables \input{...} transclusion: when set, the parser
// resolves the argument through opener, recursively lexes and parses the
// referenced file with the same catalog, and splices its Root into the
// tree in place of the \input invocation. Without this option, \input is
// treated like any other unregistered command, bound by the catalog's
// default prototype.
func ExpandInput(opener FileOpener) ParserOption {
	return func(p *Parser) {
		p.expandInput = true
		p.opener = opener
	}
}

// Parser is a recursive-descent, catalog-directed parser. It owns its
// Lexer exclusively and keeps a single slot of node pushback — the
// look-ahead of one mentioned in the core's lifecycle.
type Parser struct {
	lx       *Lexer
	catalog  *Catalog
	filename string
	dir      string

	pushed    Node
	hasPushed bool

	expandInput bool
	opener      FileOpener
}

// NewParser builds a Parser reading tokens from lx under the given
// catalog. filename identifies the source for the resulting Root; dir is
// the directory \input paths resolve against.
func NewParser(lx *Lexer, catalog *Catalog, filename, dir string, opts ...ParserOption) *Parser {
	p := &Parser{lx: lx, catalog: catalog, filename: filename, dir: dir}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) pushBack(n Node) {
	p.pushed = n
	p.hasPushed = true
}

// next returns the next node in the token stream: a leaf (PlainText,
// NewParagraphNode, Blank), a fully parsed Group or Command, or the
// closeBraNode sentinel. It returns (nil, nil) at a clean end of stream.
func (p *Parser) next(depth int) (Node, error) {
	if p.hasPushed {
		p.hasPushed = false
		n := p.pushed
		p.pushed = nil
		return n, nil
	}

	tok, err := p.lx.Next()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case TokEOF:
		return nil, nil
	case TokCloseBra:
		return &closeBraNode{span: newSpan(tok.Start, tok.End)}, nil
	case TokOpenBra:
		elems, closeTok, err := p.parseGroupBody(depth + 1)
		if err != nil {
			return nil, err
		}
		return &Group{span: newSpan(tok.Start, closeTok.SrcEnd()), Elems: elems}, nil
	case TokCommand:
		return p.parseCommandTok(tok, depth)
	case TokWord:
		return NewPlainText(tok.Start, tok.Text), nil
	case TokWhitespace:
		// The token's own Text is already collapsed to a single space;
		// its source span still covers whatever run of whitespace the
		// lexer actually consumed.
		return &PlainText{span: newSpan(tok.Start, tok.End), Content: tok.Text}, nil
	case TokNewParagraph:
		return &NewParagraphNode{span: newSpan(tok.Start, tok.End)}, nil
	case TokOpenSqBra, TokCloseSqBra:
		return &Blank{span: newSpan(tok.Start, tok.End)}, nil
	default:
		return &Blank{span: newSpan(tok.Start, tok.End)}, nil
	}
}

// parseGroupBody consumes nodes until a closeBraNode (depth > 0 always
// here) or end of stream, which at depth > 0 is an UnpairedBracketError.
func (p *Parser) parseGroupBody(depth int) ([]Node, *closeBraNode, error) {
	var nodes []Node
	for {
		n, err := p.next(depth)
		if err != nil {
			return nil, nil, err
		}
		if n == nil {
			return nil, nil, &UnpairedBracketError{Pos: p.lx.Pos(), AtEOF: true}
		}
		if cb, ok := n.(*closeBraNode); ok {
			return nodes, cb, nil
		}
		nodes = append(nodes, n)
	}
}

// ParseRoot parses the whole of the parser's token stream into a Root. A
// stray closing brace at depth 0 is an UnpairedBracketError.
func (p *Parser) ParseRoot() (*Root, error) {
	var nodes []Node
	for {
		n, err := p.next(0)
		if err != nil {
			return nil, err
		}
		if n == nil {
			break
		}
		if cb, ok := n.(*closeBraNode); ok {
			return nil, &UnpairedBracketError{Pos: cb.SrcStart()}
		}
		nodes = append(nodes, n)
	}
	return NewRoot(p.filename, nodes), nil
}

func (p *Parser) parseCommandTok(tok Token, depth int) (Node, error) {
	if tok.Text == "input" {
		n, handled, err := p.tryParseInput(tok, depth)
		if handled {
			return n, err
		}
	}

	proto := p.catalog.Get(tok.Text)
	args, err := p.bindArgs(proto, tok, depth)
	if err != nil {
		return nil, err
	}
	end := tok.End
	if len(args) > 0 {
		end = args[len(args)-1].SrcEnd()
	}
	return &Command{span: newSpan(tok.Start, end), Proto: proto, Args: args}, nil
}

// bindArgs implements the argument-binding rule of §4.4. A Group or a
// further Command counts as one bound argument; a PlainText, a
// NewParagraphNode, end of stream, or anything else (notably a bracket
// Blank or a stray close brace, neither of which the spec lists as
// bindable) is a stop sentinel. PlainText gets the one-character
// degraded-argument treatment; every other sentinel is pushed back whole.
func (p *Parser) bindArgs(proto Prototype, cmdTok Token, depth int) ([]Node, error) {
	if proto.ExpectedNArg == 0 {
		return nil, nil
	}
	var args []Node
	for len(args) < proto.ExpectedNArg {
		next, err := p.next(depth)
		if err != nil {
			if ub, ok := err.(*UnpairedBracketError); ok && ub.AtEOF && len(args) == 0 {
				return nil, &UnexpectedEndOfFileError{Pos: ub.Pos, Name: cmdTok.Text}
			}
			return nil, err
		}
		if next == nil {
			return args, nil
		}
		switch v := next.(type) {
		case *Group, *Command:
			args = append(args, next)
			continue
		case *PlainText:
			return p.absorbOneChar(v, args)
		default:
			p.pushBack(next)
			return args, nil
		}
	}
	// Exactly k args bound: pull one more node to find the sentinel that
	// follows and push it back for the next caller to see.
	next, err := p.next(depth)
	if err != nil {
		if ub, ok := err.(*UnpairedBracketError); ok && ub.AtEOF {
			return nil, &UnexpectedEndOfFileError{Pos: ub.Pos, Name: cmdTok.Text}
		}
		return nil, err
	}
	if next != nil {
		p.pushBack(next)
	}
	return args, nil
}

// absorbOneChar implements the degraded one-character argument rule: if
// pt's first character is non-whitespace, it becomes a one-character
// PlainText argument and the remainder of pt is pushed back; if it is
// whitespace, the whole of pt is pushed back unconsumed.
func (p *Parser) absorbOneChar(pt *PlainText, args []Node) ([]Node, error) {
	runes := []rune(pt.Content)
	if len(runes) == 0 {
		p.pushBack(pt)
		return args, nil
	}
	if isWhitespaceRune(runes[0]) {
		p.pushBack(pt)
		return args, nil
	}
	one := NewPlainText(pt.srcStart, string(runes[0]))
	args = append(args, one)
	if len(runes) > 1 {
		rest := NewPlainText(pt.srcStart.Add(1), string(runes[1:]))
		p.pushBack(rest)
	}
	return args, nil
}

func isWhitespaceRune(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// tryParseInput attempts to recognize and consume a transclusion. It
// returns handled=false when the node following \input isn't the
// Group-of-PlainText shape transclusion requires, in which case the
// caller falls through to treating \input as an ordinary command.
func (p *Parser) tryParseInput(tok Token, depth int) (Node, bool, error) {
	next, err := p.next(depth)
	if err != nil {
		return nil, true, err
	}
	group, ok := next.(*Group)
	if !ok || len(group.Elems) == 0 {
		if next != nil {
			p.pushBack(next)
		}
		return nil, false, nil
	}
	first, ok := group.Elems[0].(*PlainText)
	if !ok {
		p.pushBack(group)
		return nil, false, nil
	}

	blank := &Blank{span: newSpan(tok.Start, group.SrcEnd())}
	if !p.expandInput {
		p.pushBack(group)
		return nil, false, nil
	}

	name := first.Content
	resolved := p.opener.Resolve(p.dir, name)
	rc, err := p.opener.Open(resolved)
	if err != nil {
		return nil, true, err
	}
	defer rc.Close()

	sub := NewParser(NewLexer(resolved, rc), p.catalog, resolved, filepath.Dir(resolved), ExpandInput(p.opener))
	root, err := sub.ParseRoot()
	if err != nil {
		return nil, true, err
	}
	p.pushBack(root)
	return blank, true, nil
}
