package syntax

import "strings"

// Render walks r depth-first, left to right, producing the cleaned text
// and recording ResStart/ResEnd on every node it visits (including nested
// transcluded roots). It is not re-entrant: calling Render twice on the
// same tree re-renders it, which is harmless but wasted work.
func (r *Root) Render() (string, error) {
	return renderNode(r, Origin)
}

// renderNode dispatches on the concrete node type and records its
// rendered span before returning its output.
func renderNode(n Node, at Position) (string, error) {
	switch v := n.(type) {
	case *PlainText:
		end := at.AddDelta(DeltaFromString(v.Content))
		v.resStart, v.resEnd, v.rendered = at, end, true
		return v.Content, nil
	case *NewParagraphNode:
		const out = "\n\n"
		end := at.AddDelta(DeltaFromString(out))
		v.resStart, v.resEnd, v.rendered = at, end, true
		return out, nil
	case *Blank:
		v.resStart, v.resEnd, v.rendered = at, at, true
		return "", nil
	case *Group:
		return renderSeqInto(&v.span, v.Elems, at)
	case *Command:
		toks, err := expandCommand(v)
		if err != nil {
			return "", err
		}
		v.Toks = toks
		return renderSeqInto(&v.span, toks, at)
	case *Root:
		return renderSeqInto(&v.span, v.Elems, at)
	default:
		return "", nil
	}
}

func renderSeqInto(s *span, elems []Node, at Position) (string, error) {
	var b strings.Builder
	pos := at
	for _, e := range elems {
		out, err := renderNode(e, pos)
		if err != nil {
			return "", err
		}
		b.WriteString(out)
		pos = pos.AddDelta(DeltaFromString(out))
	}
	s.resStart, s.resEnd, s.rendered = at, pos, true
	return b.String(), nil
}

// expandCommand materializes c's prototype template against its bound
// arguments, per §4.2: literal template runs become PlainText nodes
// anchored at the command's own source start; %N yields the already-
// parsed N-th argument node verbatim; %0 yields the command name as
// PlainText; %% yields a literal percent sign (already folded into
// Prototype.Tokens's literal runs).
func expandCommand(c *Command) ([]Node, error) {
	toks, err := c.Proto.Tokens()
	if err != nil {
		return nil, err
	}
	out := make([]Node, 0, len(toks))
	for _, t := range toks {
		switch t.Kind {
		case TplLiteral:
			out = append(out, NewPlainText(c.srcStart, t.Literal))
		case TplNameRef:
			out = append(out, NewPlainText(c.srcStart, c.Proto.Name))
		case TplArgRef:
			// bindArgs accepts a partial binding at EOF (§4.4), so a
			// command legally parsed short of its template's declared
			// arity can reference an argument that was never bound.
			// Emit nothing for it rather than index out of range.
			if t.ArgNum-1 < len(c.Args) {
				out = append(out, c.Args[t.ArgNum-1])
			}
		case TplLastArgRef:
			if len(c.Args) > 0 {
				out = append(out, c.Args[len(c.Args)-1])
			}
		}
	}
	return out, nil
}
