package syntax

import (
	"fmt"
	"sort"
	"strings"
)

// Rel classifies a probe position relative to a span: before it, inside
// it (inclusive of both ends), or after it.
type Rel int

const (
	RelBefore Rel = iota
	RelIn
	RelAfter
)

// ContiguousPosMap links a source span to the result span it rendered
// into, with the invariant that an offset interior to one maps linearly
// to an offset interior to the other.
type ContiguousPosMap struct {
	SrcStart, SrcEnd   Position
	DestStart, DestEnd Position
}

func (m ContiguousPosMap) srcContains(p Position) bool {
	return m.SrcStart.LessEq(p) && p.LessEq(m.SrcEnd)
}

func (m ContiguousPosMap) destContains(p Position) bool {
	return m.DestStart.LessEq(p) && p.LessEq(m.DestEnd)
}

// SrcRel classifies pos against the entry's source span.
func (m ContiguousPosMap) SrcRel(pos Position) Rel {
	switch {
	case m.srcContains(pos):
		return RelIn
	case pos.Less(m.SrcStart):
		return RelBefore
	default:
		return RelAfter
	}
}

// DestRel classifies pos against the entry's result span.
func (m ContiguousPosMap) DestRel(pos Position) Rel {
	switch {
	case m.destContains(pos):
		return RelIn
	case pos.Less(m.DestStart):
		return RelBefore
	default:
		return RelAfter
	}
}

// SrcDist is 0 when pos falls inside the source span, otherwise the
// distance (in offset units) to the nearer edge.
func (m ContiguousPosMap) SrcDist(pos Position) int {
	switch m.SrcRel(pos) {
	case RelIn:
		return 0
	case RelBefore:
		return m.SrcStart.Offset - pos.Offset
	default:
		return pos.Offset - m.SrcEnd.Offset
	}
}

// DestDist is the result-span analogue of SrcDist.
func (m ContiguousPosMap) DestDist(pos Position) int {
	switch m.DestRel(pos) {
	case RelIn:
		return 0
	case RelBefore:
		return m.DestStart.Offset - pos.Offset
	default:
		return pos.Offset - m.DestEnd.Offset
	}
}

// mapEntry is implemented by ContiguousPosMap and *RootPosMap: the two
// kinds of element a RootPosMap's Maps list may hold.
type mapEntry interface {
	sortKey() Position
}

func (m ContiguousPosMap) sortKey() Position { return m.SrcStart }
func (r *RootPosMap) sortKey() Position      { return r.splicePos }

// RootPosMap pairs a filename with the ordered list of maps produced by
// rendering it: ContiguousPosMap entries for its own content, interleaved
// (in source order) with nested *RootPosMap values for any transcluded
// sub-documents. It is independent of the AST that produced it and may
// outlive it.
type RootPosMap struct {
	Filename  string
	splicePos Position // position of this root's \input site in its parent; Origin for the top-level root
	Maps      []mapEntry
}

// DumpPosMap builds r's RootPosMap from its (already rendered) AST. It
// panics if called before Render, matching the core's documented
// programmer-error contract ("rendering asserts that every consulted node
// has been rendered").
func (r *Root) DumpPosMap() *RootPosMap {
	return dumpRootPosMap(r, Origin)
}

func dumpRootPosMap(r *Root, splicePos Position) *RootPosMap {
	if !r.rendered {
		panic("protex/syntax: DumpPosMap called before Render")
	}
	var entries []mapEntry
	collectEntries(r.Elems, &entries)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].sortKey().Less(entries[j].sortKey())
	})
	return &RootPosMap{Filename: r.Filename, splicePos: splicePos, Maps: entries}
}

// collectEntries walks elems, appending a ContiguousPosMap for every leaf
// whose source and result spans are both non-empty (PlainText and
// NewParagraph nodes), recursing through Group and Command (via its
// expanded Toks), and appending a single nested *RootPosMap — not its
// flattened contents — for any transcluded Root encountered.
func collectEntries(elems []Node, out *[]mapEntry) {
	for i, e := range elems {
		switch v := e.(type) {
		case *PlainText:
			appendIfNonEmpty(v.srcStart, v.srcEnd, v.resStart, v.resEnd, out)
		case *NewParagraphNode:
			appendIfNonEmpty(v.srcStart, v.srcEnd, v.resStart, v.resEnd, out)
		case *Blank:
			// Brackets and discarded/expanded commands contribute no
			// direct entry; their surrounding PlainText entries already
			// encode the gap.
		case *Group:
			collectEntries(v.Elems, out)
		case *Command:
			collectEntries(v.Toks, out)
		case *Root:
			// tryParseInput leaves a Blank starting at the \input command
			// right before the spliced root; its start is the splice site.
			splice := v.srcStart
			if i > 0 {
				if b, ok := elems[i-1].(*Blank); ok {
					splice = b.srcStart
				}
			}
			nested := dumpRootPosMap(v, splice)
			*out = append(*out, nested)
		}
	}
}

func appendIfNonEmpty(srcStart, srcEnd, destStart, destEnd Position, out *[]mapEntry) {
	if srcStart.Equal(srcEnd) || destStart.Equal(destEnd) {
		return
	}
	*out = append(*out, ContiguousPosMap{SrcStart: srcStart, SrcEnd: srcEnd, DestStart: destStart, DestEnd: destEnd})
}

// forThis returns only r's own ContiguousPosMap entries, in source order,
// skipping any nested roots — the set relevant when translating a
// position known to already be in r's own file.
func (r *RootPosMap) forThis() []ContiguousPosMap {
	var out []ContiguousPosMap
	for _, m := range r.Maps {
		if c, ok := m.(ContiguousPosMap); ok {
			out = append(out, c)
		}
	}
	return out
}

// findFileRoot searches r and its nested roots (depth-first) for the
// RootPosMap whose Filename matches.
func (r *RootPosMap) findFileRoot(filename string) *RootPosMap {
	if r.Filename == filename {
		return r
	}
	for _, m := range r.Maps {
		if nested, ok := m.(*RootPosMap); ok {
			if found := nested.findFileRoot(filename); found != nil {
				return found
			}
		}
	}
	return nil
}

// allEntries yields (filename, entry) pairs in depth-first order, a nested
// root's entries coming where that root sits in its parent's Maps; used by
// AsText, AsDict and Filenames.
func (r *RootPosMap) allEntries(yield func(filename string, entry ContiguousPosMap)) {
	for _, m := range r.Maps {
		switch v := m.(type) {
		case ContiguousPosMap:
			yield(r.Filename, v)
		case *RootPosMap:
			v.allEntries(yield)
		}
	}
}

// SrcToDest translates a source position to its result-text equivalent.
// filename selects which (possibly nested) file's coordinate system pos
// is expressed in; an empty filename means r's own file.
func (r *RootPosMap) SrcToDest(pos Position, filename string) (Position, error) {
	before, _, err := r.srcToDestPair(pos, filename)
	return before, err
}

// SrcToDestPair is the paired variant used when pos falls strictly
// between two entries: before is the nearest entry at or before pos,
// after is the nearest entry strictly after it (equal to before if no
// entry follows pos).
func (r *RootPosMap) SrcToDestPair(pos Position, filename string) (before, after Position, err error) {
	return r.srcToDestPair(pos, filename)
}

func (r *RootPosMap) srcToDestPair(pos Position, filename string) (before, after Position, err error) {
	root := r
	if filename != "" {
		root = r.findFileRoot(filename)
		if root == nil {
			return Position{}, Position{}, &FileNotFoundError{Filename: filename}
		}
	}
	before = Origin
	haveAfter := false
	for _, m := range root.forThis() {
		switch m.SrcRel(pos) {
		case RelIn:
			d, derr := pos.Sub(m.SrcStart)
			if derr != nil {
				return Position{}, Position{}, derr
			}
			dest := m.DestStart.AddDelta(d)
			return dest, dest, nil
		case RelBefore:
			after = m.DestStart
			haveAfter = true
			return before, after, nil
		default: // RelAfter
			before = m.DestEnd
		}
	}
	if !haveAfter {
		after = before
	}
	return before, after, nil
}

// DestToSrc translates a result-text position back to its source
// filename and position.
func (r *RootPosMap) DestToSrc(pos Position) (filename string, src Position, err error) {
	filename, before, _, err := r.destToSrcPair(pos)
	return filename, before, err
}

// DestToSrcPair is the paired variant of DestToSrc.
func (r *RootPosMap) DestToSrcPair(pos Position) (filename string, before, after Position, err error) {
	return r.destToSrcPair(pos)
}

func (r *RootPosMap) destToSrcPair(pos Position) (filename string, before, after Position, err error) {
	before = Origin
	haveAfter := false
	current := r.Filename
	var walk func(root *RootPosMap) (done bool)
	walk = func(root *RootPosMap) bool {
		current = root.Filename
		for _, m := range root.Maps {
			switch v := m.(type) {
			case ContiguousPosMap:
				switch v.DestRel(pos) {
				case RelIn:
					d, derr := pos.Sub(v.DestStart)
					if derr != nil {
						err = derr
						return true
					}
					src := v.SrcStart.AddDelta(d)
					filename, before, after = current, src, src
					return true
				case RelBefore:
					after = v.SrcStart
					haveAfter = true
					return true
				default:
					before = v.SrcEnd
				}
			case *RootPosMap:
				outer := current
				if walk(v) {
					return true
				}
				current = outer
			}
		}
		return false
	}
	walk(r)
	filename = current
	if err != nil {
		return "", Position{}, Position{}, err
	}
	if !haveAfter {
		after = before
	}
	return filename, before, after, nil
}

// SrcToDestInterval maps [start, end] in the source named by filename
// (r's own file when empty) to the corresponding [destStart, destEnd] in
// the cleaned text: start maps by nearest-before-or-in, end maps by
// nearest-after-or-in, and the pair is swapped if that leaves them
// inverted.
func (r *RootPosMap) SrcToDestInterval(start, end Position, filename string) (destStart, destEnd Position, err error) {
	destStart, err = r.SrcToDest(start, filename)
	if err != nil {
		return Position{}, Position{}, err
	}
	_, after, err := r.SrcToDestPair(end, filename)
	if err != nil {
		return Position{}, Position{}, err
	}
	destEnd = after
	if destEnd.Less(destStart) {
		destStart, destEnd = destEnd, destStart
	}
	return destStart, destEnd, nil
}

// DestToSrcInterval is the symmetric translation from a cleaned-text
// interval back to a single source file's interval. It fails with
// IntervalOnTwoFilesError if the two endpoints resolve to different
// files.
func (r *RootPosMap) DestToSrcInterval(start, end Position) (filename string, srcStart, srcEnd Position, err error) {
	startFile, srcStart, err := r.DestToSrc(start)
	if err != nil {
		return "", Position{}, Position{}, err
	}
	endFile, _, afterEnd, err := r.DestToSrcPair(end)
	if err != nil {
		return "", Position{}, Position{}, err
	}
	srcEnd = afterEnd

	if srcEnd.Less(srcStart) {
		srcStart, srcEnd = srcEnd, srcStart
	}
	if startFile != endFile {
		return "", Position{}, Position{}, &IntervalOnTwoFilesError{StartFile: startFile, EndFile: endFile}
	}
	return startFile, srcStart, srcEnd, nil
}

// byFilename groups r's entries by filename, preserving the depth-first
// order in which each filename and each of its entries was first seen.
func (r *RootPosMap) byFilename() (order []string, grouped map[string][]ContiguousPosMap) {
	grouped = make(map[string][]ContiguousPosMap)
	r.allEntries(func(filename string, entry ContiguousPosMap) {
		if _, ok := grouped[filename]; !ok {
			order = append(order, filename)
		}
		grouped[filename] = append(grouped[filename], entry)
	})
	return order, grouped
}

// AsText renders the map in the stable text format of §6: one [filename]
// header per source followed by one L{l}C{c}-L{l}C{c}=L{l}C{c}-L{l}C{c}
// line per entry.
func (r *RootPosMap) AsText() string {
	order, grouped := r.byFilename()
	var b strings.Builder
	for _, filename := range order {
		fmt.Fprintf(&b, "[%s]\n", filename)
		for _, e := range grouped[filename] {
			fmt.Fprintf(&b, "L%dC%d-L%dC%d=L%dC%d-L%dC%d\n",
				e.SrcStart.Line, e.SrcStart.Col, e.SrcEnd.Line, e.SrcEnd.Col,
				e.DestStart.Line, e.DestStart.Col, e.DestEnd.Line, e.DestEnd.Col)
		}
	}
	return b.String()
}

// posObj is the {"offset":N,"col":N,"line":N} JSON shape of §6.
type posObj struct {
	Offset int `json:"offset"`
	Col    int `json:"col"`
	Line   int `json:"line"`
}

func toPosObj(p Position) posObj {
	return posObj{Offset: p.Offset, Col: p.Col, Line: p.Line}
}

// mapEntryJSON is one element of AsDict's per-filename list.
type mapEntryJSON struct {
	Src  [2]posObj `json:"src"`
	Dest [2]posObj `json:"dest"`
}

// AsDict builds the §6 JSON map shape: filename to an ordered list of
// {"src":[start,end],"dest":[start,end]} entries. The returned value
// marshals directly with encoding/json; callers needing deterministic key
// order should iterate Filenames() rather than range the map.
func (r *RootPosMap) AsDict() map[string][]mapEntryJSON {
	_, grouped := r.byFilename()
	out := make(map[string][]mapEntryJSON, len(grouped))
	for filename, entries := range grouped {
		list := make([]mapEntryJSON, len(entries))
		for i, e := range entries {
			list[i] = mapEntryJSON{
				Src:  [2]posObj{toPosObj(e.SrcStart), toPosObj(e.SrcEnd)},
				Dest: [2]posObj{toPosObj(e.DestStart), toPosObj(e.DestEnd)},
			}
		}
		out[filename] = list
	}
	return out
}

// Filenames returns the filenames present in r in depth-first discovery
// order, for callers that want deterministic iteration over AsDict.
func (r *RootPosMap) Filenames() []string {
	order, _ := r.byFilename()
	return order
}
