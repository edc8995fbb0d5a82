// Package clean is a convenience façade over syntax: given a source file
// or string, it runs the lexer, parser and renderer in one call and
// returns the cleaned text together with its position map.
package clean

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lattay/protex/syntax"
)

// Result bundles the output of a clean operation: the rendered text and
// the position map relating it back to every source file involved
// (the root document plus anything pulled in via \input).
type Result struct {
	Text   string
	PosMap *syntax.RootPosMap
	Root   *syntax.Root
}

// Option configures a clean operation.
type Option func(*options)

type options struct {
	expandInput bool
	opener      syntax.FileOpener
}

// ExpandInput enables \input{...} transclusion using opener. Without it,
// \input is treated like any other command, resolved through the
// catalog's default prototype.
func ExpandInput(opener syntax.FileOpener) Option {
	return func(o *options) {
		o.expandInput = true
		o.opener = opener
	}
}

func apply(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func parserOpts(o *options) []syntax.ParserOption {
	if !o.expandInput {
		return nil
	}
	opener := o.opener
	if opener == nil {
		opener = syntax.OSFileOpener{}
	}
	return []syntax.ParserOption{syntax.ExpandInput(opener)}
}

// String cleans src, an in-memory document identified by filename for
// position-map and \input-relative-path purposes.
func String(catalog *syntax.Catalog, filename, src string, opts ...Option) (*Result, error) {
	return run(catalog, filename, filepath.Dir(filename), strings.NewReader(src), opts...)
}

// File opens and cleans the document at path. \input paths are resolved
// relative to path's directory.
func File(catalog *syntax.Catalog, path string, opts ...Option) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("protex: could not open %s: %w", path, err)
	}
	defer f.Close()
	return run(catalog, path, filepath.Dir(path), f, opts...)
}

func run(catalog *syntax.Catalog, filename, dir string, r io.Reader, opts ...Option) (*Result, error) {
	o := apply(opts)
	lx := syntax.NewLexer(filename, r)
	p := syntax.NewParser(lx, catalog, filename, dir, parserOpts(o)...)

	root, err := p.ParseRoot()
	if err != nil {
		return nil, err
	}

	text, err := root.Render()
	if err != nil {
		return nil, err
	}

	return &Result{Text: text, PosMap: root.DumpPosMap(), Root: root}, nil
}
