package clean

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/lattay/protex/syntax"
)

func testCatalog() *syntax.Catalog {
	c := syntax.NewCatalog(syntax.NewDiscardPrototype(""))
	c.Set("title", syntax.NewPrintLastPrototype("title"))
	c.Set("phi", syntax.NewGenericPrototype("phi", 0, "phi"))
	return c
}

func TestStringCleansAndMapsSource(t *testing.T) {
	res, err := String(testCatalog(), "doc.tex", "Hop \\title{Un titre}\n\nDes histoires de \\phi.\nPouet.")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, res.Text, qt.Equals, "Hop Un titre\n\nDes histoires de phi. Pouet.")

	filename, srcStart, srcEnd, err := res.PosMap.DestToSrcInterval(syntax.FromSource(""), syntax.FromSource("Hop"))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, filename, qt.Equals, "doc.tex")
	qt.Assert(t, srcStart.Offset < srcEnd.Offset, qt.IsTrue)
}

func TestFileReadsFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.tex")
	qt.Assert(t, os.WriteFile(path, []byte("Hop \\phi."), 0o644), qt.IsNil)

	res, err := File(testCatalog(), path)
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, res.Text, qt.Equals, "Hop phi.")
}

func TestFileMissingReturnsError(t *testing.T) {
	_, err := File(testCatalog(), filepath.Join(t.TempDir(), "missing.tex"))
	qt.Assert(t, err != nil, qt.IsTrue)
}

func TestFileExpandsInputFromDisk(t *testing.T) {
	dir := t.TempDir()
	qt.Assert(t, os.WriteFile(filepath.Join(dir, "sub.tex"), []byte("inner text"), 0o644), qt.IsNil)
	main := filepath.Join(dir, "main.tex")
	qt.Assert(t, os.WriteFile(main, []byte("before \\input{sub.tex} after"), 0o644), qt.IsNil)

	res, err := File(testCatalog(), main, ExpandInput(syntax.OSFileOpener{}))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, res.Text, qt.Equals, "before inner text after")
	qt.Assert(t, res.PosMap.Filenames(), qt.DeepEquals, []string{main, filepath.Join(dir, "sub.tex")})
}

func TestStringExpandsInput(t *testing.T) {
	opener := mapOpener{files: map[string]string{"sub.tex": "inner"}}
	res, err := String(testCatalog(), "main.tex", "before \\input{sub.tex} after", ExpandInput(opener))
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, res.Text, qt.Equals, "before inner after")
	qt.Assert(t, res.PosMap.Filenames(), qt.DeepEquals, []string{"main.tex", "sub.tex"})
}

// mapOpener is an in-memory FileOpener, mirroring syntax's own test
// double, so transclusion tests here don't touch the filesystem.
type mapOpener struct {
	files map[string]string
}

func (o mapOpener) Resolve(dir, name string) string {
	if dir == "" || dir == "." {
		return name
	}
	return dir + "/" + name
}

func (o mapOpener) Open(resolved string) (io.ReadCloser, error) {
	content, ok := o.files[resolved]
	if !ok {
		return nil, &syntax.FileNotFoundError{Filename: resolved}
	}
	return io.NopCloser(strings.NewReader(content)), nil
}
