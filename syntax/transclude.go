package syntax

import (
	"io"
	"os"
	"path/filepath"
)

// FileOpener resolves and opens transcluded sub-documents. Resolve takes
// the directory of the file doing the including and the literal argument
// of \input{...}, and returns the path under which the sub-document
// should be known (its RootPosMap.Filename). Open then returns a reader
// for that resolved path.
//
// The default OSFileOpener resolves paths the way the reference
// implementation's Lexer.open_newfile does: relative to dirname(parent),
// cleaned with filepath.Clean.
type FileOpener interface {
	Resolve(dir, name string) string
	Open(resolved string) (io.ReadCloser, error)
}

// OSFileOpener resolves and opens transcluded files directly from disk.
type OSFileOpener struct{}

// Resolve joins dir and name and cleans the result, mirroring
// normpath(join(dirname(parent), path)) from the reference lexer.
func (OSFileOpener) Resolve(dir, name string) string {
	return filepath.Clean(filepath.Join(dir, name))
}

// Open opens the resolved path from disk.
func (OSFileOpener) Open(resolved string) (io.ReadCloser, error) {
	return os.Open(resolved)
}
