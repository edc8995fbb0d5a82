package catalog

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lattay/protex/syntax"
)

// DefaultCatalogName is the bare filename this package looks for, both as
// the hidden per-directory file (".protex") and the packaged default.
const DefaultCatalogName = "protex"

// NoCommandFileFoundError reports that catalog discovery turned up zero
// files anywhere on the search path. It is raised by the external driver,
// never by syntax.Parser itself.
type NoCommandFileFoundError struct {
	StartDir string
	Name     string
}

func (e *NoCommandFileFoundError) Error() string {
	return fmt.Sprintf("no %q command catalog found starting from %s", "."+e.Name, e.StartDir)
}

// SearchPath walks from startDir toward the filesystem root collecting
// hidden per-directory catalogs (".<name>"), then the user's
// "$HOME/.<name>", then a packaged default at defaultPath if non-empty.
// Only paths that actually exist are returned, in that collection order:
// callers merging the results in order (each subsequent file's entries
// overriding the previous ones, per Catalog.Merge) give the packaged
// default the final say over $HOME, which in turn overrides every
// directory found during the walk.
func SearchPath(startDir, home, defaultPath string) ([]string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	var found []string
	dir := abs
	for {
		candidate := filepath.Join(dir, "."+DefaultCatalogName)
		if fileExists(candidate) {
			found = append(found, candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	if home != "" {
		candidate := filepath.Join(home, "."+DefaultCatalogName)
		if fileExists(candidate) {
			found = append(found, candidate)
		}
	}

	if defaultPath != "" && fileExists(defaultPath) {
		found = append(found, defaultPath)
	}

	return found, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// LoadAll discovers every catalog file on the search path rooted at
// startDir and merges them, in discovery order, over a base catalog whose
// default prototype is def. It returns *NoCommandFileFoundError if the
// search turned up nothing.
func LoadAll(startDir, home, defaultPath string, def syntax.Prototype) (*syntax.Catalog, error) {
	files, err := SearchPath(startDir, home, defaultPath)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &NoCommandFileFoundError{StartDir: startDir, Name: DefaultCatalogName}
	}

	c := syntax.NewCatalog(def)
	for _, f := range files {
		loaded, err := LoadFile(f)
		if err != nil {
			return nil, err
		}
		c.Merge(loaded)
	}
	return c, nil
}

// DiscoverDefault runs LoadAll from the current working directory, using
// $HOME as reported by os.UserHomeDir and discarding the packaged-default
// slot (callers that ship one should call LoadAll directly with its path).
func DiscoverDefault(def syntax.Prototype) (*syntax.Catalog, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	home, _ := os.UserHomeDir()
	return LoadAll(cwd, home, "", def)
}
