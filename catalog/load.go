// Package catalog loads a command catalog from JSON files and assembles
// it from a search path, the external half of the core's Catalog
// contract: syntax.Catalog only ever sees Get(name); this package is
// where that mapping actually comes from.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/lattay/protex/syntax"
)

// IllformedCatalogError wraps a JSON catalog source that violates the
// schema of a top-level object with print_last/print_name/discard lists
// and an other map of [narg, template] pairs.
type IllformedCatalogError struct {
	Source string
	Reason string
}

func (e *IllformedCatalogError) Error() string {
	return fmt.Sprintf("%s: ill-formed command catalog: %s", e.Source, e.Reason)
}

// otherEntry unmarshals the two-element [expected_narg, template] array
// the "other" map's values carry in the catalog JSON schema.
type otherEntry struct {
	narg     int
	template string
}

func (e *otherEntry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 2 {
		return fmt.Errorf("expected a 2-element [expected_narg, template] array, got %d elements", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.narg); err != nil {
		return fmt.Errorf("expected_narg: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.template); err != nil {
		return fmt.Errorf("template: %w", err)
	}
	return nil
}

type catalogFile struct {
	PrintLast []string              `json:"print_last"`
	PrintName []string              `json:"print_name"`
	Discard   []string              `json:"discard"`
	Other     map[string]otherEntry `json:"other"`
}

// Load parses a single catalog JSON document from r and builds a
// *syntax.Catalog from it. source names the origin (typically a file
// path) for error messages; the returned catalog has no default
// prototype set (its Default is the zero Prototype) since merging is the
// caller's responsibility.
func Load(r io.Reader, source string) (*syntax.Catalog, error) {
	var cf catalogFile
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cf); err != nil {
		return nil, &IllformedCatalogError{Source: source, Reason: err.Error()}
	}

	c := syntax.NewCatalog(syntax.Prototype{})
	for _, name := range cf.PrintLast {
		c.Set(name, syntax.NewPrintLastPrototype(name))
	}
	for _, name := range cf.PrintName {
		c.Set(name, syntax.NewPrintNamePrototype(name))
	}
	for _, name := range cf.Discard {
		c.Set(name, syntax.NewDiscardPrototype(name))
	}
	for name, entry := range cf.Other {
		c.Set(name, syntax.NewGenericPrototype(name, entry.narg, entry.template))
	}
	return c, nil
}

// LoadFile opens and loads the catalog JSON document at path.
func LoadFile(path string) (*syntax.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, path)
}
