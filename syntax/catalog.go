package syntax

import (
	"fmt"
	"strconv"
	"strings"
)

// ProtoKind distinguishes the four prototype shapes a command can have.
type ProtoKind int

const (
	// ProtoGeneric expands its template, substituting %0..%N.
	ProtoGeneric ProtoKind = iota
	// ProtoPrintLast renders as its last bound argument, whatever its arity.
	ProtoPrintLast
	// ProtoPrintName renders as the command's own name and binds no args.
	ProtoPrintName
	// ProtoDiscard renders to nothing and binds no args.
	ProtoDiscard
)

// greedyArgs is the arity a print_last prototype advertises to the
// argument binder: large enough that binding never stops early for lack
// of declared slots, so the binder naturally gathers every argument the
// command is given and the template picks the last one.
const greedyArgs = 1 << 16

// Prototype declares a command's arity and how it expands into AST nodes.
// The four kinds share this one representation (Design Note 3): each
// exposes the same Tokens() sequence, only Kind and Template differ in
// how that sequence is produced.
type Prototype struct {
	Name         string
	ExpectedNArg int
	Kind         ProtoKind
	Template     string // meaningful only when Kind == ProtoGeneric
}

// NewGenericPrototype builds a prototype that expands template against
// narg bound arguments.
func NewGenericPrototype(name string, narg int, template string) Prototype {
	return Prototype{Name: name, ExpectedNArg: narg, Kind: ProtoGeneric, Template: template}
}

// NewPrintLastPrototype builds a prototype that renders as its last
// argument, accepting any number of arguments.
func NewPrintLastPrototype(name string) Prototype {
	return Prototype{Name: name, ExpectedNArg: greedyArgs, Kind: ProtoPrintLast}
}

// NewPrintNamePrototype builds a prototype that renders as its own name
// and binds no arguments.
func NewPrintNamePrototype(name string) Prototype {
	return Prototype{Name: name, ExpectedNArg: 0, Kind: ProtoPrintName}
}

// NewDiscardPrototype builds a prototype that renders to nothing and
// binds no arguments.
func NewDiscardPrototype(name string) Prototype {
	return Prototype{Name: name, ExpectedNArg: 0, Kind: ProtoDiscard}
}

// TplTokKind identifies one element of a prototype's expansion sequence.
type TplTokKind int

const (
	TplLiteral TplTokKind = iota
	TplArgRef
	TplNameRef
	TplLastArgRef
)

// TplTok is one element of a Prototype's expansion: a literal run of
// text, a reference to the N-th bound argument (1-based), a reference to
// the command's own name, or a reference to its last bound argument.
type TplTok struct {
	Kind    TplTokKind
	Literal string
	ArgNum  int // 1-based, valid only when Kind == TplArgRef
}

// BrokenTemplateError reports a template referencing an argument slot
// beyond the prototype's declared arity.
type BrokenTemplateError struct {
	Name string
}

func (e *BrokenTemplateError) Error() string {
	return fmt.Sprintf("template for command %q is broken: argument reference out of range", e.Name)
}

// Tokens expands p's template into a sequence of TplTok, shared by all
// four prototype kinds.
func (p Prototype) Tokens() ([]TplTok, error) {
	switch p.Kind {
	case ProtoDiscard:
		return nil, nil
	case ProtoPrintName:
		return []TplTok{{Kind: TplNameRef}}, nil
	case ProtoPrintLast:
		return []TplTok{{Kind: TplLastArgRef}}, nil
	case ProtoGeneric:
		return p.expandTemplate()
	default:
		return nil, nil
	}
}

func (p Prototype) expandTemplate() ([]TplTok, error) {
	var toks []TplTok
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			toks = append(toks, TplTok{Kind: TplLiteral, Literal: lit.String()})
			lit.Reset()
		}
	}

	s := p.Template
	i := 0
	for i < len(s) {
		if s[i] != '%' {
			lit.WriteByte(s[i])
			i++
			continue
		}
		// s[i] == '%'
		if i == len(s)-1 || s[i+1] == '%' {
			lit.WriteByte('%')
			if i == len(s)-1 {
				i++
			} else {
				i += 2
			}
			continue
		}
		j := i + 1
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i+1 {
			// '%' followed by a non-digit, non-'%' character: treat the
			// percent sign itself as literal and continue from there.
			lit.WriteByte('%')
			i++
			continue
		}
		n, err := strconv.Atoi(s[i+1 : j])
		if err != nil {
			return nil, &BrokenTemplateError{Name: p.Name}
		}
		flush()
		switch {
		case n == 0:
			toks = append(toks, TplTok{Kind: TplNameRef})
		case n <= p.ExpectedNArg:
			toks = append(toks, TplTok{Kind: TplArgRef, ArgNum: n})
		default:
			return nil, &BrokenTemplateError{Name: p.Name}
		}
		i = j
	}
	flush()
	return toks, nil
}

// Catalog is an immutable (after construction) mapping from command name
// to Prototype, with a single default used for unregistered names.
type Catalog struct {
	protos  map[string]Prototype
	Default Prototype
}

// NewCatalog builds an empty Catalog that falls back to def for any name
// it has not been given an explicit prototype for.
func NewCatalog(def Prototype) *Catalog {
	return &Catalog{protos: make(map[string]Prototype), Default: def}
}

// Set registers a prototype for name, overriding any previous one.
func (c *Catalog) Set(name string, p Prototype) { c.protos[name] = p }

// Get returns the prototype registered for name, or the catalog's default
// if none was registered.
func (c *Catalog) Get(name string) Prototype {
	if p, ok := c.protos[name]; ok {
		return p
	}
	return c.Default
}

// Merge copies every entry of other into c, overriding c's existing
// entries on name collisions. It does not change c.Default.
func (c *Catalog) Merge(other *Catalog) {
	for name, p := range other.protos {
		c.protos[name] = p
	}
}

// Names returns every command name explicitly registered in the catalog,
// in no particular order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.protos))
	for name := range c.protos {
		names = append(names, name)
	}
	return names
}
