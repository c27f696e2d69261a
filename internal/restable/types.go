// Package restable implements the in-memory resource table: an ordered,
// multi-package collection of typed, configuration-keyed entries, plus
// the mutation primitives every linker pass operates through.
//
// The table is a graph with many back-references (values point at
// entries, entries at types, types at packages, and references point at
// entries across packages). Each level is held as an ordered slice of
// pointers owned by its parent (Table → Package → Type → Entry), and a
// Reference names its target by package, type and entry name (plus the
// packed id once resolved) rather than by pointer or index. Passes
// outside this package (privatize, split, version collapse, the driver's
// filters) remove entries or config values from these slices.
package restable

import "fmt"

// TypeTag is a symbolic resource type, drawn from a closed, well-known
// enumeration.
type TypeTag string

// The resource type tags the linker understands natively. Unknown tags
// encountered in compiled input are preserved verbatim as a TypeTag but
// are not treated specially by any pass.
const (
	TypeAttr      TypeTag = "attr"
	TypePrivAttr  TypeTag = "^attr-private"
	TypeID        TypeTag = "id"
	TypeString    TypeTag = "string"
	TypeDrawable  TypeTag = "drawable"
	TypeLayout    TypeTag = "layout"
	TypeAnim      TypeTag = "anim"
	TypeAnimator  TypeTag = "animator"
	TypeStyle     TypeTag = "style"
	TypeColor     TypeTag = "color"
	TypeArray     TypeTag = "array"
	TypePlurals   TypeTag = "plurals"
	TypeXML       TypeTag = "xml"
	TypeRaw       TypeTag = "raw"
	TypeMenu      TypeTag = "menu"
	TypeMipmap    TypeTag = "mipmap"
	TypeInterp    TypeTag = "interpolator"
	TypeTransit   TypeTag = "transition"
	TypeFont      TypeTag = "font"
	TypeDimen     TypeTag = "dimen"
	TypeBool      TypeTag = "bool"
	TypeInteger   TypeTag = "integer"
	TypeFraction  TypeTag = "fraction"
	TypeStyleable TypeTag = "styleable"
)

// Visibility is the visibility level of an Entry.
type Visibility int

const (
	VisibilityUndefined Visibility = iota
	VisibilityPrivate
	VisibilityPublic
)

func (v Visibility) String() string {
	switch v {
	case VisibilityPublic:
		return "public"
	case VisibilityPrivate:
		return "private"
	default:
		return "undefined"
	}
}

// ConfigValue pairs a ConfigDescription with the Value that applies under
// it, plus the product this variant belongs to ("" is the default,
// product-agnostic value).
type ConfigValue struct {
	Config  ConfigDescription
	Product string
	Value   Value
	Source  Source
}

// Source records where a value came from, for diagnostics and for
// conflict messages that must cite both locations.
type Source struct {
	Path string
	Line int
}

func (s Source) String() string {
	if s.Path == "" {
		return "<unknown>"
	}
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d", s.Path, s.Line)
	}
	return s.Path
}

// Entry is a named, numerically identified (once assigned) resource
// within one package+type, holding every ConfigValue declared for it.
//
// I1: within one package+type+entry, no two Values share a
// ConfigDescription (enforced by AddValue's conflict policy).
// I2: once non-nil, ID is unique within the owning Type.
// I3: a Public Visibility upgrade is sticky (enforced by SetVisibility).
type Entry struct {
	Name       string
	ID         *uint16
	Visibility Visibility
	Values     []ConfigValue

	// Comment is the doc-comment text attached to the declaration, if
	// any; it is threaded through to Java/keep-rule side-outputs.
	Comment string
}

func (e *Entry) findValue(cfg ConfigDescription, product string) int {
	for i := range e.Values {
		if e.Values[i].Config.Equal(cfg) && e.Values[i].Product == product {
			return i
		}
	}
	return -1
}

// Type is a symbolic type tag plus its ordered entries.
type Type struct {
	Tag     TypeTag
	ID      *uint8
	Entries []*Entry
}

func (t *Type) findEntry(name string) *Entry {
	for _, e := range t.Entries {
		if e.Name == name {
			return e
		}
	}
	return nil
}

// Package is a named collection of Types. Name may be empty for the
// compilation package in legacy (single compiled-package) mode.
type Package struct {
	Name  string
	ID    *uint8
	Types []*Type
}

func (p *Package) findType(tag TypeTag) *Type {
	for _, t := range p.Types {
		if t.Tag == tag {
			return t
		}
	}
	return nil
}

// Table is the full resource table: an ordered sequence of Packages.
//
// The final table is constructed empty and mutated monotonically by the
// merge/id/linker passes (I6: entry order is preserved from first
// insertion; merges append unknown entries at the end). It is later
// partitioned destructively by the splitter, which consumes the base
// table and yields N owned sub-tables.
type Table struct {
	Packages []*Package
}

// New returns an empty Table.
func New() *Table {
	return &Table{}
}

// FindPackage returns the package with the given name, or nil.
func (t *Table) FindPackage(name string) *Package {
	for _, p := range t.Packages {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// FindOrCreatePackage returns the package with the given name, creating
// and appending it if absent.
func (t *Table) FindOrCreatePackage(name string) *Package {
	if p := t.FindPackage(name); p != nil {
		return p
	}
	p := &Package{Name: name}
	t.Packages = append(t.Packages, p)
	return p
}

// FindOrCreateType returns the (pkg, tag) type, creating the package
// and/or type if absent.
func (t *Table) FindOrCreateType(pkg, tag string) *Type {
	p := t.FindOrCreatePackage(pkg)
	if ty := p.findType(TypeTag(tag)); ty != nil {
		return ty
	}
	ty := &Type{Tag: TypeTag(tag)}
	p.Types = append(p.Types, ty)
	return ty
}

// FindOrCreateEntry returns the (pkg, tag, name) entry, creating any
// missing ancestor.
func (t *Table) FindOrCreateEntry(pkg, tag, name string) *Entry {
	ty := t.FindOrCreateType(pkg, tag)
	if e := ty.findEntry(name); e != nil {
		return e
	}
	e := &Entry{Name: name}
	ty.Entries = append(ty.Entries, e)
	return e
}

// FindEntry looks up (pkg, tag, name) without creating anything.
func (t *Table) FindEntry(pkg, tag, name string) *Entry {
	p := t.FindPackage(pkg)
	if p == nil {
		return nil
	}
	ty := p.findType(TypeTag(tag))
	if ty == nil {
		return nil
	}
	return ty.findEntry(name)
}

// SetVisibility raises or sets an entry's visibility. A Public upgrade is
// sticky: once Public, a later call with a lower level is a no-op (I3).
func (t *Table) SetVisibility(pkg, tag, name string, level Visibility) {
	e := t.FindOrCreateEntry(pkg, tag, name)
	if e.Visibility == VisibilityPublic {
		return
	}
	e.Visibility = level
}

// Walk invokes fn for every (Package, Type, Entry) triple in the table,
// in table order. Passes that need to mutate Entries while iterating
// must collect the entries first (see internal/flatten for the pattern);
// Walk itself performs no mutation.
func (t *Table) Walk(fn func(p *Package, ty *Type, e *Entry)) {
	for _, p := range t.Packages {
		for _, ty := range p.Types {
			for _, e := range ty.Entries {
				fn(p, ty, e)
			}
		}
	}
}
