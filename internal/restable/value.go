package restable

// Value is the closed, tagged sum over everything a ConfigValue can
// hold. Every pass that needs to inspect or transform a value switches
// exhaustively over the concrete type; the set of variants below is
// fixed by the spec and is not meant to be extended by adding new
// implementations of the interface.
type Value interface {
	isValue()
	// Clone returns a deep copy, used by the auto-versioner when it
	// synthesizes a filtered variant of a compound value.
	Clone() Value
}

// ReferenceState distinguishes a not-yet-resolved symbolic reference
// from one the ReferenceLinker has substituted an id into.
type ReferenceState int

const (
	ReferenceSymbolic ReferenceState = iota
	ReferenceResolved
)

// Reference is a (possibly as-yet-unresolved) reference to another
// resource, by name or, once linked, by id.
type Reference struct {
	State ReferenceState

	// Symbolic form, valid while State == ReferenceSymbolic (and kept
	// around afterwards for diagnostics).
	Package string // may be empty: "look up in the compiling package"
	Type    string
	Name    string

	// Resolved form, valid once State == ReferenceResolved.
	ID PackedID

	Private bool // reference to a resource declared private
	Dynamic bool // reference to a runtime-loaded package; never "unresolved"

	// AttrFormat/AttrTypeMask carry an attr's format metadata for the
	// attribute usage site. Neither the ReferenceLinker nor the
	// XmlReferenceLinker fills them in; the ReferenceLinker clears
	// AttrFormat on references to records with a known introduction level.
	AttrFormat  string
	AttrTypeMask uint32
}

func (Reference) isValue() {}
func (r Reference) Clone() Value { return r }

// PackedID is the resolved 32-bit resource id: (package8<<24)|(type8<<16)|entry16.
type PackedID uint32

// NewPackedID packs the three numeric components.
func NewPackedID(pkg, typ uint8, entry uint16) PackedID {
	return PackedID(uint32(pkg)<<24 | uint32(typ)<<16 | uint32(entry))
}

func (p PackedID) Package() uint8 { return uint8(p >> 24) }
func (p PackedID) Type() uint8    { return uint8(p >> 16) }
func (p PackedID) Entry() uint16  { return uint16(p) }

// Primitive holds an int/string/bool/color scalar, already compiled to
// its binary representation's logical value.
type Primitive struct {
	Kind PrimitiveKind
	Int  int64
	Str  string
	Bool bool
}

type PrimitiveKind int

const (
	PrimitiveInt PrimitiveKind = iota
	PrimitiveString
	PrimitiveBool
	PrimitiveColor
	PrimitiveDimension
	PrimitiveFraction
)

func (Primitive) isValue()      {}
func (p Primitive) Clone() Value { return p }

// RawString is a string value that bypasses style-span processing.
type RawString struct {
	Value string
}

func (RawString) isValue()      {}
func (r RawString) Clone() Value { return r }

// IDPlaceholder is the `@+id/name`/`@id/name` id-only value kind (type
// `id`), which carries no payload beyond its own existence.
type IDPlaceholder struct{}

func (IDPlaceholder) isValue()      {}
func (i IDPlaceholder) Clone() Value { return i }

// AttrDef is an attribute definition (`<attr>` declaration): its format
// mask and, for enum/flag attrs, its symbol table.
type AttrDef struct {
	TypeMask uint32
	Symbols  []AttrSymbol
	Weak     bool // declared inline (e.g. inside a <declare-styleable>)
}

type AttrSymbol struct {
	Name  string
	Value uint32
}

func (AttrDef) isValue() {}
func (a AttrDef) Clone() Value {
	cp := a
	cp.Symbols = append([]AttrSymbol(nil), a.Symbols...)
	return cp
}

// Array is an ordered list of item values (type `array`/`integer-array`/`string-array`).
type Array struct {
	Items []Value
}

func (Array) isValue() {}
func (a Array) Clone() Value {
	cp := Array{Items: make([]Value, len(a.Items))}
	for i, it := range a.Items {
		cp.Items[i] = it.Clone()
	}
	return cp
}

// StyleEntry is one attr=value pair inside a Style.
type StyleEntry struct {
	Attr  Reference
	Value Value
}

func (s StyleEntry) clone() StyleEntry {
	return StyleEntry{Attr: s.Attr.Clone().(Reference), Value: s.Value.Clone()}
}

// Style is a compound value mapping attribute references to values (type
// `style`), the value kind the AutoVersioner analyzes for platform-level
// requirements.
type Style struct {
	Parent   *Reference // nil if no parent
	Entries  []StyleEntry
}

func (Style) isValue() {}
func (s Style) Clone() Value {
	cp := Style{Entries: make([]StyleEntry, len(s.Entries))}
	if s.Parent != nil {
		p := s.Parent.Clone().(Reference)
		cp.Parent = &p
	}
	for i, e := range s.Entries {
		cp.Entries[i] = e.clone()
	}
	return cp
}

// PluralValue holds the plural-category values (type `plurals`).
type PluralValue struct {
	Other Value
	Zero  Value
	One   Value
	Two   Value
	Few   Value
	Many  Value
}

func (PluralValue) isValue() {}
func (p PluralValue) Clone() Value {
	cloneOrNil := func(v Value) Value {
		if v == nil {
			return nil
		}
		return v.Clone()
	}
	return PluralValue{
		Other: cloneOrNil(p.Other), Zero: cloneOrNil(p.Zero), One: cloneOrNil(p.One),
		Two: cloneOrNil(p.Two), Few: cloneOrNil(p.Few), Many: cloneOrNil(p.Many),
	}
}

// FileHandle is the opaque (path in a FileCollection, optional
// byte-range) handle a FileReference owns; the loader.Collection
// implementations serve its bytes.
type FileHandle struct {
	SourcePath  string
	ByteOffset  int64
	ByteLength  int64 // 0 means "to EOF"
}

// FileReference is a file-typed value: a handle to the compiled payload
// plus the path it must be written to inside the output archive.
type FileReference struct {
	Handle FileHandle
	// DestPath is the path within the output archive, e.g.
	// "res/layout-land-v21/main.xml".
	DestPath string
}

func (FileReference) isValue()      {}
func (f FileReference) Clone() Value { return f }

var (
	_ Value = Reference{}
	_ Value = Primitive{}
	_ Value = RawString{}
	_ Value = IDPlaceholder{}
	_ Value = AttrDef{}
	_ Value = Array{}
	_ Value = Style{}
	_ Value = PluralValue{}
	_ Value = FileReference{}
)
