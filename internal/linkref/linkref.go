// Package linkref implements ReferenceLinker: substituting resolved ids
// for every symbolic reference reachable from a table's values.
package linkref

import (
	"fmt"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/merge"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

// Linker resolves every symbolic Reference reachable from the table's
// values against a symbols.Stack, enforcing visibility (spec 4.5).
type Linker struct {
	Table              *restable.Table
	Stack              *symbols.Stack
	Mangler            *merge.Mangler
	CompilationPackage string
	Sink               *diag.Sink
}

// NewLinker returns a Linker wired to the given table and symbol stack.
func NewLinker(t *restable.Table, stack *symbols.Stack, mangler *merge.Mangler, compilationPackage string, sink *diag.Sink) *Linker {
	return &Linker{Table: t, Stack: stack, Mangler: mangler, CompilationPackage: compilationPackage, Sink: sink}
}

// LinkTable resolves every reference in every package/type/entry/config
// value. It returns an error iff at least one reference could not be
// resolved or violated visibility; per spec, it continues linking the
// rest of the table so every diagnostic surfaces in one run (not just
// the first).
func (l *Linker) LinkTable() error {
	failed := false
	l.Stack.StartPass()
	defer l.Stack.EndPass()

	for _, pkg := range l.Table.Packages {
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				for i := range e.Values {
					linked, err := l.linkValue(e.Values[i].Value, pkg.Name, e.Values[i].Source)
					if err != nil {
						failed = true
						continue
					}
					e.Values[i].Value = linked
				}
			}
		}
	}
	if failed {
		return fmt.Errorf("reference linking failed")
	}
	return nil
}

func (l *Linker) linkValue(v restable.Value, declaringPkg string, src restable.Source) (restable.Value, error) {
	switch t := v.(type) {
	case restable.Reference:
		return l.linkReference(t, declaringPkg, src)
	case restable.Array:
		failed := false
		for i, item := range t.Items {
			linked, err := l.linkValue(item, declaringPkg, src)
			if err != nil {
				failed = true
				continue
			}
			t.Items[i] = linked
		}
		if failed {
			return t, fmt.Errorf("array item linking failed")
		}
		return t, nil
	case restable.Style:
		failed := false
		if t.Parent != nil {
			linked, err := l.linkReference(*t.Parent, declaringPkg, src)
			if err != nil {
				failed = true
			} else {
				r := linked.(restable.Reference)
				t.Parent = &r
			}
		}
		for i, entry := range t.Entries {
			linkedAttr, err := l.linkReference(entry.Attr, declaringPkg, src)
			if err != nil {
				failed = true
			} else {
				entry.Attr = linkedAttr.(restable.Reference)
			}
			linkedVal, err := l.linkValue(entry.Value, declaringPkg, src)
			if err != nil {
				failed = true
			} else {
				entry.Value = linkedVal
			}
			t.Entries[i] = entry
		}
		if failed {
			return t, fmt.Errorf("style linking failed")
		}
		return t, nil
	case restable.PluralValue:
		failed := false
		link := func(val restable.Value) restable.Value {
			if val == nil {
				return nil
			}
			linked, err := l.linkValue(val, declaringPkg, src)
			if err != nil {
				failed = true
				return val
			}
			return linked
		}
		t.Other, t.Zero, t.One = link(t.Other), link(t.Zero), link(t.One)
		t.Two, t.Few, t.Many = link(t.Two), link(t.Few), link(t.Many)
		if failed {
			return t, fmt.Errorf("plural linking failed")
		}
		return t, nil
	default:
		return v, nil
	}
}

func (l *Linker) linkReference(ref restable.Reference, declaringPkg string, src restable.Source) (restable.Value, error) {
	if ref.State == restable.ReferenceResolved {
		return ref, nil
	}
	if ref.Dynamic {
		// Dynamic references to runtime-loaded packages are explicitly
		// exempt from the "unresolved is fatal" rule (spec 4.5, I4).
		return ref, nil
	}

	name := symbols.ResourceName{Package: ref.Package, Type: ref.Type, Name: ref.Name}
	if name.Package == "" {
		name.Package = l.CompilationPackage
	}
	if l.Mangler != nil {
		name = l.Mangler.Rewrite(name)
	}

	rec, ok := l.Stack.FindByName(name, nil)
	if !ok {
		l.Sink.Error(diag.KindUnknownSymbol, diag.Source{Path: src.Path, Line: src.Line},
			"unresolved reference to %s:%s/%s", name.Package, name.Type, name.Name)
		return ref, fmt.Errorf("unresolved reference %s:%s/%s", name.Package, name.Type, name.Name)
	}

	if rec.Visibility == restable.VisibilityPrivate && name.Package != declaringPkg {
		l.Sink.Error(diag.KindVisibilityViolation, diag.Source{Path: src.Path, Line: src.Line},
			"%s:%s/%s is private and cannot be referenced from package %q", name.Package, name.Type, name.Name, declaringPkg)
		return ref, fmt.Errorf("visibility violation for %s:%s/%s", name.Package, name.Type, name.Name)
	}

	ref.State = restable.ReferenceResolved
	ref.ID = rec.ID
	if rec.IntroducedAt > 0 {
		ref.AttrFormat = "" // no linker pass attaches format metadata
	}
	return ref, nil
}
