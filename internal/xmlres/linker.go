package xmlres

import (
	"fmt"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/merge"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

// Linker is XmlReferenceLinker: it resolves every reference reachable
// from a compiled XML document (attribute names and attribute values)
// and reports the set of platform API levels the document's resolved
// attributes require, for the file-level AutoVersioner to consume.
type Linker struct {
	Stack              *symbols.Stack
	Mangler            *merge.Mangler
	CompilationPackage string
	Sink               *diag.Sink
}

// NewLinker returns a Linker wired to the given symbol stack.
func NewLinker(stack *symbols.Stack, mangler *merge.Mangler, compilationPackage string, sink *diag.Sink) *Linker {
	return &Linker{Stack: stack, Mangler: mangler, CompilationPackage: compilationPackage, Sink: sink}
}

// LinkDocument resolves every reference in doc, returning the set of
// distinct platform levels its resolved attributes require.
func (l *Linker) LinkDocument(doc *Document, declaringPkg string, src restable.Source) (map[int]bool, error) {
	levels := map[int]bool{}
	failed := false

	doc.Walk(func(e *Element) {
		for i := range e.Attributes {
			attr := &e.Attributes[i]
			if attr.AttrRef != nil {
				resolved, rec, err := l.resolve(*attr.AttrRef, declaringPkg, src)
				if err != nil {
					failed = true
				} else {
					attr.AttrRef = &resolved
					if rec.IntroducedAt > 0 {
						levels[rec.IntroducedAt] = true
					}
				}
			}
			if ref, ok := attr.Value.(restable.Reference); ok {
				resolved, _, err := l.resolve(ref, declaringPkg, src)
				if err != nil {
					failed = true
				} else {
					attr.Value = resolved
				}
			}
		}
	})

	if failed {
		return levels, fmt.Errorf("xml reference linking failed")
	}
	return levels, nil
}

func (l *Linker) resolve(ref restable.Reference, declaringPkg string, src restable.Source) (restable.Reference, symbols.Record, error) {
	if ref.State == restable.ReferenceResolved {
		return ref, symbols.Record{}, nil
	}
	if ref.Dynamic {
		return ref, symbols.Record{}, nil
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
			"unresolved xml reference to %s:%s/%s", name.Package, name.Type, name.Name)
		return ref, symbols.Record{}, fmt.Errorf("unresolved reference %s:%s/%s", name.Package, name.Type, name.Name)
	}

	if rec.Visibility == restable.VisibilityPrivate && name.Package != declaringPkg {
		l.Sink.Error(diag.KindVisibilityViolation, diag.Source{Path: src.Path, Line: src.Line},
			"%s:%s/%s is private and cannot be referenced from package %q", name.Package, name.Type, name.Name, declaringPkg)
		return ref, symbols.Record{}, fmt.Errorf("visibility violation for %s:%s/%s", name.Package, name.Type, name.Name)
	}

	ref.State = restable.ReferenceResolved
	ref.ID = rec.ID
	return ref, rec, nil
}
