package merge

import (
	"fmt"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

// Merger folds incoming tables into a single target table, implementing
// the three merge modes of the spec's TableMerger. The compilation
// package name identifies which package in an incoming table is subject
// to strict append-mode duplicate checking; entries in any other package
// of an appended table are only accepted when overlay semantics permit.
type Merger struct {
	Target             *restable.Table
	Sink               *diag.Sink
	CompilationPackage string
	AutoAddOverlay     bool
	Mangler            *Mangler
}

// NewMerger returns a Merger writing into target.
func NewMerger(target *restable.Table, sink *diag.Sink, compilationPackage string) *Merger {
	return &Merger{
		Target:             target,
		Sink:               sink,
		CompilationPackage: compilationPackage,
		Mangler:            NewMangler(compilationPackage),
	}
}

// Merge implements append mode: values are inserted if absent; a
// duplicate ConfigValue within the compilation package is a
// merge-conflict error. Entries in a non-compilation package are always
// accepted (this is how included static-library/system packages such as
// "android" travel through positional compiled inputs; -I includes are
// never merged, only added to the symbol stack).
func (m *Merger) Merge(src *restable.Table, origin string) error {
	return m.mergeTable(src, origin, restable.PolicyError)
}

// MergeOverlay implements later-wins mode (-R inputs): a duplicate
// (pkg,type,entry,config) replaces the earlier value. New entries that
// were never declared in a prior (positional) input are only accepted
// when AutoAddOverlay is set; otherwise it is a merge-conflict error
// (spec B1).
func (m *Merger) MergeOverlay(src *restable.Table, origin string) error {
	failed := false
	for _, pkg := range src.Packages {
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				existing := m.Target.FindEntry(pkg.Name, string(ty.Tag), e.Name)
				if existing == nil && !m.AutoAddOverlay {
					m.Sink.Error(diag.KindMergeConflict, diag.Source{Path: origin},
						"overlay %q introduces new entry %s:%s/%s without --auto-add-overlay",
						origin, pkg.Name, ty.Tag, e.Name)
					failed = true
					continue
				}
				for _, cv := range e.Values {
					if _, err := restable.AddValue(m.Target, m.Sink, pkg.Name, string(ty.Tag), e.Name, cv, restable.PolicyOverlayReplace); err != nil {
						failed = true
					}
				}
				if e.Visibility != restable.VisibilityUndefined {
					m.Target.SetVisibility(pkg.Name, string(ty.Tag), e.Name, e.Visibility)
				}
			}
		}
	}
	if failed {
		return fmt.Errorf("overlay merge of %q failed", origin)
	}
	return nil
}

// MergeAndMangle merges src (a static library's own table, package name
// externalPkg) into the compilation package, renaming every entry to its
// mangled "externalPkg$name" form. The external package name is recorded
// on the Merger's Mangler so ReferenceLinker can rewrite unmangled
// references to it.
func (m *Merger) MergeAndMangle(externalPkg string, src *restable.Table, origin string) error {
	m.Mangler.MarkExternal(externalPkg)
	failed := false
	for _, pkg := range src.Packages {
		if pkg.Name != externalPkg {
			continue
		}
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				mangled := MangledName(externalPkg, e.Name)
				for _, cv := range e.Values {
					if _, err := restable.AddValue(m.Target, m.Sink, m.CompilationPackage, string(ty.Tag), mangled, cv, restable.PolicyError); err != nil {
						failed = true
					}
				}
				if e.Visibility != restable.VisibilityUndefined {
					m.Target.SetVisibility(m.CompilationPackage, string(ty.Tag), mangled, e.Visibility)
				}
			}
		}
	}
	if failed {
		return fmt.Errorf("mangled merge of %q failed", origin)
	}
	return nil
}

func (m *Merger) mergeTable(src *restable.Table, origin string, compilationPolicy restable.ConflictPolicy) error {
	failed := false
	for _, pkg := range src.Packages {
		policy := restable.PolicyOverlayReplace // non-compilation package: accept freely
		if pkg.Name == m.CompilationPackage {
			policy = compilationPolicy
		}
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				for _, cv := range e.Values {
					if cv.Source.Path == "" {
						cv.Source.Path = origin
					}
					if _, err := restable.AddValue(m.Target, m.Sink, pkg.Name, string(ty.Tag), e.Name, cv, policy); err != nil {
						failed = true
					}
				}
				if e.Visibility != restable.VisibilityUndefined {
					m.Target.SetVisibility(pkg.Name, string(ty.Tag), e.Name, e.Visibility)
				}
			}
		}
	}
	if failed {
		return fmt.Errorf("merge of %q failed", origin)
	}
	return nil
}
