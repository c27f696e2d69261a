// Package merge implements TableMerger: the pass that folds compilation
// units (append mode), overlays (replace mode), and static-library
// packages (mangle mode) into the final resource table.
package merge

import (
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

// Mangler produces the deterministic "P$X" mangled entry name used when
// an external package P's resources are merged directly into the
// compilation package (MergeAndMangle), and rewrites references to P's
// original (unmangled) names back to their mangled form so the
// ReferenceLinker can resolve them against the compilation package.
type Mangler struct {
	compilationPackage string
	external           map[string]bool
}

// NewMangler returns a Mangler scoped to the given compilation package.
func NewMangler(compilationPackage string) *Mangler {
	return &Mangler{compilationPackage: compilationPackage, external: map[string]bool{}}
}

// MarkExternal records that pkg's resources were merged into the
// compilation package under mangled names.
func (m *Mangler) MarkExternal(pkg string) {
	m.external[pkg] = true
}

// IsExternal reports whether pkg was merged via mangling.
func (m *Mangler) IsExternal(pkg string) bool {
	return m.external[pkg]
}

// MangledName returns "pkg$name".
func MangledName(pkg, name string) string {
	return pkg + "$" + name
}

// Unmangle splits a mangled entry name back into its source package and
// original name. It returns ok=false if name contains no "$".
func Unmangle(name string) (pkg, original string, ok bool) {
	i := strings.IndexByte(name, '$')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}

// Rewrite maps a symbolic reference to the name the ReferenceLinker
// should actually look up: if ref.Package was merged under mangling,
// the lookup moves to (compilationPackage, type, pkg$name).
func (m *Mangler) Rewrite(ref symbols.ResourceName) symbols.ResourceName {
	if ref.Package != "" && m.external[ref.Package] {
		return symbols.ResourceName{
			Package: m.compilationPackage,
			Type:    ref.Type,
			Name:    MangledName(ref.Package, ref.Name),
		}
	}
	return ref
}
