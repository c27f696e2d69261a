// Package privatize implements PrivateAttributeMover: relocating
// private attr entries so public numbering is stable across builds that
// add private attrs later (aapt2's MoveToPrivateAttrs, Link.cpp).
package privatize

import (
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

const privateAttrPrefix = "^private_"

// Mover relocates private attrs ahead of id assignment. It takes no
// package argument: Link.cpp's MoveToPrivateAttrs pass (the source this
// is grounded on) runs unconditionally over every package, independent
// of --private-symbols, which governs Java symbol emission instead (see
// internal/sideoutput).
type Mover struct{}

// NewMover returns a Mover.
func NewMover() *Mover {
	return &Mover{}
}

// Move walks every package: any attr entry named "^private_X" is
// relocated into restable.TypePrivAttr as "X", visible only as private.
func (m *Mover) Move(t *restable.Table) {
	for _, pkg := range t.Packages {
		var attrTy *restable.Type
		for _, ty := range pkg.Types {
			if ty.Tag == restable.TypeAttr {
				attrTy = ty
				break
			}
		}
		if attrTy == nil {
			continue
		}

		var kept []*restable.Entry
		for _, e := range attrTy.Entries {
			if !strings.HasPrefix(e.Name, privateAttrPrefix) {
				kept = append(kept, e)
				continue
			}
			e.Name = strings.TrimPrefix(e.Name, privateAttrPrefix)
			e.Visibility = restable.VisibilityPrivate
			m.relocate(t, pkg.Name, e)
		}
		attrTy.Entries = kept
	}
}

func (m *Mover) relocate(t *restable.Table, pkgName string, e *restable.Entry) {
	privTy := t.FindOrCreateType(pkgName, string(restable.TypePrivAttr))
	privTy.Entries = append(privTy.Entries, e)
}
