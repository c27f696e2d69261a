// Package ids implements IdAssigner: deterministic package/type/entry
// numeric id assignment, honoring a stable-id map and the
// android/application package-id special case.
package ids

import (
	"fmt"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

// FrameworkPackageID and AppPackageID are the two package ids the
// compilation package can take: 0x01 when compiling the "android"
// framework package itself, 0x7f for every regular application build.
const (
	FrameworkPackageID uint8 = 0x01
	AppPackageID       uint8 = 0x7f
)

// StableMap binds specific resource names to specific resolved ids,
// seeding the assignment so cross-build ids stay stable.
type StableMap map[symbols.ResourceName]restable.PackedID

// Assign performs id assignment over every package in t.
//
// Static-library builds skip assignment entirely (4.4's "Static
// libraries must have no ids assigned on output"); call VerifyNoIDsSet
// instead for those builds.
func Assign(t *restable.Table, sink *diag.Sink, stable StableMap) error {
	failed := false
	for _, pkg := range t.Packages {
		if err := assignPackage(t, sink, pkg, stable); err != nil {
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("id assignment failed")
	}
	return nil
}

func packageID(name string) uint8 {
	if name == "android" {
		return FrameworkPackageID
	}
	return AppPackageID
}

func assignPackage(t *restable.Table, sink *diag.Sink, pkg *restable.Package, stable StableMap) error {
	if pkg.ID == nil {
		id := packageID(pkg.Name)
		pkg.ID = &id
	}

	failed := false
	used := map[uint8]bool{}
	// Seed with type ids the stable map pins, so the declaration-order
	// walk below skips over them.
	pinnedType := map[string]uint8{}
	for name, packed := range stable {
		if name.Package != pkg.Name {
			continue
		}
		tid := packed.Type()
		if used[tid] && pinnedType[name.Type] != tid {
			sink.Error(diag.KindIDConflict, diag.Source{}, "stable id for %s:%s/%s conflicts with an already-pinned type id 0x%02x",
				name.Package, name.Type, name.Name, tid)
			failed = true
			continue
		}
		used[tid] = true
		pinnedType[name.Type] = tid
	}

	next := uint8(0)
	for _, ty := range pkg.Types {
		if ty.ID == nil {
			if tid, ok := pinnedType[string(ty.Tag)]; ok {
				id := tid
				ty.ID = &id
			} else {
				for used[next] {
					next++
				}
				id := next
				ty.ID = &id
				used[next] = true
				next++
			}
		}
		if err := assignType(pkg, ty, stable); err != nil {
			sink.Error(diag.KindIDConflict, diag.Source{}, "%s", err.Error())
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("package %q id assignment failed", pkg.Name)
	}
	return nil
}

func assignType(pkg *restable.Package, ty *restable.Type, stable StableMap) error {
	used := map[uint16]bool{}
	pinned := map[string]uint16{}
	for name, packed := range stable {
		if name.Package != pkg.Name || name.Type != string(ty.Tag) {
			continue
		}
		if packed.Type() != *ty.ID {
			continue
		}
		eid := packed.Entry()
		if used[eid] {
			return fmt.Errorf("stable id for %s:%s/%s (0x%08x) is already in use", name.Package, name.Type, name.Name, uint32(packed))
		}
		used[eid] = true
		pinned[name.Name] = eid
	}

	// Deterministic declaration order: entries are walked in slice order
	// (I6 preserves first-insertion order already).
	names := make([]string, 0, len(ty.Entries))
	byName := map[string]*restable.Entry{}
	for _, e := range ty.Entries {
		names = append(names, e.Name)
		byName[e.Name] = e
	}
	next := uint16(0)
	for _, name := range names {
		e := byName[name]
		if e.ID != nil {
			continue
		}
		if eid, ok := pinned[name]; ok {
			id := eid
			e.ID = &id
			continue
		}
		for used[next] {
			next++
		}
		id := next
		e.ID = &id
		used[next] = true
		next++
	}
	return nil
}

// VerifyNoIDsSet implements the static-lib output check (spec 4.4, S6,
// B2-adjacent): it is an error for any type or entry to carry a numeric
// id when building a static library.
func VerifyNoIDsSet(t *restable.Table, sink *diag.Sink) error {
	failed := false
	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			if ty.ID != nil {
				sink.Error(diag.KindIDConflict, diag.Source{}, "static library output has a type id set for %s:%s", pkg.Name, ty.Tag)
				failed = true
			}
			for _, e := range ty.Entries {
				if e.ID != nil {
					sink.Error(diag.KindIDConflict, diag.Source{}, "static library output has an entry id set for %s:%s/%s", pkg.Name, ty.Tag, e.Name)
					failed = true
				}
			}
		}
	}
	if failed {
		return fmt.Errorf("static library output has ids assigned")
	}
	return nil
}
