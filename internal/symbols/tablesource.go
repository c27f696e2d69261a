package symbols

import (
	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

// TableSource adapts a restable.Table (the final in-memory table, a
// static-library include, or a platform asset archive's table) into a
// Source. A per-pass id index is rebuilt lazily on StartPass so FindByID
// lookups don't do a linear scan once ids have been assigned.
type TableSource struct {
	Table  *restable.Table
	Origin Origin

	byID map[restable.PackedID]Record
}

// NewTableSource wraps t for symbol lookups, tagging every Record it
// produces with origin.
func NewTableSource(t *restable.Table, origin Origin) *TableSource {
	return &TableSource{Table: t, Origin: origin}
}

func (s *TableSource) StartPass() {
	s.byID = nil // rebuilt lazily by FindByID
}

func (s *TableSource) EndPass() {
	s.byID = nil
}

func (s *TableSource) FindByName(name ResourceName) (Record, bool) {
	e := s.Table.FindEntry(name.Package, name.Type, name.Name)
	if e == nil {
		return Record{}, false
	}
	return s.recordFor(name, e), true
}

func (s *TableSource) recordFor(name ResourceName, e *restable.Entry) Record {
	rec := Record{Name: name, Visibility: e.Visibility, Origin: s.Origin}
	if e.ID != nil {
		pkg := s.Table.FindPackage(name.Package)
		if pkg != nil && pkg.ID != nil {
			rec.ID = restable.NewPackedID(*pkg.ID, s.typeID(pkg, name.Type), *e.ID)
		}
	}
	return rec
}

func (s *TableSource) typeID(pkg *restable.Package, tag string) uint8 {
	for _, ty := range pkg.Types {
		if string(ty.Tag) == tag && ty.ID != nil {
			return *ty.ID
		}
	}
	return 0
}

func (s *TableSource) FindByID(id restable.PackedID) (Record, bool) {
	if s.byID == nil {
		s.buildIDIndex()
	}
	rec, ok := s.byID[id]
	return rec, ok
}

func (s *TableSource) buildIDIndex() {
	s.byID = make(map[restable.PackedID]Record)
	for _, pkg := range s.Table.Packages {
		if pkg.ID == nil {
			continue
		}
		for _, ty := range pkg.Types {
			if ty.ID == nil {
				continue
			}
			for _, e := range ty.Entries {
				if e.ID == nil {
					continue
				}
				id := restable.NewPackedID(*pkg.ID, *ty.ID, *e.ID)
				s.byID[id] = Record{
					Name:       ResourceName{Package: pkg.Name, Type: string(ty.Tag), Name: e.Name},
					ID:         id,
					Visibility: e.Visibility,
					Origin:     s.Origin,
				}
			}
		}
	}
}

var _ Source = (*TableSource)(nil)
