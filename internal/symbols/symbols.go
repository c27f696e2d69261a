// Package symbols implements the SymbolSource stack: an ordered sequence
// of resolvers queried to map a symbolic resource name to a SymbolRecord,
// across the final in-memory table, static-library includes, and
// platform asset archives.
package symbols

import (
	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

// Origin records where a SymbolRecord came from.
type Origin int

const (
	OriginLocal Origin = iota
	OriginStaticLibrary
	OriginPlatformInclude
)

// ResourceName is a fully-qualified symbolic reference: package may be
// empty, meaning "resolve against the compiling package".
type ResourceName struct {
	Package string
	Type    string
	Name    string
}

// Record is what a Source reports for a successful lookup.
type Record struct {
	Name       ResourceName
	ID         restable.PackedID
	Visibility restable.Visibility
	Origin     Origin

	// IntroducedAt is the minimum platform API level this symbol (when
	// it is an attr) requires; 0 if not applicable/unknown. The
	// XmlReferenceLinker consumes this to compute per-document
	// auto-versioning requirements.
	IntroducedAt int
}

// Source is one resolver in the SymbolSource stack.
type Source interface {
	FindByName(name ResourceName) (Record, bool)
	FindByID(id restable.PackedID) (Record, bool)
	// StartPass/EndPass bracket one linker pass, so a Source may cache
	// lookups for its duration and safely drop the cache afterwards.
	StartPass()
	EndPass()
}

// Stack is a priority-ordered list of Sources: find_by_name/find_by_id
// consult them in order and the first hit wins. Sources are typically
// appended least-important first and the final in-memory table is
// prepended last so it has the highest priority, matching the spec's
// "(a)...(prepended last, highest priority)" ordering.
type Stack struct {
	sources []Source
}

// NewStack returns an empty Stack; use Prepend/Append to populate it.
func NewStack() *Stack {
	return &Stack{}
}

// Append adds a Source at the lowest priority (consulted last).
func (s *Stack) Append(src Source) {
	s.sources = append(s.sources, src)
}

// Prepend adds a Source at the highest priority (consulted first).
func (s *Stack) Prepend(src Source) {
	s.sources = append([]Source{src}, s.sources...)
}

// StartPass calls StartPass on every source, in stack order.
func (s *Stack) StartPass() {
	for _, src := range s.sources {
		src.StartPass()
	}
}

// EndPass calls EndPass on every source, in stack order.
func (s *Stack) EndPass() {
	for _, src := range s.sources {
		src.EndPass()
	}
}

// FindByName returns the first hit across the stack, preferring an exact
// match; if mangleFallback is non-nil and no exact match is found,
// names are retried with a mangled package-local form supplied by
// mangleFallback (used when linking references into a mangled
// compilation package — see internal/merge).
func (s *Stack) FindByName(name ResourceName, mangleFallback func(ResourceName) (ResourceName, bool)) (Record, bool) {
	for _, src := range s.sources {
		if rec, ok := src.FindByName(name); ok {
			return rec, true
		}
	}
	if mangleFallback == nil {
		return Record{}, false
	}
	mangled, ok := mangleFallback(name)
	if !ok {
		return Record{}, false
	}
	for _, src := range s.sources {
		if rec, ok := src.FindByName(mangled); ok {
			return rec, true
		}
	}
	return Record{}, false
}

// FindByID returns the first hit across the stack.
func (s *Stack) FindByID(id restable.PackedID) (Record, bool) {
	for _, src := range s.sources {
		if rec, ok := src.FindByID(id); ok {
			return rec, true
		}
	}
	return Record{}, false
}
