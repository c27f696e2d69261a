// Package diag carries the diagnostic records produced by every linker
// pass: merge conflicts, unresolved symbols, visibility violations, and
// the rest of the error kinds from the link pipeline's error design.
package diag

import "fmt"

// Kind identifies the category of a Diagnostic, mirroring the error kinds
// the link pipeline can produce. These are not Go error types: a single
// Kind can be carried by many distinct Diagnostic values.
type Kind string

// The error kinds the link pipeline can emit.
const (
	KindInputIO              Kind = "input-io"
	KindMalformedInput       Kind = "malformed-input"
	KindMergeConflict        Kind = "merge-conflict"
	KindUnknownSymbol        Kind = "unknown-symbol"
	KindVisibilityViolation  Kind = "visibility-violation"
	KindIDConflict           Kind = "id-conflict"
	KindManifestInvalid      Kind = "manifest-invalid"
	KindVersioningImpossible Kind = "versioning-impossible"
	KindSplitConstraint      Kind = "split-constraint-invalid"
	KindOutputIO             Kind = "output-io"
)

// Severity distinguishes a fatal diagnostic from one that is merely
// informative.
type Severity int

const (
	// SeverityWarning diagnostics do not cause the run to fail.
	SeverityWarning Severity = iota
	// SeverityError diagnostics cause the owning pass to report failure
	// to the driver once its current logical unit finishes.
	SeverityError
)

// Source locates a diagnostic in an input: a path and, where known, a
// line number (1-based; 0 means unknown/not applicable).
type Source struct {
	Path string
	Line int
}

func (s Source) String() string {
	if s.Path == "" {
		return ""
	}
	if s.Line <= 0 {
		return s.Path
	}
	return fmt.Sprintf("%s:%d", s.Path, s.Line)
}

// Diagnostic is a single error or warning record, carrying its origin and
// a human-readable message.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Source   Source
	Message  string
}

func (d Diagnostic) String() string {
	loc := d.Source.String()
	if loc == "" {
		return fmt.Sprintf("%s: %s", d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", loc, d.Kind, d.Message)
}

// Sink collects diagnostics in emission order. It is threaded explicitly
// through every pass rather than held in a package-level variable, so
// that a LinkContext can be shared safely across driver runs in tests.
type Sink struct {
	diagnostics []Diagnostic
	failed      bool
}

// NewSink returns an empty Sink.
func NewSink() *Sink {
	return &Sink{}
}

// Error records an error-severity diagnostic and marks the sink failed.
func (s *Sink) Error(kind Kind, src Source, format string, args ...interface{}) {
	s.add(Diagnostic{Kind: kind, Severity: SeverityError, Source: src, Message: fmt.Sprintf(format, args...)})
	s.failed = true
}

// Warn records a warning-severity diagnostic. It does not fail the sink.
func (s *Sink) Warn(kind Kind, src Source, format string, args ...interface{}) {
	s.add(Diagnostic{Kind: kind, Severity: SeverityWarning, Source: src, Message: fmt.Sprintf(format, args...)})
}

func (s *Sink) add(d Diagnostic) {
	s.diagnostics = append(s.diagnostics, d)
}

// Failed reports whether any error-severity diagnostic has been recorded
// since the sink was created (or last reset).
func (s *Sink) Failed() bool {
	return s.failed
}

// All returns every diagnostic recorded so far, in emission order.
func (s *Sink) All() []Diagnostic {
	return s.diagnostics
}

// Reset clears the sink's failed flag without discarding prior
// diagnostics, so the driver can check pass-scoped failure between
// passes while still emitting a single combined report at the end.
func (s *Sink) Reset() {
	s.failed = false
}
