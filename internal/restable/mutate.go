package restable

import (
	"fmt"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
)

// ConflictPolicy governs what AddValue does when a ConfigValue is added
// for a (pkg,type,entry,config,product) key that is already occupied.
type ConflictPolicy int

const (
	// PolicyError rejects the new value and reports a merge-conflict
	// diagnostic citing both source locations (used by TableMerger.Merge
	// for the compilation package, and by static/plain adds).
	PolicyError ConflictPolicy = iota
	// PolicyOverlayReplace silently replaces the earlier value (used by
	// TableMerger.MergeOverlay).
	PolicyOverlayReplace
)

// AddValue implements the table's single value-mutation primitive: every
// higher-level merge operation reduces to a sequence of these calls.
//
// It returns the Entry the value was attached to, and an error only when
// policy == PolicyError and a conflicting ConfigValue already exists;
// the diagnostic is also recorded on sink so the driver can report every
// conflict found in a pass, not just the first.
func AddValue(
	t *Table, sink *diag.Sink,
	pkg, typeTag, name string,
	cv ConfigValue,
	policy ConflictPolicy,
) (*Entry, error) {
	e := t.FindOrCreateEntry(pkg, typeTag, name)
	idx := e.findValue(cv.Config, cv.Product)
	if idx == -1 {
		e.Values = append(e.Values, cv)
		return e, nil
	}

	switch policy {
	case PolicyOverlayReplace:
		e.Values[idx] = cv
		return e, nil
	default: // PolicyError
		prior := e.Values[idx]
		msg := fmt.Sprintf(
			"duplicate value for %s:%s/%s (config %s): already defined at %s, redefined at %s",
			pkg, typeTag, name, cv.Config, prior.Source, cv.Source,
		)
		sink.Error(diag.KindMergeConflict, diag.Source{Path: cv.Source.Path, Line: cv.Source.Line}, "%s", msg)
		return e, fmt.Errorf("%s", msg)
	}
}
