// Package version implements AutoVersioner (table-level and file-level)
// and VersionCollapser (spec 4.6).
package version

import (
	"fmt"
	"sort"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

// TableVersioner implements the table-level AutoVersioner: it synthesizes
// platform-level-qualified variants of style (and style-like) compounds
// whose referenced attributes require a higher platform level than the
// configuration they were declared under.
type TableVersioner struct {
	Stack  *symbols.Stack
	MinSDK int
}

// NewTableVersioner returns a TableVersioner consulting stack for each
// attribute's introduced-at level.
func NewTableVersioner(stack *symbols.Stack, minSDK int) *TableVersioner {
	return &TableVersioner{Stack: stack, MinSDK: minSDK}
}

// Version walks every entry in t and synthesizes the versioned variants
// I5 requires.
func (v *TableVersioner) Version(t *restable.Table, sink *diag.Sink) error {
	failed := false
	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				// Snapshot: synthesized values are appended to e.Values by
				// AddValue below, but the style compounds we must inspect
				// are only ever the ones present before this entry's pass
				// started.
				original := append([]restable.ConfigValue(nil), e.Values...)
				for _, cv := range original {
					style, ok := cv.Value.(restable.Style)
					if !ok {
						continue
					}
					if err := v.versionStyle(t, sink, pkg.Name, string(ty.Tag), e.Name, cv, style); err != nil {
						failed = true
					}
				}
			}
		}
	}
	if failed {
		return fmt.Errorf("table versioning failed")
	}
	return nil
}

func (v *TableVersioner) versionStyle(
	t *restable.Table, sink *diag.Sink,
	pkg, typeTag, name string,
	cv restable.ConfigValue, style restable.Style,
) error {
	threshold := v.MinSDK
	if cv.Config.PlatformLevel > threshold {
		threshold = cv.Config.PlatformLevel
	}

	levelSet := map[int]bool{}
	for _, entry := range style.Entries {
		if lvl := v.levelOf(entry.Attr); lvl > threshold {
			levelSet[lvl] = true
		}
	}
	if len(levelSet) == 0 {
		return nil
	}

	levels := make([]int, 0, len(levelSet))
	for l := range levelSet {
		levels = append(levels, l)
	}
	sort.Ints(levels)

	failed := false
	for _, lvl := range levels {
		filtered := filterStyle(style, v, lvl)
		newCV := restable.ConfigValue{
			Config:  cv.Config.WithPlatformLevel(lvl),
			Product: cv.Product,
			Value:   filtered,
			Source:  cv.Source,
		}
		if _, err := restable.AddValue(t, sink, pkg, typeTag, name, newCV, restable.PolicyError); err != nil {
			failed = true
		}
	}

	// I5: the original ConfigValue must not survive untouched — it is the
	// representative for every platform level up to threshold, so it is
	// replaced in place with a copy stripped of every attribute the
	// synthesized variants above now carry instead (spec §8 S2: "two
	// ConfigValues after AutoVersioner — the original with attribute
	// stripped, and a synthesized variant...").
	strippedOriginal := restable.ConfigValue{
		Config:  cv.Config,
		Product: cv.Product,
		Value:   filterStyle(style, v, threshold),
		Source:  cv.Source,
	}
	if _, err := restable.AddValue(t, sink, pkg, typeTag, name, strippedOriginal, restable.PolicyOverlayReplace); err != nil {
		failed = true
	}

	if failed {
		return fmt.Errorf("versioning %s:%s/%s failed", pkg, typeTag, name)
	}
	return nil
}

// filterStyle returns a copy of style retaining only the entries whose
// attribute is introduced at or below maxLevel.
func filterStyle(style restable.Style, v *TableVersioner, maxLevel int) restable.Style {
	filtered := restable.Style{}
	if style.Parent != nil {
		p := *style.Parent
		filtered.Parent = &p
	}
	for _, entry := range style.Entries {
		if v.levelOf(entry.Attr) <= maxLevel {
			filtered.Entries = append(filtered.Entries, entry)
		}
	}
	return filtered
}

func (v *TableVersioner) levelOf(ref restable.Reference) int {
	rec, ok := v.Stack.FindByID(ref.ID)
	if !ok {
		return 0
	}
	return rec.IntroducedAt
}
