package version

import "github.com/ABC-KANG/abc-res-link/internal/restable"

type groupKey struct {
	cfg     restable.ConfigDescription
	product string
}

// Collapse implements VersionCollapser: ConfigValues that differ only by
// platformLevel and whose level is at or below minSDK are reduced to a
// single representative (the highest such level), which then has its
// platformLevel qualifier stripped since it becomes the baseline variant
// for every device the build targets. Variants above minSDK are left
// untouched — they still distinguish devices newer than the minimum.
//
// Callers must skip Collapse entirely for static-library builds.
func Collapse(t *restable.Table, minSDK int) {
	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				collapseEntry(e, minSDK)
			}
		}
	}
}

func collapseEntry(e *restable.Entry, minSDK int) {
	groups := map[groupKey][]int{}
	for i, cv := range e.Values {
		k := groupKey{cfg: cv.Config.WithoutPlatformLevel(), product: cv.Product}
		groups[k] = append(groups[k], i)
	}

	remove := map[int]bool{}
	strip := map[int]bool{}
	for _, idxs := range groups {
		if len(idxs) < 2 {
			continue
		}
		maxIdx, maxLevel := -1, -1
		for _, i := range idxs {
			lvl := e.Values[i].Config.PlatformLevel
			if lvl <= minSDK && lvl > maxLevel {
				maxLevel = lvl
				maxIdx = i
			}
		}
		if maxIdx == -1 {
			continue
		}
		for _, i := range idxs {
			if i == maxIdx {
				continue
			}
			if e.Values[i].Config.PlatformLevel <= minSDK {
				remove[i] = true
			}
		}
		strip[maxIdx] = true
	}

	if len(remove) == 0 && len(strip) == 0 {
		return
	}
	kept := make([]restable.ConfigValue, 0, len(e.Values))
	for i, cv := range e.Values {
		if remove[i] {
			continue
		}
		if strip[i] {
			cv.Config = cv.Config.WithoutPlatformLevel()
		}
		kept = append(kept, cv)
	}
	e.Values = kept
}
