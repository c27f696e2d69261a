// Package productfilter implements ProductFilter (--product LIST):
// keeping exactly one ConfigValue per (entry, config) when several
// products collide, preferring the requested products over "default".
package productfilter

import "github.com/ABC-KANG/abc-res-link/internal/restable"

// Filter reduces every entry's ConfigValues so that, for any (config)
// that has variants under more than one product, only the
// highest-priority requested product survives (falling back to the
// empty/default product if none of the requested ones are present).
// A variant of a product that is neither in wanted nor "default" is kept
// only when its config has no requested or default variant.
func Filter(t *restable.Table, wanted []string) {
	priority := make(map[string]int, len(wanted))
	for i, p := range wanted {
		priority[p] = i
	}

	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				e.Values = filterEntry(e.Values, priority)
			}
		}
	}
}

func filterEntry(values []restable.ConfigValue, priority map[string]int) []restable.ConfigValue {
	groups := map[restable.ConfigDescription][]restable.ConfigValue{}
	var order []restable.ConfigDescription
	for _, cv := range values {
		if _, seen := groups[cv.Config]; !seen {
			order = append(order, cv.Config)
		}
		groups[cv.Config] = append(groups[cv.Config], cv)
	}

	out := make([]restable.ConfigValue, 0, len(values))
	for _, cfg := range order {
		out = append(out, pickProduct(groups[cfg], priority))
	}
	return out
}

func pickProduct(cvs []restable.ConfigValue, priority map[string]int) restable.ConfigValue {
	if len(cvs) == 1 {
		return cvs[0]
	}

	best := cvs[0]
	bestRank := rank(best.Product, priority)
	for _, cv := range cvs[1:] {
		if r := rank(cv.Product, priority); r < bestRank {
			best, bestRank = cv, r
		}
	}
	return best
}

// rank orders: explicitly requested products by their position in the
// --product list (lower is higher priority), "default"/"" last among
// requested products but still preferred over anything unrequested.
func rank(product string, priority map[string]int) int {
	if product == "" || product == "default" {
		return len(priority)
	}
	if r, ok := priority[product]; ok {
		return r
	}
	return len(priority) + 1
}
