package restable

import (
	"sort"
	"strings"
)

// Qualifier names a single axis of a ConfigDescription, used by Diff to
// report which axes differ between two configurations.
type Qualifier string

const (
	QualifierLocale       Qualifier = "locale"
	QualifierOrientation  Qualifier = "orientation"
	QualifierDensity      Qualifier = "density"
	QualifierPlatformLvl  Qualifier = "platformLevel"
	QualifierScreenSize   Qualifier = "screenSize"
	QualifierUIMode       Qualifier = "uiMode"
)

// ConfigDescription is a fixed-layout tuple of qualifiers describing when
// a resource value applies. Zero values mean "unset" (matches anything)
// for every field except PlatformLevel, where 0 means API level 1 (the
// qualifier is simply absent from the configuration string).
type ConfigDescription struct {
	Locale        string // e.g. "en", "en-rUS"
	Orientation   string // "port", "land", ""
	Density       int    // dpi, 0 = default/any
	PlatformLevel int    // minimum platform API level, 0 = unset
	ScreenSize    string // "small","normal","large","xlarge",""
	UIMode        string // "car","desk","television","watch",""
}

// Equal reports whether two ConfigDescriptions are the same key (I1 uses
// this to detect duplicate ConfigValues within one entry).
func (c ConfigDescription) Equal(o ConfigDescription) bool {
	return c == o
}

// Diff returns the set of qualifiers that differ between c and o.
func (c ConfigDescription) Diff(o ConfigDescription) []Qualifier {
	var out []Qualifier
	if c.Locale != o.Locale {
		out = append(out, QualifierLocale)
	}
	if c.Orientation != o.Orientation {
		out = append(out, QualifierOrientation)
	}
	if c.Density != o.Density {
		out = append(out, QualifierDensity)
	}
	if c.PlatformLevel != o.PlatformLevel {
		out = append(out, QualifierPlatformLvl)
	}
	if c.ScreenSize != o.ScreenSize {
		out = append(out, QualifierScreenSize)
	}
	if c.UIMode != o.UIMode {
		out = append(out, QualifierUIMode)
	}
	return out
}

// WithPlatformLevel returns a copy of c with PlatformLevel replaced.
func (c ConfigDescription) WithPlatformLevel(level int) ConfigDescription {
	c.PlatformLevel = level
	return c
}

// WithoutPlatformLevel returns a copy of c with the platformLevel
// qualifier stripped (level reset to 0/unset).
func (c ConfigDescription) WithoutPlatformLevel() ConfigDescription {
	c.PlatformLevel = 0
	return c
}

// specificity is the number of qualifiers that are set (non-zero). It is
// the primary key for the total order used to break ties (more specific
// configurations sort after less specific ones), matching the way
// resource configuration precedence works: a more specific match wins.
func (c ConfigDescription) specificity() int {
	n := 0
	if c.Locale != "" {
		n++
	}
	if c.Orientation != "" {
		n++
	}
	if c.Density != 0 {
		n++
	}
	if c.PlatformLevel != 0 {
		n++
	}
	if c.ScreenSize != "" {
		n++
	}
	if c.UIMode != "" {
		n++
	}
	return n
}

// String renders the configuration the way aapt2 names qualifier
// directories, e.g. "en-land-v21". The empty configuration renders as
// "default".
func (c ConfigDescription) String() string {
	var parts []string
	if c.Locale != "" {
		parts = append(parts, c.Locale)
	}
	if c.ScreenSize != "" {
		parts = append(parts, c.ScreenSize)
	}
	if c.Orientation != "" {
		parts = append(parts, c.Orientation)
	}
	if c.UIMode != "" {
		parts = append(parts, c.UIMode)
	}
	if c.Density != 0 {
		parts = append(parts, densityQualifier(c.Density))
	}
	if c.PlatformLevel != 0 {
		parts = append(parts, "v"+itoa(c.PlatformLevel))
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, "-")
}

func densityQualifier(dpi int) string {
	switch dpi {
	case 120:
		return "ldpi"
	case 160:
		return "mdpi"
	case 240:
		return "hdpi"
	case 320:
		return "xhdpi"
	case 480:
		return "xxhdpi"
	case 640:
		return "xxxhdpi"
	case 65534:
		return "anydpi"
	case 65535:
		return "nodpi"
	default:
		return itoa(dpi) + "dpi"
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// Less implements the total order over ConfigDescription used for
// deterministic tie-breaking and archive entry ordering (spec P4): first
// by specificity (fewer qualifiers first), then lexicographically by the
// rendered qualifier string so the order is stable and reproducible.
func (c ConfigDescription) Less(o ConfigDescription) bool {
	if c.specificity() != o.specificity() {
		return c.specificity() < o.specificity()
	}
	return c.String() < o.String()
}

// SortConfigValues sorts cvs by (Config, then Product) using the total
// order above, matching the archive's required (config, entry-name)
// determinism (entry-name ordering happens one level up, in the
// flattener).
func SortConfigValues(cvs []ConfigValue) {
	sort.SliceStable(cvs, func(i, j int) bool {
		if !cvs[i].Config.Equal(cvs[j].Config) {
			return cvs[i].Config.Less(cvs[j].Config)
		}
		return cvs[i].Product < cvs[j].Product
	})
}
