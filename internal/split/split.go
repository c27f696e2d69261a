// Package split implements TableSplitter (spec 4.8): partitioning the
// final table into a base and N configuration-specific sub-tables.
package split

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

// Constraint is one --split PATH:CFG[,CFG…] argument: an output path and
// the set of configurations that route a value into this split.
type Constraint struct {
	OutPath string
	Configs []restable.ConfigDescription
	// Labels holds the raw qualifier strings as given on the command
	// line (e.g. "hdpi", "en"), in argument order, so the split
	// manifest synthesizer can recover the "config.hdpi_en" split name
	// without re-deriving it from the parsed ConfigDescriptions.
	Labels []string
}

// Splitter partitions a table per its ordered list of Constraints.
type Splitter struct {
	Constraints []Constraint
	MinSDK      int
}

// NewSplitter strips each constraint's platformLevel qualifier when it
// is at or below minSDK (spec 4.8: "otherwise post-collapse resources
// can never match") and returns the prepared Splitter.
func NewSplitter(constraints []Constraint, minSDK int) *Splitter {
	prepared := make([]Constraint, len(constraints))
	for i, c := range constraints {
		pc := Constraint{OutPath: c.OutPath, Labels: c.Labels, Configs: make([]restable.ConfigDescription, len(c.Configs))}
		for j, cfg := range c.Configs {
			if cfg.PlatformLevel <= minSDK {
				cfg = cfg.WithoutPlatformLevel()
			}
			pc.Configs[j] = cfg
		}
		prepared[i] = pc
	}
	return &Splitter{Constraints: prepared, MinSDK: minSDK}
}

// Verify checks that every constraint's configs are pairwise disjoint
// from every other constraint's configs.
func (s *Splitter) Verify() error {
	seen := map[restable.ConfigDescription]string{}
	for _, c := range s.Constraints {
		for _, cfg := range c.Configs {
			if owner, ok := seen[cfg]; ok {
				return fmt.Errorf("split constraint for %q and %q both claim config %s", owner, c.OutPath, cfg)
			}
			seen[cfg] = c.OutPath
		}
	}
	return nil
}

// Split destructively partitions t: every ConfigValue whose config
// dominates some constraint's config is moved (not copied) into that
// constraint's sub-table, in constraint order. t is left holding
// whatever no constraint claimed.
func (s *Splitter) Split(t *restable.Table) []*restable.Table {
	subTables := make([]*restable.Table, len(s.Constraints))
	for i := range subTables {
		subTables[i] = restable.New()
	}

	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				var remain []restable.ConfigValue
				for _, cv := range e.Values {
					idx := s.match(cv.Config)
					if idx == -1 {
						remain = append(remain, cv)
						continue
					}
					s.place(subTables[idx], pkg, ty, e, cv)
				}
				e.Values = remain
			}
		}
	}
	return subTables
}

func (s *Splitter) match(cfg restable.ConfigDescription) int {
	for i, c := range s.Constraints {
		for _, ccfg := range c.Configs {
			if dominates(cfg, ccfg) {
				return i
			}
		}
	}
	return -1
}

func (s *Splitter) place(sub *restable.Table, pkg *restable.Package, ty *restable.Type, e *restable.Entry, cv restable.ConfigValue) {
	subPkg := sub.FindOrCreatePackage(pkg.Name)
	subPkg.ID = pkg.ID
	subEntry := sub.FindOrCreateEntry(pkg.Name, string(ty.Tag), e.Name)
	subEntry.ID = e.ID
	subEntry.Visibility = e.Visibility
	for _, subTy := range subPkg.Types {
		if subTy.Tag == ty.Tag {
			subTy.ID = ty.ID
			break
		}
	}
	subEntry.Values = append(subEntry.Values, cv)
}

var densityNames = map[string]int{
	"ldpi": 120, "mdpi": 160, "hdpi": 240, "xhdpi": 320,
	"xxhdpi": 480, "xxxhdpi": 640, "anydpi": 65534, "nodpi": 65535,
}

var screenSizeNames = map[string]bool{"small": true, "normal": true, "large": true, "xlarge": true}
var uiModeNames = map[string]bool{"car": true, "desk": true, "television": true, "watch": true}

// ParseQualifiers parses a comma-separated qualifier string (the form
// taken by both `--split PATH:CFG[,CFG…]` and `-c CFG[,CFG…]`) into a
// ConfigDescription, recognizing density keywords, "vNN" platform
// levels, orientation, screen size, and UI mode; anything else is
// treated as a locale. It also returns the individual qualifier tokens,
// in order, for callers that need the raw labels (e.g. split naming).
func ParseQualifiers(csv string) (restable.ConfigDescription, []string) {
	var cfg restable.ConfigDescription
	labels := strings.Split(csv, ",")
	for i := range labels {
		labels[i] = strings.TrimSpace(labels[i])
	}
	for _, tok := range labels {
		switch {
		case tok == "":
			continue
		case densityNames[tok] != 0:
			cfg.Density = densityNames[tok]
		case tok == "port" || tok == "land":
			cfg.Orientation = tok
		case screenSizeNames[tok]:
			cfg.ScreenSize = tok
		case uiModeNames[tok]:
			cfg.UIMode = tok
		case len(tok) > 1 && tok[0] == 'v':
			if lvl, err := strconv.Atoi(tok[1:]); err == nil {
				cfg.PlatformLevel = lvl
				continue
			}
			cfg.Locale = tok
		default:
			cfg.Locale = tok
		}
	}
	return cfg, labels
}

// dominates reports whether value satisfies every qualifier constraint
// sets (a zero/empty qualifier in constraint means "don't care").
func dominates(value, constraint restable.ConfigDescription) bool {
	if constraint.Locale != "" && value.Locale != constraint.Locale {
		return false
	}
	if constraint.Orientation != "" && value.Orientation != constraint.Orientation {
		return false
	}
	if constraint.Density != 0 && value.Density != constraint.Density {
		return false
	}
	if constraint.PlatformLevel != 0 && value.PlatformLevel != constraint.PlatformLevel {
		return false
	}
	if constraint.ScreenSize != "" && value.ScreenSize != constraint.ScreenSize {
		return false
	}
	if constraint.UIMode != "" && value.UIMode != constraint.UIMode {
		return false
	}
	return true
}
