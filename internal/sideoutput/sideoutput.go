// Package sideoutput implements the narrow writer interfaces the driver
// calls for the host-language identifier source (--java) and the
// obfuscation keep-rule files (--proguard, --proguard-main-dex): the
// generator itself is out of scope, but the seam it plugs into is not.
package sideoutput

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

// JavaSymbolWriter emits the per-package identifier source a host
// language uses to address resources by symbol rather than numeric id.
//
// privateSymbolsPackage mirrors aapt2's --private-symbols PKG: when
// empty, customPackage (and extraPackages) receive every symbol
// regardless of visibility, as if the flag were never passed. When set,
// customPackage and extraPackages receive only Public symbols, and
// privateSymbolsPackage alone receives both Private and Public symbols
// ("If we defined a private symbols package, we only emit Public
// symbols to the original package, and private and public symbols to
// the private package").
type JavaSymbolWriter interface {
	WriteJavaSymbols(t *restable.Table, customPackage string, extraPackages []string, privateSymbolsPackage, javadocAnnotation string, nonFinal bool) error
}

// KeepRuleWriter emits an obfuscation keep-rule file naming every
// on-disk resource so a later shrink/obfuscate pass leaves it alone.
type KeepRuleWriter interface {
	WriteKeepRules(t *restable.Table) error
}

// FileJavaWriter writes one minimal "R.java"-shaped source file per
// package (customPackage plus any --extra-packages) directly to w,
// concatenated and package-labeled; a full build would split these
// across DIR/pkg/path/R.java, but the narrow interface only promises
// the symbol table gets emitted, not a javac-ready tree.
type FileJavaWriter struct {
	W io.Writer
}

func (f *FileJavaWriter) WriteJavaSymbols(t *restable.Table, customPackage string, extraPackages []string, privateSymbolsPackage, javadocAnnotation string, nonFinal bool) error {
	bw := bufio.NewWriter(f.W)

	// Public-only once a private-symbols package is named; otherwise every
	// symbol regardless of visibility, matching the flag's no-op default.
	publicOnly := privateSymbolsPackage != ""
	packages := append([]string{customPackage}, extraPackages...)
	for _, pkgName := range packages {
		if pkgName == "" {
			continue
		}
		if err := writeRClass(bw, t, pkgName, javadocAnnotation, nonFinal, publicOnly); err != nil {
			return err
		}
	}

	if privateSymbolsPackage != "" {
		if err := writeRClass(bw, t, privateSymbolsPackage, javadocAnnotation, nonFinal, false); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRClass(w io.Writer, t *restable.Table, javaPackage, annotation string, nonFinal, publicOnly bool) error {
	finalKW := "final "
	if nonFinal {
		finalKW = ""
	}
	if _, err := fmt.Fprintf(w, "package %s;\n\n", javaPackage); err != nil {
		return err
	}
	if annotation != "" {
		if _, err := fmt.Fprintf(w, "/** %s */\n", annotation); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, "public final class R {"); err != nil {
		return err
	}

	typeTags := map[restable.TypeTag]bool{}
	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			typeTags[ty.Tag] = true
		}
	}
	tags := make([]string, 0, len(typeTags))
	for tag := range typeTags {
		tags = append(tags, string(tag))
	}
	sort.Strings(tags)

	for _, tag := range tags {
		if _, err := fmt.Fprintf(w, "    public static final class %s {\n", javaIdentifier(tag)); err != nil {
			return err
		}
		var names []string
		var idOf = map[string]restable.PackedID{}
		for _, pkg := range t.Packages {
			if pkg.ID == nil {
				continue
			}
			for _, ty := range pkg.Types {
				if string(ty.Tag) != tag || ty.ID == nil {
					continue
				}
				for _, e := range ty.Entries {
					if e.ID == nil {
						continue
					}
					if publicOnly && e.Visibility != restable.VisibilityPublic {
						continue
					}
					names = append(names, e.Name)
					idOf[e.Name] = restable.NewPackedID(*pkg.ID, *ty.ID, *e.ID)
				}
			}
		}
		sort.Strings(names)
		for _, name := range names {
			if _, err := fmt.Fprintf(w, "        public static %sint %s = 0x%08x;\n", finalKW, javaIdentifier(name), uint32(idOf[name])); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, "    }"); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}

func javaIdentifier(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "-", "_"), ".", "_")
}

// FileKeepRuleWriter emits one three-line
// "-keepclassmembers class **.R$type { public static final int name; }"
// rule per distinct (type, entry) pair, sorted, the keep-rule shape a
// resource shrinker needs to avoid stripping resource-id fields.
type FileKeepRuleWriter struct {
	W io.Writer
}

func (f *FileKeepRuleWriter) WriteKeepRules(t *restable.Table) error {
	bw := bufio.NewWriter(f.W)
	seen := map[string]bool{}
	var lines []string
	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			for _, e := range ty.Entries {
				key := string(ty.Tag) + "/" + e.Name
				if seen[key] {
					continue
				}
				seen[key] = true
				lines = append(lines, fmt.Sprintf("-keepclassmembers class **.R$%s {\n    public static final int %s;\n}",
					javaIdentifier(string(ty.Tag)), javaIdentifier(e.Name)))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		if _, err := fmt.Fprintln(bw, l); err != nil {
			return err
		}
	}
	return bw.Flush()
}

var (
	_ JavaSymbolWriter = (*FileJavaWriter)(nil)
	_ KeepRuleWriter   = (*FileKeepRuleWriter)(nil)
)
