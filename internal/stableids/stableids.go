// Package stableids implements the stable-id map file format: parsing
// for --stable-ids and serialization for --emit-ids.
package stableids

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/ids"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

// ParseError carries the line number of a malformed stable-id line.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Parse reads a stable-id file: one "pkg:type/name = 0xPPTTEEEE" entry
// per line, blank lines ignored.
func Parse(r io.Reader) (ids.StableMap, error) {
	out := make(ids.StableMap)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		name, id, err := parseLine(line)
		if err != nil {
			return nil, &ParseError{Line: lineNo, Msg: err.Error()}
		}
		out[name] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func parseLine(line string) (symbols.ResourceName, restable.PackedID, error) {
	eq := strings.IndexByte(line, '=')
	if eq < 0 {
		return symbols.ResourceName{}, 0, fmt.Errorf("missing '='")
	}
	left := strings.TrimSpace(line[:eq])
	right := strings.TrimSpace(line[eq+1:])

	colon := strings.IndexByte(left, ':')
	if colon < 0 {
		return symbols.ResourceName{}, 0, fmt.Errorf("missing ':' separating package from type/name")
	}
	pkg := left[:colon]
	rest := left[colon+1:]

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return symbols.ResourceName{}, 0, fmt.Errorf("missing '/' separating type from name")
	}
	typ := rest[:slash]
	name := rest[slash+1:]
	if pkg == "" || typ == "" || name == "" {
		return symbols.ResourceName{}, 0, fmt.Errorf("empty package, type, or name")
	}

	if !strings.HasPrefix(right, "0x") && !strings.HasPrefix(right, "0X") {
		return symbols.ResourceName{}, 0, fmt.Errorf("id must be a 0x-prefixed hex literal, got %q", right)
	}
	v, err := strconv.ParseUint(right[2:], 16, 32)
	if err != nil {
		return symbols.ResourceName{}, 0, fmt.Errorf("invalid hex id %q: %w", right, err)
	}

	return symbols.ResourceName{Package: pkg, Type: typ, Name: name}, restable.PackedID(v), nil
}

// Emit writes every assigned id in t to w, in the stable-id file format,
// sorted for determinism (round-trip property R1 only requires the
// *mapping* be preserved, but deterministic output makes diffs sane).
func Emit(t *restable.Table, w io.Writer) error {
	type row struct {
		name symbols.ResourceName
		id   restable.PackedID
	}
	var rows []row
	for _, pkg := range t.Packages {
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
				rows = append(rows, row{
					name: symbols.ResourceName{Package: pkg.Name, Type: string(ty.Tag), Name: e.Name},
					id:   restable.NewPackedID(*pkg.ID, *ty.ID, *e.ID),
				})
			}
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].name.Package != rows[j].name.Package {
			return rows[i].name.Package < rows[j].name.Package
		}
		if rows[i].name.Type != rows[j].name.Type {
			return rows[i].name.Type < rows[j].name.Type
		}
		return rows[i].name.Name < rows[j].name.Name
	})
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		if _, err := fmt.Fprintf(bw, "%s:%s/%s = 0x%08x\n", r.name.Package, r.name.Type, r.name.Name, uint32(r.id)); err != nil {
			return err
		}
	}
	return bw.Flush()
}
