// Package flatten implements ResourceFileFlattener (spec 4.7): for every
// file-typed entry, either passes the raw payload through verbatim or
// runs the compiled-XML pipeline (link, file-level auto-version,
// optional namespace strip, binary-flatten), then emits every entry to
// the archive writer in deterministic order.
package flatten

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/archive"
	"github.com/ABC-KANG/abc-res-link/internal/decode"
	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/version"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

// RawFileReader reads the verbatim bytes of a non-XML file-typed entry.
type RawFileReader interface {
	ReadFile(h restable.FileHandle) ([]byte, error)
}

// Flattener holds every collaborator the flatten pass needs.
type Flattener struct {
	XMLDecoder decode.CompiledXMLDecoder
	XMLEncoder decode.XMLEncoder
	RawReader  RawFileReader
	Linker     *xmlres.Linker
	Versioner  *version.FileVersioner

	StripNamespaces bool
	CompressNothing bool
	NoCompressExt   map[string]bool // lowercase suffix, including the leading dot
}

type fifoItem struct {
	pkg, typeTag, name string
	cv                 restable.ConfigValue
}

type sortKey struct {
	cfg  restable.ConfigDescription
	name string
}

type output struct {
	destPath string
	bytes    []byte
}

// Flatten processes every file-typed entry in t, appending each to w in
// (config, entry-name) order. nonFileValue entries (anything not a
// FileReference) are ignored.
func (f *Flattener) Flatten(t *restable.Table, sink *diag.Sink, w archive.Writer) error {
	failed := false

	for _, pkg := range t.Packages {
		for _, ty := range pkg.Types {
			// Phase 1: snapshot this type's file-typed values. XML-like
			// entries go on a FIFO; everything else is flattened
			// immediately into the sorted map. Neither loop below mutates
			// ty.Entries or e.Values directly — synthesized variants are
			// appended through restable.AddValue, never through a live
			// iterator over this snapshot.
			var fifo []fifoItem
			sorted := map[sortKey]output{}

			for _, e := range ty.Entries {
				for _, cv := range e.Values {
					fr, ok := cv.Value.(restable.FileReference)
					if !ok {
						continue
					}
					if isXMLLike(fr, ty.Tag) {
						fifo = append(fifo, fifoItem{pkg: pkg.Name, typeTag: string(ty.Tag), name: e.Name, cv: cv})
						continue
					}
					b, err := f.RawReader.ReadFile(fr.Handle)
					if err != nil {
						sink.Error(diag.KindInputIO, diag.Source{Path: fr.Handle.SourcePath}, "%s", err.Error())
						failed = true
						continue
					}
					sorted[sortKey{cfg: cv.Config, name: e.Name}] = output{destPath: fr.DestPath, bytes: b}
				}
			}

			// Phase 2: drain the FIFO, pushing synthesized variants back
			// onto it until it's empty.
			for len(fifo) > 0 {
				item := fifo[0]
				fifo = fifo[1:]

				fr := item.cv.Value.(restable.FileReference)
				b, variants, err := f.linkAndVersionXMLFile(t, sink, item.pkg, item.typeTag, item.name, item.cv, fr)
				if err != nil {
					failed = true
					continue
				}
				sorted[sortKey{cfg: item.cv.Config, name: item.name}] = output{destPath: fr.DestPath, bytes: b}
				fifo = append(fifo, variants...)
			}

			// Phase 3: emit in sorted order.
			keys := make([]sortKey, 0, len(sorted))
			for k := range sorted {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool {
				if !keys[i].cfg.Equal(keys[j].cfg) {
					return keys[i].cfg.Less(keys[j].cfg)
				}
				return keys[i].name < keys[j].name
			})
			for _, k := range keys {
				out := sorted[k]
				if err := f.emit(w, out); err != nil {
					sink.Error(diag.KindOutputIO, diag.Source{Path: out.destPath}, "%s", err.Error())
					failed = true
				}
			}
		}
	}

	if failed {
		return fmt.Errorf("flattening failed")
	}
	return nil
}

// linkAndVersionXMLFile decodes, links, and optionally version-fans-out
// one compiled XML file, returning the flattened bytes for item's own
// config plus any synthesized variants (already registered back into
// the table per spec 4.7).
func (f *Flattener) linkAndVersionXMLFile(
	t *restable.Table, sink *diag.Sink,
	pkg, typeTag, name string,
	cv restable.ConfigValue, fr restable.FileReference,
) ([]byte, []fifoItem, error) {
	doc, err := f.XMLDecoder.DecodeXML(fr.Handle)
	if err != nil {
		sink.Error(diag.KindMalformedInput, diag.Source{Path: fr.Handle.SourcePath}, "%s", err.Error())
		return nil, nil, err
	}

	levels, err := f.Linker.LinkDocument(doc, pkg, restable.Source{Path: fr.Handle.SourcePath})
	if err != nil {
		return nil, nil, err
	}

	var synthesized []fifoItem
	if f.Versioner != nil {
		existingLevels := map[int]bool{}
		for _, other := range t.FindEntry(pkg, typeTag, name).Values {
			if other.Config.WithoutPlatformLevel().Equal(cv.Config.WithoutPlatformLevel()) {
				existingLevels[other.Config.PlatformLevel] = true
			}
		}
		variants := f.Versioner.Version(doc, cv.Config, levels, func(level int) bool { return existingLevels[level] })
		for _, v := range variants {
			variantFR := restable.FileReference{Handle: fr.Handle, DestPath: variantDestPath(fr.DestPath, typeTag, v.Config)}
			newCV := restable.ConfigValue{Config: v.Config, Product: cv.Product, Value: variantFR, Source: cv.Source}
			if _, err := restable.AddValue(t, sink, pkg, typeTag, name, newCV, restable.PolicyError); err != nil {
				continue
			}
			synthesized = append(synthesized, fifoItem{pkg: pkg, typeTag: typeTag, name: name, cv: newCV})
		}
	}

	if f.StripNamespaces {
		xmlres.StripNamespaces(doc)
	}

	b, err := f.XMLEncoder.EncodeXML(doc)
	if err != nil {
		sink.Error(diag.KindOutputIO, diag.Source{Path: fr.DestPath}, "%s", err.Error())
		return nil, nil, err
	}
	return b, synthesized, nil
}

func (f *Flattener) emit(w archive.Writer, out output) error {
	flags := archive.EntryFlags{
		Compress: f.shouldCompress(out.destPath),
		Align:    false,
	}
	if err := w.StartEntry(out.destPath, flags); err != nil {
		return err
	}
	if err := w.WriteEntry(out.bytes); err != nil {
		return err
	}
	return w.FinishEntry()
}

func (f *Flattener) shouldCompress(destPath string) bool {
	if f.CompressNothing {
		return false
	}
	ext := strings.ToLower(path.Ext(destPath))
	if f.NoCompressExt[ext] {
		return false
	}
	return true
}

func isXMLLike(fr restable.FileReference, typeTag restable.TypeTag) bool {
	if typeTag == restable.TypeRaw {
		return false
	}
	p := strings.ToLower(fr.Handle.SourcePath)
	return strings.HasSuffix(p, ".xml") || strings.HasSuffix(p, ".xml.flat")
}

// variantDestPath rewrites the qualifier segment of a destination path
// for a synthesized config variant, e.g. "res/layout/main.xml" with
// config "v21" becomes "res/layout-v21/main.xml".
func variantDestPath(orig, typeTag string, cfg restable.ConfigDescription) string {
	base := path.Base(orig)
	qualifiers := cfg.String()
	if qualifiers == "default" {
		return "res/" + typeTag + "/" + base
	}
	return "res/" + typeTag + "-" + qualifiers + "/" + base
}

// DefaultNoCompressExt is the built-in suffix set (spec 4.7's
// compression policy) that is always stored rather than deflated.
var DefaultNoCompressExt = buildNoCompressSet(
	".jpg", ".jpeg", ".png", ".gif", ".wav", ".mp2", ".mp3", ".ogg", ".aac",
	".mpg", ".mpeg", ".mid", ".midi", ".smf", ".jet", ".rtttl", ".imy", ".xmf",
	".mp4", ".m4a", ".m4v", ".3gp", ".3gpp", ".3g2", ".3gpp2", ".amr", ".awb",
	".wma", ".wmv", ".webm", ".mkv",
)

func buildNoCompressSet(exts ...string) map[string]bool {
	m := make(map[string]bool, len(exts))
	for _, e := range exts {
		m[e] = true
	}
	return m
}
