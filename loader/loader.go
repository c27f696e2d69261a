// Package loader implements the file-system and archive collaborator the
// link pipeline treats as an external seam (spec §1): a uniform
// "file collection" iterator yielding opaque FileHandles, each with a
// source path and an optional byte range, over the CLI's input units
// (disk files, zip-family archives, and the .flat compiled-file
// container format). Bit-level decoding of what a handle's bytes mean
// is internal/decode's job, not this package's.
package loader

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/lib/fsext"
)

// Collection is the narrow contract the link pipeline consumes an input
// unit through: enumerate the FileHandles it contains, and read the
// exact bytes a given handle denotes.
type Collection interface {
	// Entries returns every FileHandle in the collection, in the order
	// they appear in the underlying unit.
	Entries() []restable.FileHandle
	// ReadFile returns the byte range h denotes.
	ReadFile(h restable.FileHandle) ([]byte, error)
}

// classify returns the input unit kind for path, by suffix, per spec §6
// ("Input unit file types, by suffix").
type unitKind int

const (
	unitTable unitKind = iota // .arsc.flat
	unitFlat                  // .flat
	unitZip                   // .flata .jar .jack .zip
	unitAPK                   // .apk (static library)
	unitDir                   // a plain directory, e.g. --output-to-dir's mirror on read
)

func classify(path string) unitKind {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".arsc.flat"):
		return unitTable
	case strings.HasSuffix(lower, ".flat"):
		return unitFlat
	case strings.HasSuffix(lower, ".flata"), strings.HasSuffix(lower, ".jar"),
		strings.HasSuffix(lower, ".jack"), strings.HasSuffix(lower, ".zip"):
		return unitZip
	case strings.HasSuffix(lower, ".apk"):
		return unitAPK
	default:
		return unitDir
	}
}

// IsStaticLibrary reports whether path names a static-library input unit
// (an .apk, per spec §6's "input unit file types" table).
func IsStaticLibrary(path string) bool {
	return classify(path) == unitAPK
}

// FindTableHandle returns the FileHandle inside col that holds the
// collection's serialized resource table: the collection's sole entry
// for a bare .arsc.flat unit, or the "resources.arsc.flat"-suffixed
// member of an archive (spec §6: ".apk → ... contains
// resources.arsc.flat at its root").
func FindTableHandle(col Collection) (restable.FileHandle, bool) {
	entries := col.Entries()
	if len(entries) == 1 {
		return entries[0], true
	}
	for _, h := range entries {
		if strings.HasSuffix(h.SourcePath, "resources.arsc.flat") || strings.HasSuffix(h.SourcePath, ".arsc.flat") {
			return h, true
		}
	}
	return restable.FileHandle{}, false
}

// Open inspects path on fs and returns the Collection that exposes its
// contents. A single compiled-table or compiled-file is wrapped as a
// one-entry collection so callers never special-case that.
func Open(fs fsext.Fs, path string) (Collection, error) {
	switch classify(path) {
	case unitTable:
		return &singleFileCollection{fs: fs, path: path}, nil
	case unitFlat:
		return openFlatContainer(fs, path)
	case unitZip, unitAPK:
		return openZipCollection(fs, path)
	default:
		if ok, _ := fsext.IsDir(fs, path); ok {
			return openDiskTree(fs, path)
		}
		return &singleFileCollection{fs: fs, path: path}, nil
	}
}

// singleFileCollection wraps one bare compiled unit (an .arsc.flat table
// or a standalone compiled file) as a one-entry Collection whose handle
// covers the whole file.
type singleFileCollection struct {
	fs   fsext.Fs
	path string
}

func (c *singleFileCollection) Entries() []restable.FileHandle {
	return []restable.FileHandle{{SourcePath: c.path}}
}

func (c *singleFileCollection) ReadFile(h restable.FileHandle) ([]byte, error) {
	b, err := fsext.ReadFile(c.fs, h.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("loader: read %q: %w", h.SourcePath, err)
	}
	if h.ByteLength == 0 {
		return b, nil
	}
	end := h.ByteOffset + h.ByteLength
	if h.ByteOffset < 0 || end > int64(len(b)) {
		return nil, fmt.Errorf("loader: byte range [%d:%d] out of bounds for %q (len %d)", h.ByteOffset, end, h.SourcePath, len(b))
	}
	return b[h.ByteOffset:end], nil
}

// diskCollection lists one directory tree as a Collection, used when a
// positional argument names a directory of loose compiled files rather
// than an archive.
type diskCollection struct {
	fs      fsext.Fs
	root    string
	entries []restable.FileHandle
}

func openDiskTree(fs fsext.Fs, root string) (*diskCollection, error) {
	infos, err := fsext.ReadDir(fs, root)
	if err != nil {
		return nil, fmt.Errorf("loader: read dir %q: %w", root, err)
	}
	c := &diskCollection{fs: fs, root: root}
	var names []string
	for _, fi := range infos {
		if !fi.IsDir() {
			names = append(names, fi.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		c.entries = append(c.entries, restable.FileHandle{SourcePath: filepath.Join(root, n)})
	}
	return c, nil
}

func (c *diskCollection) Entries() []restable.FileHandle { return c.entries }

func (c *diskCollection) ReadFile(h restable.FileHandle) ([]byte, error) {
	return fsext.ReadFile(c.fs, h.SourcePath)
}

// zipCollection exposes every member of a zip-family archive (.flata,
// .jar, .jack, .zip, .apk) as one FileHandle per member, source path
// "archivePath!memberPath" (matching the convention aapt2 itself uses
// for entries nested inside a container).
type zipCollection struct {
	archivePath string
	members     map[string][]byte
	entries     []restable.FileHandle
}

func openZipCollection(fsys fsext.Fs, path string) (*zipCollection, error) {
	data, err := fsext.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("loader: read archive %q: %w", path, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("loader: open archive %q: %w", path, err)
	}
	c := &zipCollection{archivePath: path, members: map[string][]byte{}}
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, "/") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("loader: open %q in %q: %w", f.Name, path, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("loader: read %q in %q: %w", f.Name, path, err)
		}
		source := path + "!" + f.Name
		c.members[source] = b
		c.entries = append(c.entries, restable.FileHandle{SourcePath: source, ByteLength: int64(len(b))})
	}
	return c, nil
}

func (c *zipCollection) Entries() []restable.FileHandle { return c.entries }

func (c *zipCollection) ReadFile(h restable.FileHandle) ([]byte, error) {
	b, ok := c.members[h.SourcePath]
	if !ok {
		return nil, fmt.Errorf("loader: %q not found in archive %q", h.SourcePath, c.archivePath)
	}
	if h.ByteLength == 0 {
		return b, nil
	}
	end := h.ByteOffset + h.ByteLength
	if h.ByteOffset < 0 || end > int64(len(b)) {
		return nil, fmt.Errorf("loader: byte range [%d:%d] out of bounds for %q (len %d)", h.ByteOffset, end, h.SourcePath, len(b))
	}
	return b[h.ByteOffset:end], nil
}

// flatCollection parses the .flat compiled-file container: a u32 entry
// count, that many {path-length-prefixed source path, uint64 offset,
// uint64 length} records, followed by the concatenated compiled-file
// payloads those offsets index into.
type flatCollection struct {
	containerPath string
	payload       []byte
	entries       []restable.FileHandle
}

func openFlatContainer(fsys fsext.Fs, path string) (*flatCollection, error) {
	data, err := fsext.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("loader: read %q: %w", path, err)
	}
	if len(data) < 4 {
		return nil, fmt.Errorf("loader: %q: truncated .flat container header", path)
	}
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("loader: %q: reading entry count: %w", path, err)
	}

	type rec struct {
		name   string
		offset uint64
		length uint64
	}
	recs := make([]rec, 0, count)
	for i := uint32(0); i < count; i++ {
		var nameLen uint32
		if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
			return nil, fmt.Errorf("loader: %q: entry %d: reading name length: %w", path, i, err)
		}
		nameBuf := make([]byte, nameLen)
		if _, err := io.ReadFull(r, nameBuf); err != nil {
			return nil, fmt.Errorf("loader: %q: entry %d: reading name: %w", path, i, err)
		}
		var offset, length uint64
		if err := binary.Read(r, binary.LittleEndian, &offset); err != nil {
			return nil, fmt.Errorf("loader: %q: entry %d: reading offset: %w", path, i, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return nil, fmt.Errorf("loader: %q: entry %d: reading length: %w", path, i, err)
		}
		recs = append(recs, rec{name: string(nameBuf), offset: offset, length: length})
	}

	headerLen := len(data) - r.Len()
	payload := data[headerLen:]

	c := &flatCollection{containerPath: path, payload: payload}
	for _, rc := range recs {
		source := path + "!" + rc.name
		c.entries = append(c.entries, restable.FileHandle{
			SourcePath: source,
			ByteOffset: int64(rc.offset),
			ByteLength: int64(rc.length),
		})
	}
	return c, nil
}

func (c *flatCollection) Entries() []restable.FileHandle { return c.entries }

func (c *flatCollection) ReadFile(h restable.FileHandle) ([]byte, error) {
	end := h.ByteOffset + h.ByteLength
	if h.ByteOffset < 0 || end > int64(len(c.payload)) {
		return nil, fmt.Errorf("loader: %q: byte range [%d:%d] out of bounds (payload %d bytes)",
			c.containerPath, h.ByteOffset, end, len(c.payload))
	}
	return c.payload[h.ByteOffset:end], nil
}

var (
	_ Collection = (*singleFileCollection)(nil)
	_ Collection = (*diskCollection)(nil)
	_ Collection = (*zipCollection)(nil)
	_ Collection = (*flatCollection)(nil)
)
