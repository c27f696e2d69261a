package decode

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

func init() {
	gob.Register(restable.Reference{})
	gob.Register(restable.Primitive{})
	gob.Register(restable.RawString{})
	gob.Register(restable.IDPlaceholder{})
	gob.Register(restable.AttrDef{})
	gob.Register(restable.Array{})
	gob.Register(restable.Style{})
	gob.Register(restable.PluralValue{})
	gob.Register(restable.FileReference{})
}

// FakeCodec is a deterministic in-memory stand-in for the real aapt2
// binary codec. Inputs are registered by source path ahead of time
// (there being no actual bit-level format behind this seam); outputs are
// serialized with encoding/gob rather than the real wire format. It
// satisfies every interface in this package.
type FakeCodec struct {
	tables map[string]*restable.Table
	docs   map[string]*xmlres.Document
}

// NewFakeCodec returns an empty FakeCodec.
func NewFakeCodec() *FakeCodec {
	return &FakeCodec{tables: map[string]*restable.Table{}, docs: map[string]*xmlres.Document{}}
}

// RegisterTable makes t available for a later DecodeTable(h) where
// h.SourcePath == path.
func (f *FakeCodec) RegisterTable(path string, t *restable.Table) {
	f.tables[path] = t
}

// RegisterXML makes d available for a later DecodeXML(h) where
// h.SourcePath == path.
func (f *FakeCodec) RegisterXML(path string, d *xmlres.Document) {
	f.docs[path] = d
}

func (f *FakeCodec) DecodeTable(h restable.FileHandle) (*restable.Table, error) {
	t, ok := f.tables[h.SourcePath]
	if !ok {
		return nil, fmt.Errorf("fake codec: no compiled table registered for %q", h.SourcePath)
	}
	return t, nil
}

func (f *FakeCodec) DecodeXML(h restable.FileHandle) (*xmlres.Document, error) {
	d, ok := f.docs[h.SourcePath]
	if !ok {
		return nil, fmt.Errorf("fake codec: no compiled xml registered for %q", h.SourcePath)
	}
	return d, nil
}

func (f *FakeCodec) EncodeXML(doc *xmlres.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(doc); err != nil {
		return nil, fmt.Errorf("fake codec: encode xml: %w", err)
	}
	return buf.Bytes(), nil
}

func (f *FakeCodec) EncodeTable(t *restable.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t); err != nil {
		return nil, fmt.Errorf("fake codec: encode table: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	_ CompiledTableDecoder = (*FakeCodec)(nil)
	_ CompiledXMLDecoder   = (*FakeCodec)(nil)
	_ XMLEncoder           = (*FakeCodec)(nil)
	_ TableEncoder         = (*FakeCodec)(nil)
)
