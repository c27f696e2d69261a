// Package decode declares the narrow seams the linker programs against
// for compiled-input decoding and output encoding (spec §1's "the
// compiled binary encoders/decoders... bit-level format is assumed
// existing and stable"). A production build would satisfy these with
// the real aapt2 binary codec; this package also ships a deterministic
// in-memory fake suitable for driving the pipeline's own tests.
package decode

import (
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

// CompiledTableDecoder turns a compiled resource-table FileHandle into
// the in-memory Table model.
type CompiledTableDecoder interface {
	DecodeTable(h restable.FileHandle) (*restable.Table, error)
}

// CompiledXMLDecoder turns a compiled-XML FileHandle into the document
// model.
type CompiledXMLDecoder interface {
	DecodeXML(h restable.FileHandle) (*xmlres.Document, error)
}

// XMLEncoder flattens a document back to its binary representation.
type XMLEncoder interface {
	EncodeXML(doc *xmlres.Document) ([]byte, error)
}

// TableEncoder flattens a Table to its binary representation
// (resources.arsc / resources.arsc.flat).
type TableEncoder interface {
	EncodeTable(t *restable.Table) ([]byte, error)
}
