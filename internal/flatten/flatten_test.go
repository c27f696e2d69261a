package flatten

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/archive"
	"github.com/ABC-KANG/abc-res-link/internal/decode"
	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/merge"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
	"github.com/ABC-KANG/abc-res-link/internal/version"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

type fakeRawReader struct {
	content map[string][]byte
}

func (f fakeRawReader) ReadFile(h restable.FileHandle) ([]byte, error) {
	return f.content[h.SourcePath], nil
}

func newFlattener(t *testing.T, codec *decode.FakeCodec) *Flattener {
	t.Helper()
	stack := symbols.NewStack()
	return &Flattener{
		XMLDecoder: codec,
		XMLEncoder: codec,
		RawReader:  fakeRawReader{content: map[string][]byte{"res/drawable/icon.png": []byte("PNGDATA")}},
		Linker:     xmlres.NewLinker(stack, merge.NewMangler("com.x"), "com.x", diag.NewSink()),
		Versioner:  version.NewFileVersioner(14, false),
		NoCompressExt: map[string]bool{".png": true},
	}
}

func TestFlattenPassesThroughNonXMLVerbatim(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	e := tbl.FindOrCreateEntry("com.x", "drawable", "icon")
	e.Values = append(e.Values, restable.ConfigValue{
		Value: restable.FileReference{
			Handle:   restable.FileHandle{SourcePath: "res/drawable/icon.png"},
			DestPath: "res/drawable/icon.png",
		},
	})

	codec := decode.NewFakeCodec()
	f := newFlattener(t, codec)

	var buf bytes.Buffer
	zw := archive.NewZipWriter(&buf)
	sink := diag.NewSink()
	require.NoError(t, f.Flatten(tbl, sink, zw))
	require.NoError(t, zw.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, r.File, 1)
	assert.Equal(t, "res/drawable/icon.png", r.File[0].Name)
	assert.Equal(t, zip.Store, r.File[0].Method) // .png is in the no-compress set
}

func TestFlattenLinksAndEncodesXML(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	e := tbl.FindOrCreateEntry("com.x", "layout", "main")
	cv := restable.ConfigValue{
		Value: restable.FileReference{
			Handle:   restable.FileHandle{SourcePath: "res/layout/main.xml.flat"},
			DestPath: "res/layout/main.xml",
		},
	}
	e.Values = append(e.Values, cv)

	codec := decode.NewFakeCodec()
	codec.RegisterXML("res/layout/main.xml.flat", &xmlres.Document{Root: &xmlres.Element{Name: "LinearLayout"}})
	f := newFlattener(t, codec)

	var buf bytes.Buffer
	zw := archive.NewZipWriter(&buf)
	sink := diag.NewSink()
	require.NoError(t, f.Flatten(tbl, sink, zw))
	require.NoError(t, zw.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, r.File, 1)
	assert.Equal(t, "res/layout/main.xml", r.File[0].Name)
}
