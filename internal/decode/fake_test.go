package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

func TestFakeCodecRoundTripsRegisteredTable(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("com.x", "string", "foo")

	codec := NewFakeCodec()
	codec.RegisterTable("res/values.arsc.flat", tbl)

	got, err := codec.DecodeTable(restable.FileHandle{SourcePath: "res/values.arsc.flat"})
	require.NoError(t, err)
	assert.Same(t, tbl, got)

	b, err := codec.EncodeTable(tbl)
	require.NoError(t, err)
	assert.NotEmpty(t, b)
}

func TestFakeCodecDecodeTableMissingIsError(t *testing.T) {
	t.Parallel()

	codec := NewFakeCodec()
	_, err := codec.DecodeTable(restable.FileHandle{SourcePath: "nope"})
	require.Error(t, err)
}

func TestFakeCodecEncodeXMLProducesBytes(t *testing.T) {
	t.Parallel()

	doc := &xmlres.Document{Root: &xmlres.Element{Name: "LinearLayout"}}
	codec := NewFakeCodec()
	b, err := codec.EncodeXML(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, b)

	codec.RegisterXML("res/layout/main.xml.flat", doc)
	got, err := codec.DecodeXML(restable.FileHandle{SourcePath: "res/layout/main.xml.flat"})
	require.NoError(t, err)
	assert.Equal(t, "LinearLayout", got.Root.Name)
}
