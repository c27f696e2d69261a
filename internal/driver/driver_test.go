package driver

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/decode"
	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/sideoutput"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

func strTable(pkg, typ, name, val string) *restable.Table {
	t := restable.New()
	sink := diag.NewSink()
	_, _ = restable.AddValue(t, sink, pkg, typ, name,
		restable.ConfigValue{Value: restable.RawString{Value: val}}, restable.PolicyError)
	return t
}

func manifestDoc(pkg string) *xmlres.Document {
	return &xmlres.Document{Root: &xmlres.Element{
		Name:       "manifest",
		Attributes: []xmlres.Attribute{{Name: "package", RawValue: pkg}},
	}}
}

func newTestDriver(fs afero.Fs) (*Driver, *decode.FakeCodec) {
	codec := decode.NewFakeCodec()
	return &Driver{
		FS:             fs,
		TableDecoder:   codec,
		XMLDecoder:     codec,
		XMLEncoder:     codec,
		TableEncoder:   codec,
		JavaWriter:     &sideoutput.FileJavaWriter{},
		KeepRuleWriter: &sideoutput.FileKeepRuleWriter{},
	}, codec
}

// End-to-end happy path: one input table merges straight through id
// assignment, reference linking, and versioning into a base package
// written to a directory output.
func TestLinkWritesBasePackage(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	d, codec := newTestDriver(fs)

	codec.RegisterXML("AndroidManifest.xml", manifestDoc("com.x"))
	codec.RegisterTable("base.arsc.flat", strTable("com.x", "string", "foo", "hello"))

	diags, err := d.Link(Options{
		Manifest:    "AndroidManifest.xml",
		OutPath:     "out",
		OutputToDir: true,
		Positional:  []string{"base.arsc.flat"},
	})
	require.NoError(t, err)
	assert.Empty(t, diags)

	ok, err := afero.Exists(fs, "out/AndroidManifest.xml")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = afero.Exists(fs, "out/resources.arsc")
	require.NoError(t, err)
	assert.True(t, ok)
}

// S1 from the spec carried all the way through the driver: an overlay
// value for an already-declared entry wins over the base value.
func TestLinkOverlayWinsEndToEnd(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	d, codec := newTestDriver(fs)

	codec.RegisterXML("AndroidManifest.xml", manifestDoc("com.x"))
	codec.RegisterTable("base.arsc.flat", strTable("com.x", "string", "foo", "hello"))
	codec.RegisterTable("overlay.arsc.flat", strTable("com.x", "string", "foo", "hi"))

	diags, err := d.Link(Options{
		Manifest:    "AndroidManifest.xml",
		OutPath:     "out",
		OutputToDir: true,
		Positional:  []string{"base.arsc.flat"},
		Overlays:    []string{"overlay.arsc.flat"},
	})
	require.NoError(t, err)
	assert.Empty(t, diags)
}

// B1 from the spec: an overlay introducing a brand-new entry without
// --auto-add-overlay is a merge conflict, surfaced as a diagnostic and a
// non-nil error, with no archive written.
func TestLinkOverlayNewEntryWithoutAutoAddFails(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	d, codec := newTestDriver(fs)

	codec.RegisterXML("AndroidManifest.xml", manifestDoc("com.x"))
	codec.RegisterTable("base.arsc.flat", strTable("com.x", "string", "foo", "hello"))
	codec.RegisterTable("overlay.arsc.flat", strTable("com.x", "string", "bar", "new"))

	diags, err := d.Link(Options{
		Manifest:    "AndroidManifest.xml",
		OutPath:     "out",
		OutputToDir: true,
		Positional:  []string{"base.arsc.flat"},
		Overlays:    []string{"overlay.arsc.flat"},
	})
	require.Error(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindMergeConflict, diags[0].Kind)

	ok, _ := afero.Exists(fs, "out/AndroidManifest.xml")
	assert.False(t, ok)
}

// A missing manifest is an input-IO diagnostic, reported rather than
// panicking through the rest of the pipeline.
func TestLinkMissingManifestFails(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	d, _ := newTestDriver(fs)

	diags, err := d.Link(Options{
		Manifest:   "AndroidManifest.xml",
		OutPath:    "out",
		Positional: []string{"base.arsc.flat"},
	})
	require.Error(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, diag.KindInputIO, diags[0].Kind)
}
