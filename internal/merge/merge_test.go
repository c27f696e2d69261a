package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

func strTable(pkg, typ, name, val string) *restable.Table {
	t := restable.New()
	sink := diag.NewSink()
	_, _ = restable.AddValue(t, sink, pkg, typ, name,
		restable.ConfigValue{Value: restable.RawString{Value: val}}, restable.PolicyError)
	return t
}

// S1 from the spec: one table declares @string/foo="hello" and one
// overlay declares @string/foo="hi"; the overlay wins.
func TestOverlayReplacesEarlierValue(t *testing.T) {
	t.Parallel()

	target := restable.New()
	sink := diag.NewSink()
	m := NewMerger(target, sink, "com.x")

	require.NoError(t, m.Merge(strTable("com.x", "string", "foo", "hello"), "base.arsc.flat"))
	require.NoError(t, m.MergeOverlay(strTable("com.x", "string", "foo", "hi"), "overlay.arsc.flat"))

	e := target.FindEntry("com.x", "string", "foo")
	require.Len(t, e.Values, 1)
	assert.Equal(t, "hi", e.Values[0].Value.(restable.RawString).Value)
	assert.False(t, sink.Failed())
}

// B1 from the spec.
func TestOverlayNewEntryWithoutAutoAddFails(t *testing.T) {
	t.Parallel()

	target := restable.New()
	sink := diag.NewSink()
	m := NewMerger(target, sink, "com.x")

	err := m.MergeOverlay(strTable("com.x", "string", "bar", "new"), "overlay.arsc.flat")
	require.Error(t, err)
	require.True(t, sink.Failed())
	require.Len(t, sink.All(), 1)
	assert.Equal(t, diag.KindMergeConflict, sink.All()[0].Kind)
}

func TestOverlayNewEntryWithAutoAddSucceeds(t *testing.T) {
	t.Parallel()

	target := restable.New()
	sink := diag.NewSink()
	m := NewMerger(target, sink, "com.x")
	m.AutoAddOverlay = true

	require.NoError(t, m.MergeOverlay(strTable("com.x", "string", "bar", "new"), "overlay.arsc.flat"))
	e := target.FindEntry("com.x", "string", "bar")
	require.NotNil(t, e)
}

func TestMergeDuplicateInCompilationPackageErrors(t *testing.T) {
	t.Parallel()

	target := restable.New()
	sink := diag.NewSink()
	m := NewMerger(target, sink, "com.x")

	require.NoError(t, m.Merge(strTable("com.x", "string", "foo", "hello"), "a.arsc.flat"))
	err := m.Merge(strTable("com.x", "string", "foo", "again"), "b.arsc.flat")
	require.Error(t, err)
}

// S4 from the spec: a static lib P's @P:string/msg is merged and mangled
// into the compilation package under --no-static-lib-packages.
func TestMergeAndMangleProducesMangledEntry(t *testing.T) {
	t.Parallel()

	target := restable.New()
	sink := diag.NewSink()
	m := NewMerger(target, sink, "com.x")

	lib := strTable("P", "string", "msg", "hi")
	require.NoError(t, m.MergeAndMangle("P", lib, "libP.apk"))

	e := target.FindEntry("com.x", "string", "P$msg")
	require.NotNil(t, e)
	assert.True(t, m.Mangler.IsExternal("P"))

	rewritten := m.Mangler.Rewrite(symbols.ResourceName{Package: "P", Type: "string", Name: "msg"})
	assert.Equal(t, symbols.ResourceName{Package: "com.x", Type: "string", Name: "P$msg"}, rewritten)
}
