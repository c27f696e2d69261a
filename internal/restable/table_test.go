package restable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
)

func TestFindOrCreateEntryIsIdempotent(t *testing.T) {
	t.Parallel()

	tbl := New()
	e1 := tbl.FindOrCreateEntry("com.x", "string", "foo")
	e2 := tbl.FindOrCreateEntry("com.x", "string", "foo")
	assert.Same(t, e1, e2)
	require.Len(t, tbl.Packages, 1)
	assert.Equal(t, "com.x", tbl.Packages[0].Name)
}

func TestAddValueErrorPolicyRejectsDuplicateConfig(t *testing.T) {
	t.Parallel()

	tbl := New()
	sink := diag.NewSink()
	cfg := ConfigDescription{}

	_, err := AddValue(tbl, sink, "com.x", "string", "foo",
		ConfigValue{Config: cfg, Value: RawString{Value: "hello"}, Source: Source{Path: "a.arsc.flat"}},
		PolicyError)
	require.NoError(t, err)

	_, err = AddValue(tbl, sink, "com.x", "string", "foo",
		ConfigValue{Config: cfg, Value: RawString{Value: "again"}, Source: Source{Path: "b.arsc.flat"}},
		PolicyError)
	require.Error(t, err)
	assert.True(t, sink.Failed())

	e := tbl.FindEntry("com.x", "string", "foo")
	require.Len(t, e.Values, 1)
	assert.Equal(t, "hello", e.Values[0].Value.(RawString).Value)
}

func TestAddValueOverlayReplacePolicyReplacesInPlace(t *testing.T) {
	t.Parallel()

	tbl := New()
	sink := diag.NewSink()
	cfg := ConfigDescription{}

	_, err := AddValue(tbl, sink, "com.x", "string", "foo",
		ConfigValue{Config: cfg, Value: RawString{Value: "hello"}}, PolicyError)
	require.NoError(t, err)

	_, err = AddValue(tbl, sink, "com.x", "string", "foo",
		ConfigValue{Config: cfg, Value: RawString{Value: "hi"}}, PolicyOverlayReplace)
	require.NoError(t, err)
	assert.False(t, sink.Failed())

	e := tbl.FindEntry("com.x", "string", "foo")
	require.Len(t, e.Values, 1)
	assert.Equal(t, "hi", e.Values[0].Value.(RawString).Value)
}

func TestSetVisibilityPublicUpgradeIsSticky(t *testing.T) {
	t.Parallel()

	tbl := New()
	tbl.SetVisibility("com.x", "string", "foo", VisibilityPublic)
	tbl.SetVisibility("com.x", "string", "foo", VisibilityPrivate)

	e := tbl.FindEntry("com.x", "string", "foo")
	assert.Equal(t, VisibilityPublic, e.Visibility)
}

func TestConfigDescriptionDiff(t *testing.T) {
	t.Parallel()

	a := ConfigDescription{Locale: "en", PlatformLevel: 14}
	b := ConfigDescription{Locale: "fr", PlatformLevel: 21}
	diffs := a.Diff(b)
	assert.Contains(t, diffs, QualifierLocale)
	assert.Contains(t, diffs, QualifierPlatformLvl)
	assert.NotContains(t, diffs, QualifierDensity)
}

func TestConfigDescriptionOrderingBySpecificityThenString(t *testing.T) {
	t.Parallel()

	def := ConfigDescription{}
	hdpi := ConfigDescription{Density: 240}
	enHdpi := ConfigDescription{Locale: "en", Density: 240}

	assert.True(t, def.Less(hdpi))
	assert.True(t, hdpi.Less(enHdpi))
	assert.False(t, enHdpi.Less(def))
}
