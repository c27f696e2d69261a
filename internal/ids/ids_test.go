package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
)

// S1 continuation: a single default-config entry gets id 0x7f:string:0x0000.
func TestAssignSimpleEntryGetsZeroIndex(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("com.x", "string", "foo")

	sink := diag.NewSink()
	require.NoError(t, Assign(tbl, sink, nil))

	pkg := tbl.FindPackage("com.x")
	require.NotNil(t, pkg.ID)
	assert.Equal(t, AppPackageID, *pkg.ID)

	e := tbl.FindEntry("com.x", "string", "foo")
	require.NotNil(t, e.ID)
	assert.Equal(t, uint16(0), *e.ID)
}

func TestAssignFrameworkPackageGetsID1(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("android", "attr", "colorAccent")

	sink := diag.NewSink()
	require.NoError(t, Assign(tbl, sink, nil))

	pkg := tbl.FindPackage("android")
	assert.Equal(t, FrameworkPackageID, *pkg.ID)
}

// S3 from the spec.
func TestAssignHonorsStableMapAndSkipsPinnedSlot(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("com.x", "string", "a")
	tbl.FindOrCreateEntry("com.x", "string", "b")

	stable := StableMap{
		symbols.ResourceName{Package: "com.x", Type: "string", Name: "a"}: restable.NewPackedID(0x7f, 0x02, 0x0001),
	}

	sink := diag.NewSink()
	require.NoError(t, Assign(tbl, sink, stable))

	a := tbl.FindEntry("com.x", "string", "a")
	b := tbl.FindEntry("com.x", "string", "b")
	require.NotNil(t, a.ID)
	require.NotNil(t, b.ID)
	assert.Equal(t, uint16(0x0001), *a.ID)
	assert.NotEqual(t, *a.ID, *b.ID)
}

func TestVerifyNoIDsSetFailsWhenIDsPresent(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("com.x", "string", "a")
	sink := diag.NewSink()
	require.NoError(t, Assign(tbl, sink, nil))

	sink2 := diag.NewSink()
	err := VerifyNoIDsSet(tbl, sink2)
	require.Error(t, err)
	assert.True(t, sink2.Failed())
}

func TestVerifyNoIDsSetPassesForFreshTable(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("com.x", "string", "a")
	sink := diag.NewSink()
	require.NoError(t, VerifyNoIDsSet(tbl, sink))
}
