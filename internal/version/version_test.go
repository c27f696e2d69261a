package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/diag"
	"github.com/ABC-KANG/abc-res-link/internal/restable"
	"github.com/ABC-KANG/abc-res-link/internal/symbols"
	"github.com/ABC-KANG/abc-res-link/internal/xmlres"
)

func attrTableWithLevel(t *testing.T, name string, id uint16, level int) (*restable.Table, *symbols.Stack) {
	t.Helper()
	tbl := restable.New()
	pkgID := uint8(0x01)
	tbl.Packages = append(tbl.Packages, &restable.Package{Name: "android", ID: &pkgID})
	tyID := uint8(1)
	ty := &restable.Type{Tag: "attr", ID: &tyID}
	tbl.Packages[0].Types = append(tbl.Packages[0].Types, ty)
	ty.Entries = append(ty.Entries, &restable.Entry{Name: name, ID: &id, Visibility: restable.VisibilityPublic})

	stack := symbols.NewStack()
	src := symbols.NewTableSource(tbl, symbols.OriginPlatformInclude)
	stack.Prepend(src)
	// Patch IntroducedAt by wrapping with a source that injects it: the
	// TableSource itself has no notion of IntroducedAt, so a small static
	// source stands in for the platform attribute manifest here.
	stack.Prepend(staticLevelSource{id: restable.NewPackedID(0x01, 1, id), level: level})
	return tbl, stack
}

type staticLevelSource struct {
	id    restable.PackedID
	level int
}

func (s staticLevelSource) FindByName(symbols.ResourceName) (symbols.Record, bool) { return symbols.Record{}, false }
func (s staticLevelSource) FindByID(id restable.PackedID) (symbols.Record, bool) {
	if id == s.id {
		return symbols.Record{ID: id, IntroducedAt: s.level, Visibility: restable.VisibilityPublic}, true
	}
	return symbols.Record{}, false
}
func (s staticLevelSource) StartPass() {}
func (s staticLevelSource) EndPass()   {}

func TestTableVersionerSynthesizesVariant(t *testing.T) {
	t.Parallel()

	tbl, stack := attrTableWithLevel(t, "colorAccent", 1, 21)
	attrRef := restable.Reference{Package: "android", Type: "attr", Name: "colorAccent", State: restable.ReferenceResolved, ID: restable.NewPackedID(0x01, 1, 1)}

	e := tbl.FindOrCreateEntry("com.x", "style", "AppTheme")
	e.Values = append(e.Values, restable.ConfigValue{
		Value: restable.Style{Entries: []restable.StyleEntry{{Attr: attrRef, Value: restable.Primitive{Kind: restable.PrimitiveColor, Int: 0xff0000}}}},
	})

	v := NewTableVersioner(stack, 16)
	sink := diag.NewSink()
	require.NoError(t, v.Version(tbl, sink))

	assert.Len(t, e.Values, 2)
	var synthesized, original *restable.Style
	for i := range e.Values {
		cv := e.Values[i]
		style := cv.Value.(restable.Style)
		if cv.Config.PlatformLevel == 21 {
			synthesized = &style
		} else {
			original = &style
		}
	}
	require.NotNil(t, synthesized, "expected a synthesized v21 variant")
	require.NotNil(t, original, "expected the original ConfigValue to remain")
	assert.Len(t, synthesized.Entries, 1, "the v21 variant should retain colorAccent")
	assert.Empty(t, original.Entries, "the original should have colorAccent stripped (I5)")
}

func TestTableVersionerSkipsWhenBelowThreshold(t *testing.T) {
	t.Parallel()

	tbl, stack := attrTableWithLevel(t, "colorAccent", 1, 14)
	attrRef := restable.Reference{Package: "android", Type: "attr", Name: "colorAccent", State: restable.ReferenceResolved, ID: restable.NewPackedID(0x01, 1, 1)}

	e := tbl.FindOrCreateEntry("com.x", "style", "AppTheme")
	e.Values = append(e.Values, restable.ConfigValue{
		Value: restable.Style{Entries: []restable.StyleEntry{{Attr: attrRef}}},
	})

	v := NewTableVersioner(stack, 16)
	require.NoError(t, v.Version(tbl, diag.NewSink()))
	assert.Len(t, e.Values, 1)
}

func TestFileVersionerSynthesizesAboveThreshold(t *testing.T) {
	t.Parallel()

	fv := NewFileVersioner(14, false)
	doc := &xmlres.Document{Root: &xmlres.Element{Name: "LinearLayout"}}
	variants := fv.Version(doc, restable.ConfigDescription{}, map[int]bool{21: true, 10: true}, nil)
	require.Len(t, variants, 1)
	assert.Equal(t, 21, variants[0].Config.PlatformLevel)
	assert.NotSame(t, doc.Root, variants[0].Doc.Root)
}

func TestFileVersionerSkipsVectorsWhenOptedOut(t *testing.T) {
	t.Parallel()

	fv := NewFileVersioner(14, true)
	doc := &xmlres.Document{Root: &xmlres.Element{Name: "vector"}}
	variants := fv.Version(doc, restable.ConfigDescription{}, map[int]bool{21: true}, nil)
	assert.Empty(t, variants)
}

func TestFileVersionerHonorsExistingVariantVeto(t *testing.T) {
	t.Parallel()

	fv := NewFileVersioner(14, false)
	doc := &xmlres.Document{Root: &xmlres.Element{Name: "LinearLayout"}}
	variants := fv.Version(doc, restable.ConfigDescription{}, map[int]bool{21: true}, func(level int) bool { return level == 21 })
	assert.Empty(t, variants)
}

func TestCollapseKeepsHighestLevelBelowMinAndStripsQualifier(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	e := tbl.FindOrCreateEntry("com.x", "style", "AppTheme")
	e.Values = []restable.ConfigValue{
		{Config: restable.ConfigDescription{}},
		{Config: restable.ConfigDescription{PlatformLevel: 14}},
		{Config: restable.ConfigDescription{PlatformLevel: 21}},
	}

	Collapse(tbl, 16)

	require.Len(t, e.Values, 2)
	levels := map[int]bool{}
	for _, cv := range e.Values {
		levels[cv.Config.PlatformLevel] = true
	}
	assert.True(t, levels[0]) // the v14 variant collapsed into the baseline
	assert.True(t, levels[21])
}
