package productfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

func TestFilterKeepsRequestedProductOverDefault(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	e := tbl.FindOrCreateEntry("com.x", "string", "greeting")
	e.Values = []restable.ConfigValue{
		{Product: "", Value: restable.RawString{Value: "default-hello"}},
		{Product: "phablet", Value: restable.RawString{Value: "phablet-hello"}},
	}

	Filter(tbl, []string{"phablet"})

	require.Len(t, e.Values, 1)
	assert.Equal(t, "phablet", e.Values[0].Product)
}

func TestFilterFallsBackToDefaultWhenProductNotRequested(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	e := tbl.FindOrCreateEntry("com.x", "string", "greeting")
	e.Values = []restable.ConfigValue{
		{Product: "", Value: restable.RawString{Value: "default-hello"}},
		{Product: "phablet", Value: restable.RawString{Value: "phablet-hello"}},
	}

	Filter(tbl, []string{"tv"})

	require.Len(t, e.Values, 1)
	assert.Equal(t, "", e.Values[0].Product)
}

func TestFilterLeavesDistinctConfigsAlone(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	e := tbl.FindOrCreateEntry("com.x", "string", "greeting")
	e.Values = []restable.ConfigValue{
		{Config: restable.ConfigDescription{Locale: "en"}, Value: restable.RawString{Value: "en"}},
		{Config: restable.ConfigDescription{Locale: "fr"}, Value: restable.RawString{Value: "fr"}},
	}

	Filter(tbl, nil)

	assert.Len(t, e.Values, 2)
}
