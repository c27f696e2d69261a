package privatize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABC-KANG/abc-res-link/internal/restable"
)

func TestMoveRelocatesMarkedPrivateAttrs(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("com.x", "attr", "^private_internalFlag")
	tbl.FindOrCreateEntry("com.x", "attr", "publicFlag")

	NewMover().Move(tbl)

	pub := tbl.FindEntry("com.x", "attr", "publicFlag")
	require.NotNil(t, pub)

	moved := tbl.FindEntry("com.x", string(restable.TypePrivAttr), "internalFlag")
	require.NotNil(t, moved)
	assert.Equal(t, restable.VisibilityPrivate, moved.Visibility)
	assert.Nil(t, tbl.FindEntry("com.x", "attr", "^private_internalFlag"))
}

func TestMoveLeavesNonAttrEntriesUntouched(t *testing.T) {
	t.Parallel()

	tbl := restable.New()
	tbl.FindOrCreateEntry("com.internal", "string", "secret")

	NewMover().Move(tbl)

	e := tbl.FindEntry("com.internal", "string", "secret")
	require.NotNil(t, e)
	assert.Equal(t, restable.VisibilityUndefined, e.Visibility)
}
