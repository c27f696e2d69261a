package cmd

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandArgsInlinesArgFile(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "opts.txt", []byte("-o out.apk\n--manifest AndroidManifest.xml"), 0o644))

	out, err := expandArgs(fs, []string{"link", "@opts.txt", "a.arsc.flat"})
	require.NoError(t, err)
	assert.Equal(t, []string{"link", "-o", "out.apk", "--manifest", "AndroidManifest.xml", "a.arsc.flat"}, out)
}

func TestExpandArgsLeavesPlainArgsAlone(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	out, err := expandArgs(fs, []string{"-o", "out.apk"})
	require.NoError(t, err)
	assert.Equal(t, []string{"-o", "out.apk"}, out)
}

func TestExpandArgsMissingFile(t *testing.T) {
	t.Parallel()
	fs := afero.NewMemMapFs()
	_, err := expandArgs(fs, []string{"@missing.txt"})
	assert.Error(t, err)
}
