package archive

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZipWriterRoundTripsStoredAndDeflatedEntries(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := NewZipWriter(&buf)

	require.NoError(t, zw.StartEntry("AndroidManifest.xml", EntryFlags{}))
	require.NoError(t, zw.WriteEntry([]byte("manifest-bytes")))
	require.NoError(t, zw.FinishEntry())

	require.NoError(t, zw.StartEntry("res/drawable/foo.png", EntryFlags{Compress: true}))
	require.NoError(t, zw.WriteEntry([]byte("some-compressible-payload-some-compressible-payload")))
	require.NoError(t, zw.FinishEntry())

	require.NoError(t, zw.StartEntry("resources.arsc", EntryFlags{Align: true}))
	require.NoError(t, zw.WriteEntry([]byte("table-bytes")))
	require.NoError(t, zw.FinishEntry())

	require.NoError(t, zw.Close())

	r, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, r.File, 3)

	assert.Equal(t, "AndroidManifest.xml", r.File[0].Name)
	assert.Equal(t, zip.Store, r.File[0].Method)

	assert.Equal(t, zip.Deflate, r.File[1].Method)
	rc, err := r.File[1].Open()
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "some-compressible-payload-some-compressible-payload", string(got))
	require.NoError(t, rc.Close())

	tableOffset, err := r.File[2].DataOffset()
	require.NoError(t, err)
	assert.Equal(t, int64(0), tableOffset%4, "aligned entry's data must start on a 4-byte boundary")
}

func TestDirWriterWritesFilesIgnoringFlags(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	dw := NewDirWriter(fs, "/out")

	require.NoError(t, dw.StartEntry("res/layout/main.xml", EntryFlags{Compress: true, Align: true}))
	require.NoError(t, dw.WriteEntry([]byte("hello")))
	require.NoError(t, dw.FinishEntry())

	got, err := afero.ReadFile(fs, "/out/res/layout/main.xml")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}
