package loader

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestOpenClassifiesBySuffix(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/res.arsc.flat", []byte("table-bytes"), 0o644))

	col, err := Open(fs, "/res.arsc.flat")
	require.NoError(t, err)
	entries := col.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "/res.arsc.flat", entries[0].SourcePath)

	b, err := col.ReadFile(entries[0])
	require.NoError(t, err)
	require.Equal(t, "table-bytes", string(b))
}

func TestZipCollectionReadsMembers(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("res/layout/main.xml.flat")
	require.NoError(t, err)
	_, err = w.Write([]byte("xml-payload"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/lib.flata", buf.Bytes(), 0o644))

	col, err := Open(fs, "/lib.flata")
	require.NoError(t, err)
	entries := col.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "/lib.flata!res/layout/main.xml.flat", entries[0].SourcePath)

	b, err := col.ReadFile(entries[0])
	require.NoError(t, err)
	require.Equal(t, "xml-payload", string(b))
}

// writeFlatContainer builds a minimal .flat container: a u32 entry
// count, then per-entry {u32 name length, name bytes, u64 offset, u64
// length}, followed by the concatenated payloads.
func writeFlatContainer(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()

	names := make([]string, 0, len(entries))
	for n := range entries {
		names = append(names, n)
	}

	var payload bytes.Buffer
	offsets := make(map[string]uint64, len(entries))
	for _, n := range names {
		offsets[n] = uint64(payload.Len())
		payload.Write(entries[n])
	}

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(names))))
	for _, n := range names {
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint32(len(n))))
		buf.WriteString(n)
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, offsets[n]))
		require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(entries[n]))))
	}
	buf.Write(payload.Bytes())
	return buf.Bytes()
}

func TestFlatContainerByteRanges(t *testing.T) {
	t.Parallel()

	raw := writeFlatContainer(t, map[string][]byte{
		"res/values/strings.arsc.flat": []byte("strings-payload"),
		"res/layout/main.xml.flat":     []byte("layout-payload"),
	})

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/unit.flat", raw, 0o644))

	col, err := Open(fs, "/unit.flat")
	require.NoError(t, err)
	entries := col.Entries()
	require.Len(t, entries, 2)

	seen := map[string]string{}
	for _, h := range entries {
		b, err := col.ReadFile(h)
		require.NoError(t, err)
		seen[h.SourcePath] = string(b)
	}
	require.Equal(t, "strings-payload", seen["/unit.flat!res/values/strings.arsc.flat"])
	require.Equal(t, "layout-payload", seen["/unit.flat!res/layout/main.xml.flat"])
}
