package archive

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// DirWriter is the directory backing (`--output-to-dir`): it ignores
// compression and alignment and writes each entry as a plain file.
type DirWriter struct {
	fs   afero.Fs
	root string
	path string
	buf  bytes.Buffer
}

// NewDirWriter returns a DirWriter rooted at root on fs.
func NewDirWriter(fs afero.Fs, root string) *DirWriter {
	return &DirWriter{fs: fs, root: root}
}

func (d *DirWriter) StartEntry(path string, _ EntryFlags) error {
	d.path = path
	d.buf.Reset()
	return nil
}

func (d *DirWriter) WriteEntry(b []byte) error {
	_, err := d.buf.Write(b)
	return err
}

func (d *DirWriter) FinishEntry() error {
	full := filepath.Join(d.root, d.path)
	if err := d.fs.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("archive: mkdir for %q: %w", d.path, err)
	}
	if err := afero.WriteFile(d.fs, full, d.buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("archive: write %q: %w", d.path, err)
	}
	d.path = ""
	d.buf.Reset()
	return nil
}

func (d *DirWriter) Close() error { return nil }

var _ Writer = (*DirWriter)(nil)
