package archive

import (
	"archive/zip"
	"fmt"
	"io"

	kflate "github.com/klauspost/compress/flate"
)

// alignExtraFieldID is the zip "Extra" field header id this writer uses
// to carry pure alignment padding, following the same convention
// Android's own zip aligner uses: an Extra block whose payload is just
// zero bytes, so unzip tools that don't understand it simply skip it.
const alignExtraFieldID = 0x0000

// countingWriter tracks the number of bytes written so far, needed to
// compute how much padding an aligned entry's Extra field requires
// (alignment is relative to the start of the archive, not the entry).
type countingWriter struct {
	w   io.Writer
	pos int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.pos += int64(n)
	return n, err
}

// ZipWriter is the container-archive backing: a thin façade over
// archive/zip, with klauspost/compress/flate registered as the deflate
// implementation (spec's DOMAIN STACK keeps archive/zip's framing but
// replaces its bundled compressor).
type ZipWriter struct {
	cw  *countingWriter
	zw  *zip.Writer
	cur io.Writer
}

// NewZipWriter returns a ZipWriter that appends entries to w.
func NewZipWriter(w io.Writer) *ZipWriter {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return kflate.NewWriter(out, kflate.DefaultCompression)
	})
	return &ZipWriter{cw: cw, zw: zw}
}

func (z *ZipWriter) StartEntry(path string, flags EntryFlags) error {
	method := zip.Store
	if flags.Compress {
		method = zip.Deflate
	}

	fh := &zip.FileHeader{
		Name:   path,
		Method: method,
	}
	if flags.Align {
		fh.Extra = alignmentPadding(z.cw.pos, path, 4)
	}

	w, err := z.zw.CreateHeader(fh)
	if err != nil {
		return fmt.Errorf("archive: start entry %q: %w", path, err)
	}
	z.cur = w
	return nil
}

func (z *ZipWriter) WriteEntry(b []byte) error {
	if z.cur == nil {
		return fmt.Errorf("archive: write entry called with no entry started")
	}
	_, err := z.cur.Write(b)
	return err
}

func (z *ZipWriter) FinishEntry() error {
	z.cur = nil
	return nil
}

func (z *ZipWriter) Close() error {
	return z.zw.Close()
}

// alignmentPadding returns an Extra-field block sized so that the local
// file header (30 fixed bytes + name + extra) ends on an `align`-byte
// boundary, measured from the current archive offset. This mirrors the
// padding-by-Extra-field approach zipalign uses instead of requiring a
// non-standard container format.
func alignmentPadding(offsetBeforeHeader int64, name string, align int) []byte {
	const localHeaderFixedSize = 30
	headerLen := int64(localHeaderFixedSize + len(name))
	// An Extra block costs 4 bytes of id+length plus its payload; solve
	// for a payload length p such that (offset+headerLen+4+p) % align == 0.
	for p := 0; p < align; p++ {
		if (offsetBeforeHeader+headerLen+4+int64(p))%int64(align) == 0 {
			return buildExtraField(p)
		}
	}
	return buildExtraField(0)
}

func buildExtraField(padLen int) []byte {
	out := make([]byte, 4+padLen)
	out[0] = byte(alignExtraFieldID)
	out[1] = byte(alignExtraFieldID >> 8)
	out[2] = byte(padLen)
	out[3] = byte(padLen >> 8)
	return out
}

var _ Writer = (*ZipWriter)(nil)
