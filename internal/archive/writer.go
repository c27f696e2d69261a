// Package archive implements the archive writer façade (spec 4.9): a
// narrow start/write/finish entry API with two backings, a container
// archive (zip) and a plain directory, so the rest of the pipeline never
// has to know which one it is writing to.
package archive

// EntryFlags governs how one entry is stored.
type EntryFlags struct {
	// Compress requests deflate; false means stored (no compression).
	Compress bool
	// Align requests 4-byte alignment of the entry's payload within the
	// container (only meaningful for the zip backing; the directory
	// backing ignores it).
	Align bool
}

// Writer is the archive writer façade. Entries are written in three
// calls: StartEntry declares the path and flags, one or more WriteEntry
// calls stream the payload, and FinishEntry closes it out. Any call
// returning an error aborts the current entry; the driver is expected to
// stop and report a nonzero exit code (spec 4.9's failure semantics).
type Writer interface {
	StartEntry(path string, flags EntryFlags) error
	WriteEntry(b []byte) error
	FinishEntry() error
	// Close finalizes the archive (flushes the zip central directory; a
	// no-op for the directory backing).
	Close() error
}
