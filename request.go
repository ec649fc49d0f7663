package mirror

import "time"

// Request carries one save through the persistence pipeline.
// Middleware runs before encoding and may replace Value; the replaced value
// is what gets written and, if no newer local write arrived meanwhile, what
// the Monitor keeps in memory.
type Request[T any] struct {
	// Value is the snapshot being persisted.
	Value T

	// Revision is the local write count the snapshot was taken at.
	Revision uint64

	// Path is the absolute path of the target file.
	Path string

	// Data holds the encoded bytes once the encode stage has run.
	Data []byte

	// ModTime is the file's modification time after the write stage.
	ModTime time.Time
}
