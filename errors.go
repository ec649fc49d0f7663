package mirror

import (
	"errors"
	"fmt"
)

var (
	errNoMarshal   = errors.New("codec has no marshal function")
	errNoUnmarshal = errors.New("codec has no unmarshal function")
)

// DecodeError is returned when the file's contents cannot be turned into a
// value. The previously mirrored value is left in place.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying codec or validation error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// EncodeError is returned when the current value cannot be serialized.
// The file is not touched.
type EncodeError struct {
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying codec error.
func (e *EncodeError) Unwrap() error {
	return e.Err
}

// FileSystemError wraps an I/O failure. Op names the failed step
// ("stat", "read", "mkdir", "write", ...).
type FileSystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileSystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying os error.
func (e *FileSystemError) Unwrap() error {
	return e.Err
}
