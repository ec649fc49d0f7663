// Package testing provides test utilities and helpers for mirror monitors.
package testing

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zoobzio/mirror"
)

// Settings is a standard value type for testing monitors.
// It implements mirror.Validator with configurable validation behavior.
type Settings struct {
	Theme    string   `json:"theme" yaml:"theme" toml:"theme" plist:"theme" cbor:"theme"`
	FontSize int      `json:"font_size" yaml:"font_size" toml:"font_size" plist:"font_size" cbor:"font_size"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty" toml:"tags,omitempty" plist:"tags,omitempty" cbor:"tags,omitempty"`
}

// Validate implements mirror.Validator.
func (s Settings) Validate() error {
	if s.FontSize < 1 || s.FontSize > 96 {
		return fmt.Errorf("font size must be between 1 and 96, got %d", s.FontSize)
	}
	if s.Theme == "" {
		return errors.New("theme is required")
	}
	return nil
}

// WaitFor polls a condition until it returns true or timeout is reached.
// Returns true if the condition was met, false if timeout occurred.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return condition()
}

// WriteFileAt writes data to path and sets its modification time, so tests
// can order external writes without sleeping past filesystem timestamp
// granularity.
func WriteFileAt(t *testing.T, path string, data []byte, modTime time.Time) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatalf("failed to set mod time of %s: %v", path, err)
	}
}

// RequireModTime fails the test unless the file's modification time equals want.
func RequireModTime(t *testing.T, path string, want time.Time) {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("failed to stat %s: %v", path, err)
	}
	if !info.ModTime().Equal(want) {
		t.Fatalf("expected mod time %v, got %v", want, info.ModTime())
	}
}

// CountingCodec wraps a codec and counts calls in each direction.
type CountingCodec struct {
	Inner      mirror.Codec
	marshals   atomic.Int64
	unmarshals atomic.Int64
}

// NewCountingCodec wraps inner.
func NewCountingCodec(inner mirror.Codec) *CountingCodec {
	return &CountingCodec{Inner: inner}
}

// Marshal counts and delegates.
func (c *CountingCodec) Marshal(v any) ([]byte, error) {
	c.marshals.Add(1)
	return c.Inner.Marshal(v)
}

// Unmarshal counts and delegates.
func (c *CountingCodec) Unmarshal(data []byte, v any) error {
	c.unmarshals.Add(1)
	return c.Inner.Unmarshal(data, v)
}

// ContentType delegates.
func (c *CountingCodec) ContentType() string {
	return c.Inner.ContentType()
}

// Marshals returns the number of Marshal calls.
func (c *CountingCodec) Marshals() int64 {
	return c.marshals.Load()
}

// Unmarshals returns the number of Unmarshal calls.
func (c *CountingCodec) Unmarshals() int64 {
	return c.unmarshals.Load()
}

var _ mirror.Codec = (*CountingCodec)(nil)
