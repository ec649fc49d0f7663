package mirror

import (
	"sync"
	"time"
)

// Cloner is implemented by values that need a deep copy when handed out of
// the store. Without it, Value returns a plain Go copy, which shares any maps,
// slices or pointers with the stored value.
type Cloner[T any] interface {
	Clone() T
}

// store holds the mirrored value and the modification time of the file it
// was last reconciled with. Both are guarded by one mutex and always change
// together on reconcile. No method performs I/O.
type store[T any] struct {
	mu       sync.Mutex
	value    T
	modTime  time.Time
	hasMod   bool
	revision uint64
}

func newStore[T any](initial T) *store[T] {
	return &store[T]{value: clone(initial)}
}

// get returns a copy of the current value.
func (s *store[T]) get() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.value)
}

// snapshot returns a copy of the current value with its revision.
func (s *store[T]) snapshot() (T, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.value), s.revision
}

// setLocal replaces the value without touching the modification time and
// returns the new revision.
func (s *store[T]) setLocal(v T) uint64 {
	v = clone(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.revision++
	return s.revision
}

// reconcile records the file's modification time (ok false clears it) and
// replaces the value in the same critical section. The value is replaced
// only if no local write happened since rev was observed, so a load or save
// that raced a newer Set never rolls it back. It reports whether the value
// was replaced.
func (s *store[T]) reconcile(rev uint64, v T, modTime time.Time, ok bool) bool {
	v = clone(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modTime = modTime
	s.hasMod = ok
	if s.revision != rev {
		return false
	}
	s.value = v
	return true
}

// recordModTime records the modification time of a file this store's owner
// just wrote, leaving the value alone.
func (s *store[T]) recordModTime(modTime time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.modTime = modTime
	s.hasMod = true
}

// lastModified returns the recorded modification time, if any.
func (s *store[T]) lastModified() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modTime, s.hasMod
}

// currentRevision returns the number of local writes seen so far.
func (s *store[T]) currentRevision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

func clone[T any](v T) T {
	if c, ok := any(v).(Cloner[T]); ok {
		return c.Clone()
	}
	return v
}
