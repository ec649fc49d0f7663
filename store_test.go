package mirror

import (
	"sync"
	"testing"
	"time"
)

type storeValue struct {
	Name  string
	Items []string
}

type cloningValue struct {
	Items []string
}

func (v cloningValue) Clone() cloningValue {
	return cloningValue{Items: append([]string(nil), v.Items...)}
}

func TestStore_InitialState(t *testing.T) {
	s := newStore(storeValue{Name: "default"})

	if got := s.get(); got.Name != "default" {
		t.Errorf("expected default value, got %+v", got)
	}
	if _, ok := s.lastModified(); ok {
		t.Error("expected no recorded modification time")
	}
	if rev := s.currentRevision(); rev != 0 {
		t.Errorf("expected revision 0, got %d", rev)
	}
}

func TestStore_SetLocalKeepsModTime(t *testing.T) {
	s := newStore(storeValue{})
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.reconcile(0, storeValue{Name: "loaded"}, when, true)

	rev := s.setLocal(storeValue{Name: "local"})

	if rev != 1 {
		t.Errorf("expected revision 1, got %d", rev)
	}
	if got := s.get(); got.Name != "local" {
		t.Errorf("expected local value, got %+v", got)
	}
	mod, ok := s.lastModified()
	if !ok || !mod.Equal(when) {
		t.Errorf("expected mod time %v to be kept, got %v (%v)", when, mod, ok)
	}
}

func TestStore_RecordModTimeKeepsValue(t *testing.T) {
	s := newStore(storeValue{Name: "default"})
	rev := s.setLocal(storeValue{Name: "local"})
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	s.recordModTime(when)

	if got := s.get(); got.Name != "local" {
		t.Errorf("expected local value kept, got %+v", got)
	}
	if s.currentRevision() != rev {
		t.Errorf("expected revision %d unchanged, got %d", rev, s.currentRevision())
	}
	mod, ok := s.lastModified()
	if !ok || !mod.Equal(when) {
		t.Errorf("expected mod time %v, got %v (%v)", when, mod, ok)
	}
}

func TestStore_ReconcileReplacesBoth(t *testing.T) {
	s := newStore(storeValue{Name: "default"})
	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if !s.reconcile(0, storeValue{Name: "file"}, when, true) {
		t.Fatal("expected reconcile to apply")
	}

	if got := s.get(); got.Name != "file" {
		t.Errorf("expected file value, got %+v", got)
	}
	mod, ok := s.lastModified()
	if !ok || !mod.Equal(when) {
		t.Errorf("expected mod time %v, got %v (%v)", when, mod, ok)
	}

	// Clearing the mod time.
	s.reconcile(0, storeValue{Name: "default"}, time.Time{}, false)
	if _, ok := s.lastModified(); ok {
		t.Error("expected mod time to be cleared")
	}
}

func TestStore_ReconcileSkipsValueAfterNewerSet(t *testing.T) {
	s := newStore(storeValue{})
	_, rev := s.snapshot()

	s.setLocal(storeValue{Name: "newer"})

	when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if s.reconcile(rev, storeValue{Name: "stale"}, when, true) {
		t.Error("expected reconcile to keep the newer local value")
	}
	if got := s.get(); got.Name != "newer" {
		t.Errorf("expected newer value, got %+v", got)
	}
	mod, ok := s.lastModified()
	if !ok || !mod.Equal(when) {
		t.Errorf("expected mod time recorded regardless, got %v (%v)", mod, ok)
	}
}

func TestStore_PlainCopySharesSlices(t *testing.T) {
	s := newStore(storeValue{Items: []string{"a"}})

	got := s.get()
	got.Items[0] = "changed"

	// Without Cloner the copy is shallow.
	if s.get().Items[0] != "changed" {
		t.Error("expected shallow copy for values without Clone")
	}
}

func TestStore_ClonerDeepCopies(t *testing.T) {
	initial := cloningValue{Items: []string{"a"}}
	s := newStore(initial)

	initial.Items[0] = "mutated-initial"
	got := s.get()
	got.Items[0] = "mutated-copy"

	if s.get().Items[0] != "a" {
		t.Errorf("expected stored value isolated from callers, got %v", s.get().Items)
	}

	in := cloningValue{Items: []string{"b"}}
	s.setLocal(in)
	in.Items[0] = "mutated-after-set"
	if s.get().Items[0] != "b" {
		t.Errorf("expected setLocal to clone its argument, got %v", s.get().Items)
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newStore(0)
	var wg sync.WaitGroup

	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.setLocal(i)
		}()
		go func() {
			defer wg.Done()
			_ = s.get()
			_, _ = s.lastModified()
		}()
	}
	wg.Wait()

	if rev := s.currentRevision(); rev != 50 {
		t.Errorf("expected 50 revisions, got %d", rev)
	}
}
