package mirror

import (
	"errors"
	"testing"
)

func TestErrorRing_NilSafe(t *testing.T) {
	var r *errorRing

	r.push(errors.New("test"))
	r.reset()

	if r.snapshot() != nil {
		t.Error("expected nil from nil ring")
	}
}

func TestErrorRing_NonPositiveSize(t *testing.T) {
	if newErrorRing(0) != nil {
		t.Error("expected nil ring for size 0")
	}
	if newErrorRing(-1) != nil {
		t.Error("expected nil ring for negative size")
	}
}

func TestErrorRing_Empty(t *testing.T) {
	r := newErrorRing(3)
	if errs := r.snapshot(); errs != nil {
		t.Errorf("expected nil from empty ring, got %v", errs)
	}
}

func TestErrorRing_OldestFirst(t *testing.T) {
	r := newErrorRing(3)

	r.push(errors.New("error1"))
	r.push(errors.New("error2"))

	errs := r.snapshot()
	if len(errs) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(errs))
	}
	if errs[0].Error() != "error1" || errs[1].Error() != "error2" {
		t.Errorf("unexpected order: %v", errs)
	}
}

func TestErrorRing_WrapsAndEvictsOldest(t *testing.T) {
	r := newErrorRing(3)

	for _, msg := range []string{"error1", "error2", "error3", "error4", "error5"} {
		r.push(errors.New(msg))
	}

	errs := r.snapshot()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(errs))
	}
	want := []string{"error3", "error4", "error5"}
	for i, err := range errs {
		if err.Error() != want[i] {
			t.Errorf("errs[%d] = %q, want %q", i, err.Error(), want[i])
		}
	}
}

func TestErrorRing_Reset(t *testing.T) {
	r := newErrorRing(2)
	r.push(errors.New("error1"))
	r.push(errors.New("error2"))
	r.push(errors.New("error3"))

	r.reset()

	if errs := r.snapshot(); errs != nil {
		t.Errorf("expected nil after reset, got %v", errs)
	}

	r.push(errors.New("error4"))
	errs := r.snapshot()
	if len(errs) != 1 || errs[0].Error() != "error4" {
		t.Errorf("expected only error4 after reset, got %v", errs)
	}
}

func TestErrorRing_SnapshotIsCopy(t *testing.T) {
	r := newErrorRing(2)
	r.push(errors.New("error1"))

	errs := r.snapshot()
	errs[0] = errors.New("mutated")

	if got := r.snapshot()[0].Error(); got != "error1" {
		t.Errorf("snapshot aliased ring storage, got %q", got)
	}
}
