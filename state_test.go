package mirror

import "testing"

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StatePending, "pending"},
		{StateSynced, "synced"},
		{StateMissing, "missing"},
		{StateDegraded, "degraded"},
		{State(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestState_Values(t *testing.T) {
	// Verify iota ordering
	if StatePending != 0 {
		t.Errorf("expected StatePending=0, got %d", StatePending)
	}
	if StateSynced != 1 {
		t.Errorf("expected StateSynced=1, got %d", StateSynced)
	}
	if StateMissing != 2 {
		t.Errorf("expected StateMissing=2, got %d", StateMissing)
	}
	if StateDegraded != 3 {
		t.Errorf("expected StateDegraded=3, got %d", StateDegraded)
	}
}
