package mirror

import (
	"testing"
	"time"
)

func TestNoOpMetricsProvider_DoesNotPanic(_ *testing.T) {
	var m NoOpMetricsProvider

	// These should not panic
	m.OnStateChange(StatePending, StateSynced)
	m.OnLoad(true, 100*time.Millisecond)
	m.OnSave(50 * time.Millisecond)
	m.OnFailure("save", 50*time.Millisecond)
}

// Ensure NoOpMetricsProvider implements MetricsProvider.
var _ MetricsProvider = NoOpMetricsProvider{}
