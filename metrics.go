package mirror

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on load, save and state events.
type MetricsProvider interface {
	// OnStateChange is called when the monitor transitions between states.
	OnStateChange(from, to State)

	// OnLoad is called after a successful load. Changed is false when the
	// file was missing or had not been modified since the last load or save.
	OnLoad(changed bool, duration time.Duration)

	// OnSave is called after the value was written to disk.
	OnSave(duration time.Duration)

	// OnFailure is called when a load or save fails.
	// Op is "load" or "save".
	OnFailure(op string, duration time.Duration)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnStateChange(_, _ State)            {}
func (NoOpMetricsProvider) OnLoad(_ bool, _ time.Duration)      {}
func (NoOpMetricsProvider) OnSave(_ time.Duration)              {}
func (NoOpMetricsProvider) OnFailure(_ string, _ time.Duration) {}
