package mirror

import (
	"context"

	"github.com/zoobzio/capitan"
)

// poll checks the file every interval until ctx is canceled. Load failures
// are recorded and reported but never end the loop, so a file caught
// mid-write by another program does not stop monitoring.
func (m *Monitor[T]) poll(ctx context.Context, generation uint64) {
	defer func() {
		m.mu.Lock()
		if m.running && m.generation == generation {
			// ctx was canceled by the caller rather than by Stop.
			m.running = false
			m.cancel()
			m.cancel = nil
		}
		m.mu.Unlock()

		capitan.Emit(context.WithoutCancel(ctx), MonitorStopped,
			KeyPath.Field(m.path),
			KeyState.Field(m.State().String()),
		)
	}()

	for {
		// A fresh timer each round; a fired fake clock timer is not re-armed
		// by Reset.
		timer := m.clock.NewTimer(m.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return

		case <-timer.C():
			if ctx.Err() != nil {
				return
			}
			_ = m.load(ctx) //nolint:errcheck // Reported via fail
		}
	}
}
