// Package mirror keeps an in-memory value synchronized with a file on disk.
//
// The core type is Monitor, which holds a typed value, persists local writes
// to the file automatically, and polls the file to pick up external edits.
//
// # Monitor
//
// A Monitor mirrors one file:
//
//	Set → Store → Save pipeline (encode → atomic write) → File
//	File → Poller (stat → read → decode → validate) → Store → OnChange
//
// Local writes are visible immediately and saved in the background.
// External edits are detected by comparing the file's modification time
// with the one recorded at the last load or save; the file is re-read only
// when it is strictly newer.
//
// # Files
//
// Constructing a Monitor performs no I/O. A missing file is not an error:
// the default value is served until the first save creates it, along with
// any missing parent directories. An existing file that cannot be decoded is
// a hard error at Start and Reload, and is never replaced with the default.
// Saves go through a temporary file and a rename, so readers never observe
// a partial write.
//
// # State Machine
//
// Monitor maintains one of four states:
//
//   - Pending: nothing loaded or saved yet
//   - Synced: value matches the file
//   - Missing: no file, default or unsaved value served
//   - Degraded: last load or save failed, previous value still active
//
// # Codecs
//
// The Codec interface abstracts the file format. Built-in codecs:
//
//   - JSONCodec: pretty-printed, key-sorted JSON (default)
//   - PlistCodec: binary property list
//   - YAMLCodec, TOMLCodec, CBORCodec
//
// # Example
//
//	type Settings struct {
//	    Theme    string `json:"theme"`
//	    FontSize int    `json:"font_size"`
//	}
//
//	m := mirror.New("/home/me/.config/app/settings.json", Settings{Theme: "light", FontSize: 12}).
//	    OnChange(func(s Settings) { ui.Apply(s) }).
//	    OnError(func(err error) { log.Printf("settings: %v", err) })
//
//	if err := m.Start(ctx); err != nil {
//	    log.Fatalf("settings file is invalid: %v", err)
//	}
//	defer m.Stop()
//
//	s := m.Value()
//	s.Theme = "dark"
//	m.Set(s) // saved in the background
package mirror

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// DefaultInterval is the default wait between checks for external changes.
const DefaultInterval = 500 * time.Millisecond

const (
	opLoad = "load"
	opSave = "save"
)

// Monitor mirrors a single file into a value of type T.
type Monitor[T any] struct {
	path             string
	defaults         T
	store            *store[T]
	pipeline         pipz.Chainable[*Request[T]]
	interval         time.Duration
	clock            clockz.Clock
	codec            Codec
	metrics          MetricsProvider
	onChange         func(T)
	onError          func(error)
	fileMode         os.FileMode
	structValidation bool

	state        atomic.Int32
	lastError    atomic.Pointer[error]
	errorHistory *errorRing

	// mu guards the poller lifecycle.
	mu         sync.Mutex
	running    bool
	cancel     context.CancelFunc
	generation uint64

	// writeMu serializes saves with each other and with loads.
	writeMu sync.Mutex

	// fileMu is held by the write stage while it touches the file.
	fileMu sync.Mutex

	// saveMu guards the background saver.
	saveMu   sync.Mutex
	dirty    bool
	saving   bool
	saveDone chan struct{}
}

// New creates a Monitor for the file at path. The path is made absolute;
// nothing is read or written until Start, Reload, Save or Set.
//
// Pipeline options (With*) configure the save pipeline. Instance
// configuration uses chainable methods before calling Start().
//
// Example:
//
//	m := mirror.New("state.plist", State{},
//	    mirror.WithBackoff[State](3, 50*time.Millisecond),
//	).Codec(mirror.PlistCodec{}).Interval(time.Second)
func New[T any](path string, defaultValue T, opts ...Option[T]) *Monitor[T] {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	} else {
		path = filepath.Clean(path)
	}

	m := &Monitor[T]{
		path:         path,
		defaults:     clone(defaultValue),
		store:        newStore(defaultValue),
		interval:     DefaultInterval,
		clock:        clockz.RealClock,
		codec:        JSONCodec{},
		fileMode:     DefaultFileMode,
		errorHistory: newErrorRing(0),
	}
	m.pipeline = m.newSavePipeline(opts)
	m.state.Store(int32(StatePending))

	return m
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Codec sets the codec for the file.
// Default: JSONCodec. Must be called before Start().
func (m *Monitor[T]) Codec(codec Codec) *Monitor[T] {
	m.codec = codec
	return m
}

// Interval sets the wait between checks for external changes.
// Non-positive values are ignored. Default: 500ms. Must be called before Start().
func (m *Monitor[T]) Interval(d time.Duration) *Monitor[T] {
	if d > 0 {
		m.interval = d
	}
	return m
}

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic polling tests.
// Must be called before Start().
func (m *Monitor[T]) Clock(clock clockz.Clock) *Monitor[T] {
	m.clock = clock
	return m
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Start().
func (m *Monitor[T]) Metrics(provider MetricsProvider) *Monitor[T] {
	m.metrics = provider
	return m
}

// OnChange sets a callback invoked with the new value after every local Set
// and after every load that replaced the value. It runs on the goroutine
// that made the change and must not block for long. During Start it runs
// with the lifecycle lock held, so it must not call Start, Stop or
// IsMonitoring.
func (m *Monitor[T]) OnChange(fn func(T)) *Monitor[T] {
	m.onChange = fn
	return m
}

// OnError sets a callback invoked for every failed load or save, including
// background polls and saves triggered by Set.
func (m *Monitor[T]) OnError(fn func(error)) *Monitor[T] {
	m.onError = fn
	return m
}

// ErrorHistorySize sets the number of recent errors to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Start().
func (m *Monitor[T]) ErrorHistorySize(n int) *Monitor[T] {
	m.errorHistory = newErrorRing(n)
	return m
}

// FileMode sets the permission bits of the saved file.
// Default: 0644. Must be called before Start().
func (m *Monitor[T]) FileMode(mode os.FileMode) *Monitor[T] {
	m.fileMode = mode
	return m
}

// StructValidation enables go-playground/validator struct tag validation of
// loaded values, in addition to the Validator interface.
// Must be called before Start().
func (m *Monitor[T]) StructValidation() *Monitor[T] {
	m.structValidation = true
	return m
}

// -----------------------------------------------------------------------------
// Accessors
// -----------------------------------------------------------------------------

// Path returns the absolute path of the mirrored file.
func (m *Monitor[T]) Path() string {
	return m.path
}

// Value returns a copy of the current value. It never touches the file.
func (m *Monitor[T]) Value() T {
	return m.store.get()
}

// LastModified returns the file modification time recorded at the last
// successful load or save, and false if there has been none.
func (m *Monitor[T]) LastModified() (time.Time, bool) {
	return m.store.lastModified()
}

// IsMonitoring reports whether the poller is running.
func (m *Monitor[T]) IsMonitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// State returns the current state of the Monitor.
func (m *Monitor[T]) State() State {
	return State(m.state.Load())
}

// LastError returns the last error encountered, or nil if the last load or
// save succeeded.
func (m *Monitor[T]) LastError() error {
	ptr := m.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recent error history, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (m *Monitor[T]) ErrorHistory() []error {
	return m.errorHistory.snapshot()
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// Start loads the file once and then polls it for external changes every
// interval until Stop is called or ctx is canceled.
//
// A missing file is not an error. If the file exists but cannot be read or
// decoded, Start returns the error (*DecodeError or *FileSystemError), the
// value is left unchanged and polling is not started.
//
// Calling Start while already monitoring is a no-op.
func (m *Monitor[T]) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	if err := m.load(ctx); err != nil {
		return err
	}

	pollCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true
	m.generation++

	capitan.Emit(ctx, MonitorStarted,
		KeyPath.Field(m.path),
		KeyInterval.Field(m.interval),
	)

	go m.poll(pollCtx, m.generation)
	return nil
}

// Stop cancels polling. It returns without waiting for an in-flight check to
// finish and is safe to call at any time, including before Start. Pending
// background saves are not canceled; use Flush to wait for them.
func (m *Monitor[T]) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.cancel()
	m.cancel = nil
	m.running = false
}

// Set replaces the value. The new value is visible to Value immediately;
// writing it to disk happens in the background. Save failures are reported
// through OnError, LastError and FileSaveFailed, never to the caller.
func (m *Monitor[T]) Set(v T) {
	m.store.setLocal(v)
	capitan.Emit(context.Background(), ValueChanged, KeyPath.Field(m.path))
	m.notify(v)
	m.scheduleSave()
}

// Reload reads the file now, regardless of polling. It is a no-op if the
// file has not been modified since the last load or save.
func (m *Monitor[T]) Reload(ctx context.Context) error {
	return m.load(ctx)
}

// Save writes the current value to disk now and returns any failure, which
// is also reported through OnError.
func (m *Monitor[T]) Save(ctx context.Context) error {
	return m.save(ctx)
}

// Flush waits until background saves triggered by Set have finished, or
// until ctx is done.
func (m *Monitor[T]) Flush(ctx context.Context) error {
	for {
		m.saveMu.Lock()
		if !m.saving {
			m.saveMu.Unlock()
			return nil
		}
		done := m.saveDone
		m.saveMu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// scheduleSave marks the value dirty and starts the background saver if it
// is not already running. Writes arriving while a save is in flight are
// coalesced into one follow-up save of the newest value.
func (m *Monitor[T]) scheduleSave() {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.dirty = true
	if m.saving {
		return
	}
	m.saving = true
	m.saveDone = make(chan struct{})
	go m.drainSaves()
}

func (m *Monitor[T]) drainSaves() {
	for {
		m.saveMu.Lock()
		if !m.dirty {
			m.saving = false
			close(m.saveDone)
			m.saveMu.Unlock()
			return
		}
		m.dirty = false
		m.saveMu.Unlock()

		_ = m.save(context.Background()) //nolint:errcheck // Reported via fail
	}
}

// -----------------------------------------------------------------------------
// Bookkeeping
// -----------------------------------------------------------------------------

// fail records a load or save failure and returns err.
func (m *Monitor[T]) fail(ctx context.Context, op string, err error, start time.Time) error {
	e := err
	m.lastError.Store(&e)
	m.errorHistory.push(err)
	m.transition(ctx, StateDegraded)

	signal := FileLoadFailed
	if op == opSave {
		signal = FileSaveFailed
	}
	capitan.Emit(ctx, signal,
		KeyPath.Field(m.path),
		KeyError.Field(err.Error()),
	)
	if m.metrics != nil {
		m.metrics.OnFailure(op, m.clock.Since(start))
	}
	if m.onError != nil {
		m.onError(err)
	}
	return err
}

// succeed clears the error record after a load or save that reached the file.
func (m *Monitor[T]) succeed(ctx context.Context) {
	m.lastError.Store(nil)
	m.errorHistory.reset()
	m.transition(ctx, StateSynced)
}

// transition updates the state and emits a state change event if changed.
func (m *Monitor[T]) transition(ctx context.Context, newState State) {
	oldState := State(m.state.Swap(int32(newState)))
	if oldState == newState {
		return
	}
	capitan.Emit(ctx, MonitorStateChanged,
		KeyPath.Field(m.path),
		KeyOldState.Field(oldState.String()),
		KeyNewState.Field(newState.String()),
	)
	if m.metrics != nil {
		m.metrics.OnStateChange(oldState, newState)
	}
}

func (m *Monitor[T]) notify(v T) {
	if m.onChange != nil {
		m.onChange(clone(v))
	}
}
