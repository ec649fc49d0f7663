package mirror

// State describes how the in-memory value relates to the file on disk.
type State int32

const (
	// StatePending indicates nothing has been loaded or saved yet. The value
	// is the default passed to New, or a local write not yet persisted.
	StatePending State = iota

	// StateSynced indicates the value matches the file as of the last
	// recorded modification time.
	StateSynced

	// StateMissing indicates the file does not exist. The default value, or
	// an unsaved local write, is being served.
	StateMissing

	// StateDegraded indicates the last load or save failed. The last good
	// value remains in place and polling continues.
	StateDegraded
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSynced:
		return "synced"
	case StateMissing:
		return "missing"
	case StateDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}
