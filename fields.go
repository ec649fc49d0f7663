package mirror

import "github.com/zoobzio/capitan"

// Field keys for Monitor events.
var (
	// KeyPath is the absolute path of the mirrored file.
	KeyPath = capitan.NewStringKey("path")

	// KeyState is the current state of the Monitor.
	KeyState = capitan.NewStringKey("state")

	// KeyOldState is the previous state before a transition.
	KeyOldState = capitan.NewStringKey("old_state")

	// KeyNewState is the new state after a transition.
	KeyNewState = capitan.NewStringKey("new_state")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyInterval is the configured poll interval.
	KeyInterval = capitan.NewDurationKey("interval")

	// KeyModTime is the file modification time, RFC 3339 with nanoseconds.
	KeyModTime = capitan.NewStringKey("mod_time")

	// KeySize is the number of bytes read or written.
	KeySize = capitan.NewIntKey("size")

	// KeyContentType is the codec's MIME type.
	KeyContentType = capitan.NewStringKey("content_type")
)
