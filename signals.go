package mirror

import "github.com/zoobzio/capitan"

// Monitor lifecycle signals.
var (
	// MonitorStarted is emitted when polling begins.
	MonitorStarted = capitan.NewSignal(
		"mirror.monitor.started",
		"Monitor polling started",
	)

	// MonitorStopped is emitted when the polling loop exits.
	MonitorStopped = capitan.NewSignal(
		"mirror.monitor.stopped",
		"Monitor polling stopped",
	)

	// MonitorStateChanged is emitted when a Monitor transitions between states.
	MonitorStateChanged = capitan.NewSignal(
		"mirror.monitor.state.changed",
		"Monitor state transition",
	)
)

// Load signals.
var (
	// FileLoaded is emitted when the file was decoded into the value.
	FileLoaded = capitan.NewSignal(
		"mirror.file.loaded",
		"File decoded into value",
	)

	// FileLoadSkipped is emitted when the file has not changed since the
	// recorded modification time.
	FileLoadSkipped = capitan.NewSignal(
		"mirror.file.load.skipped",
		"File unchanged since last load or save",
	)

	// FileMissing is emitted when a load finds no file.
	FileMissing = capitan.NewSignal(
		"mirror.file.missing",
		"File does not exist",
	)

	// FileLoadFailed is emitted when reading, decoding or validating fails.
	FileLoadFailed = capitan.NewSignal(
		"mirror.file.load.failed",
		"File load failed",
	)
)

// Save signals.
var (
	// FileSaved is emitted after the value was written to disk.
	FileSaved = capitan.NewSignal(
		"mirror.file.saved",
		"Value written to file",
	)

	// FileSaveFailed is emitted when encoding or writing fails.
	FileSaveFailed = capitan.NewSignal(
		"mirror.file.save.failed",
		"File save failed",
	)

	// ValueChanged is emitted after a local write replaced the value.
	ValueChanged = capitan.NewSignal(
		"mirror.value.changed",
		"Value set locally",
	)
)
