// Command mirror inspects and edits a mirrored settings file from the shell.
//
// Usage:
//
//	mirror get --file settings.json
//	mirror set --file settings.json theme dark
//	mirror watch --file settings.plist --interval 1s
//
// Every flag can also be set through the environment with a MIRROR_ prefix,
// for example MIRROR_FILE or MIRROR_LOG_LEVEL.
package main

import (
	"fmt"
	"os"

	"github.com/zoobzio/capitan"
)

func main() {
	err := newRootCommand().Execute()
	// Drain queued signal hooks so the last log lines are written.
	capitan.Shutdown()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
