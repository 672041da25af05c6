// Command prov-device registers a device with a provisioning service.
//
// Usage:
//
//	prov-device register [--force] [--event-log file.plog]
//	prov-device status [--json]
//	prov-device reset
//	prov-device version
//
// The bundled transport is the in-process simulator; its behavior is set in
// the simulator section of provisioning.yaml.
package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/mash-protocol/provisioning-go/internal/cli"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(cli.ExitPanic)
		}
	}()

	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCodeForError(err))
	}
}
