// Command oscorectl derives OSCORE security contexts from a configuration
// file and round-trips sample CoAP messages through the protect/unprotect
// pipeline for manual inspection (§4.16). It never opens a socket - that
// is the demonstration CoAP server this module's spec explicitly excludes
// (§1 Non-goals).
package main

import (
	"os"

	"github.com/coapsec/oscore/cmd/oscorectl/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		commands.PrintErr("Error: %v", err)
		os.Exit(1)
	}
}
