// Command followupctl is the operator CLI of the follow-up backend.
package main

import (
	"os"
	_ "time/tzdata"

	"github.com/turtacn/followup-compliance/internal/interfaces/cli"
)

// Build-time variables injected via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
