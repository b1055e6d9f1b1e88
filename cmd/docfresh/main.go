package main

import (
	"fmt"
	"os"

	"docfresh/internal/audit"
	"docfresh/internal/cli"
)

// Populated via -ldflags at release time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cli.SetBuildInfo(version, commit, date)
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "docfresh: %v\n", err)
		os.Exit(audit.ExitCode(err))
	}
}
