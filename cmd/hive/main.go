// Package main provides the entry point for the hive CLI.
package main

import (
	"context"
	"os"

	"github.com/hiveworks/hive/internal/cli"
)

// Build information, set at build time via ldflags.
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	ctx := context.Background()
	info := cli.BuildInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(ctx, info); err != nil {
		os.Exit(1)
	}
}
