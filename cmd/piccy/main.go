// Package main provides the CLI entry point for piccy.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/ideamans/go-l10n"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint(l10n.T("Error:")), err)
		os.Exit(1)
	}
}
