// Package main is the entry point for the jobqueue binary: cleanup,
// worker, and serve all live under one CLI.
package main

import (
	"os"

	"github.com/levuro/jobqueue/cmd/jobqueue/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
