// Package main provides the entry point for the logonlog CLI application.
package main

import (
	"os"

	"logonlog/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
