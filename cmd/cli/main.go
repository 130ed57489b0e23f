// Package main is the entry point for the resale-pricing CLI.
package main

import (
	"os"

	"resale-pricing/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
