// Package main is the entry point for the ionos-finops CLI.
package main

import (
	"os"

	"ionos-finops/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
