// Package main is the entry point for the inkhorn application.
package main

import (
	"os"

	"github.com/inkhorn/inkhorn/cmd/inkhorn/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
