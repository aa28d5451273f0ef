// Package main provides sheetconv, a command-line front end to the editor
// core: inspect column types, check cells against them, and export filtered
// sheets without starting the server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
