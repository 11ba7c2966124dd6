// Package main is the entry point for the monoctl CLI.
package main

import (
	"os"

	"github.com/monoctl/monoctl/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
