// Package main provides the entry point for the NextRead terminal client.
package main

import (
	"fmt"
	"os"

	"github.com/nextreadapp/nextread-client/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "nextread: %v\n", err)
		os.Exit(1)
	}
}
