// Package main provides the flatcheck command line tool: it replays scene
// files through the flat check pipeline locally or against a running server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
