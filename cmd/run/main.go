// Command run loads a built-in template or a workflow file into a graph store,
// executes it against the engine, and prints the resulting trace.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "env file load failed:", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		printFailure(os.Stderr, err)
		os.Exit(1)
	}
}
