// The main package for the plawfetch executable.
package main

import (
	"github.com/lawcorpus/plawfetch/cmd"
)

// main is the entry point of the application.
// It defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
