// Command inkterm is the process entry point (SPEC_FULL.md §0): a
// cobra root command plus a run subcommand (start the terminal against
// a display backend) and a sessions subcommand (list the on-disk
// session registry).
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
