package main

import (
	"fmt"
	"os"

	"symgraph/internal/errors"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps index errors to 2 so scripts can tell a missing index from
// a bad invocation.
func exitCode(err error) int {
	switch errors.CodeOf(err) {
	case errors.IndexMissing, errors.IndexUnavailable, errors.IndexLoadFailed:
		return 2
	default:
		return 1
	}
}
