// Command ejson formats, repairs, flattens and converts JSON data.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ejson:", err)
		os.Exit(1)
	}
}
