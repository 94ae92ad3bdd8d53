// Command chromactl inspects and edits Chroma servers of any API generation
// from the terminal, directly or through a chroma-explorer relay.
package main

import (
	"fmt"
	"os"
)

func main() {
	root, err := newRootCmd()
	if err == nil {
		err = root.Execute()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
