// Command dirsize reports the disk usage of the immediate children of a directory.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/dirsize/internal/cli"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
