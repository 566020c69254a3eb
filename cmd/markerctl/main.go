// Command markerctl replays marker binding scenarios and inspects the
// binding configuration.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/drift-maps/cmd/markerctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
