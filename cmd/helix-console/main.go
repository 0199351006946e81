// file: cmd/helix-console/main.go
package main

import (
	"os"

	"helix-console/internal/console"
	"helix-console/launcher"
)

func main() {
	root := launcher.NewCommand(console.New)
	root.Long = `helix-console serves the per-instance state transition errors recorded in
the cluster coordination store, with admin endpoints for health and metrics.`

	if err := root.Execute(); err != nil {
		// Cobra prints the error, so we just need to exit
		os.Exit(1)
	}
}
