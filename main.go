// tabgroups edits the preferences that decide how browser tabs are grouped by domain
package main

import (
	"os"

	"github.com/tabgroups/tabgroups/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
