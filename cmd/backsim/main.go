// Command backsim runs backlog propagation simulations from scenario files
// and inspects persisted runs.
package main

import (
	"fmt"
	"os"

	"github.com/strataops/backsim/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
