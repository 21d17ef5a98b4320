// Command graphql is the query engine's CLI: run a plan file against a
// storage backend, explain a plan's operator DAG without executing it, or
// demonstrate cooperative query cancellation. Built as a cobra command tree.
package main

import (
	"fmt"
	"os"

	"github.com/wbrown/graphql-engine/cmd/graphql/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
