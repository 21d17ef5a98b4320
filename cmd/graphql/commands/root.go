package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/wbrown/graphql-engine/internal/admin"
	"github.com/wbrown/graphql-engine/internal/config"
	"github.com/wbrown/graphql-engine/internal/obslog"
)

// Global flags, shared package-level persistent-flag variables every
// subcommand reads from.
var (
	dbPath     string
	configPath string
	space      string
	verbose    bool
)

// registry is process-wide so "kill" (a second invocation while "run" is in
// flight would require a long-lived server, out of scope for this demo CLI)
// can register and kill queries started within the same process.
var registry = admin.NewQueryRegistry()

func Execute() error {
	return newRootCommand().Execute()
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphql",
		Short: "Property-graph query execution engine",
		Long: `graphql runs operator-DAG query plans against a graph storage backend:
vertex/edge scans, traversal, joins, and aggregation, matching the ~45
operator kinds described for this engine.`,
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "badger database directory (empty uses an in-memory store)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "engine config YAML path (empty uses defaults)")
	root.PersistentFlags().StringVar(&space, "space", "default", "graph space to operate on")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")

	root.AddCommand(newRunCommand())
	root.AddCommand(newExplainCommand())
	root.AddCommand(newKillCommand())

	return root
}

func loadConfig() (config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	return config.Load(configPath)
}

func logger() zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return obslog.New(level)
}
