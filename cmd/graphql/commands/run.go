package commands

import (
	"github.com/spf13/cobra"

	"github.com/wbrown/graphql-engine/internal/engine"
	"github.com/wbrown/graphql-engine/internal/resultfmt"
)

func newRunCommand() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a plan file and print the result",
		Example: `  # Run a plan against an in-memory store
  graphql run --plan plan.yaml

  # Run against a persisted badger database
  graphql run --db ./mydata --space default --plan plan.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, _, closeFn, err := openStorage(dbPath)
			if err != nil {
				return err
			}
			defer closeFn()

			root, err := loadPlan(planPath)
			if err != nil {
				return err
			}

			log := logger()
			eng := engine.New(st, cfg, log)
			q, execCtx, sched, err := eng.Prepare(space, root, outputVarsFor(root), nil)
			if err != nil {
				return err
			}
			registry.Register(q, planPath)

			res, runErr := eng.Run(q, execCtx, sched)
			registry.Finish(q.ExecID, runErr)
			if runErr != nil {
				return runErr
			}

			formatter := resultfmt.NewFormatter()
			cmd.Println(formatter.FormatResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to a plan.Node YAML file")
	cmd.MarkFlagRequired("plan")

	return cmd
}
