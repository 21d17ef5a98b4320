package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/wbrown/graphql-engine/internal/factory"
	"github.com/wbrown/graphql-engine/internal/scheduler"
)

func newExplainCommand() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print a plan's operator DAG without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			root, err := loadPlan(planPath)
			if err != nil {
				return err
			}

			log := logger()
			f := factory.New(cfg, log)
			if err := f.AnalyzePlanLifecycle(root); err != nil {
				return fmt.Errorf("plan rejected: %w", err)
			}
			execOp, err := f.CreateExecutor(root)
			if err != nil {
				return fmt.Errorf("failed to build operator DAG: %w", err)
			}

			sched := scheduler.NewSchedule(execOp, outputVarsFor(root))
			if err := sched.Validate(); err != nil {
				return fmt.Errorf("invalid operator DAG: %w", err)
			}
			sched.AnalyzeLifetime()

			ids := make([]int, 0, len(sched.Operators))
			for id := range sched.Operators {
				ids = append(ids, id)
			}
			sort.Ints(ids)

			cmd.Printf("root: %d\n\n", sched.RootID)
			for _, id := range ids {
				op := sched.Operators[id]
				dep := sched.Deps[id]
				tag := ""
				if t, ok := sched.TypeTag[id]; ok && t != scheduler.NodeNormal {
					tag = fmt.Sprintf(" [%v]", t)
				}
				cmd.Printf("#%-3d %-20s preds=%v%s\n", id, op.Name(), dep.Predecessors, tag)
			}

			cmd.Println()
			for name, lt := range sched.Lifetimes {
				cmd.Printf("var %-15s users=%d root=%v\n", name, lt.UserCount, lt.IsRootOutput)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to a plan.Node YAML file")
	cmd.MarkFlagRequired("plan")

	return cmd
}
