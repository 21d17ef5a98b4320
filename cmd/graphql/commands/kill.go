package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/wbrown/graphql-engine/internal/engine"
)

func newKillCommand() *cobra.Command {
	var planPath string
	var after time.Duration

	cmd := &cobra.Command{
		Use:   "kill",
		Short: "Run a plan and kill it after a delay, demonstrating cooperative cancellation",
		Long: `kill starts executing a plan in the background, then sets its cooperative
kill flag after the given delay — the same flag a long-running scan or the
scheduler's between-batch check observes on its next poll. Useful for
exercising a plan with a Loop or a large Expand step-limit against
cancellation.`,
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

			done := make(chan error, 1)
			go func() {
				_, runErr := eng.Run(q, execCtx, sched)
				registry.Finish(q.ExecID, runErr)
				done <- runErr
			}()

			select {
			case <-time.After(after):
				registry.Kill(q.ExecID)
				cmd.Printf("sent kill to %s after %s\n", q.ExecID, after)
				runErr := <-done
				if runErr != nil {
					cmd.Printf("query ended with error (as expected after kill): %v\n", runErr)
				} else {
					cmd.Println("query completed before the kill flag was observed")
				}
			case runErr := <-done:
				if runErr != nil {
					cmd.Printf("query finished with error before the kill delay elapsed: %v\n", runErr)
				} else {
					cmd.Println("query completed before the kill delay elapsed")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planPath, "plan", "", "path to a plan.Node YAML file")
	cmd.Flags().DurationVar(&after, "after", 10*time.Millisecond, "delay before sending the kill signal")
	cmd.MarkFlagRequired("plan")

	return cmd
}
