package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cacheflow/internal/cli"
)

var errDangling = errors.New("workflow has dangling connections")

var validateCmd = &cobra.Command{
	Use:   "validate [workflow]",
	Short: "Check a workflow for dangling connections",
	Long: `Parses the workflow document and lists connections whose source step is missing
or does not declare the output. With --strict any dangling connection fails the command.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := setup(cmd); err != nil {
			return err
		}
		w, err := cli.LoadWorkflow(workflowArg(args))
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		out := cmd.OutOrStdout()
		dangling := w.DanglingConnections()
		for _, d := range dangling {
			reason := "output not declared"
			if d.MissingStep {
				reason = "step missing"
			}
			fmt.Fprintf(out, "dangling: %s.%s[%d] <- %s.%s (%s)\n",
				d.StepID, d.InputName, d.Index, d.Connection.StepID, d.Connection.OutputName, reason)
		}

		if len(dangling) > 0 {
			if strict, _ := cmd.Flags().GetBool("strict"); strict {
				return fmt.Errorf("%w: %d", errDangling, len(dangling))
			}
			fmt.Fprintf(out, "Workflow parsed with %d dangling connections (%d steps)\n", len(dangling), w.Len())
			return nil
		}
		fmt.Fprintf(out, "Workflow is valid! ✅ (%d steps)\n", w.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "Fail when any connection is dangling")
}
