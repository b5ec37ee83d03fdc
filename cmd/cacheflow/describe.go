package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cacheflow/internal/cli"
	"github.com/aretw0/cacheflow/internal/presentation/graph"
	"github.com/aretw0/cacheflow/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe [workflow]",
	Short: "Summarise a workflow as markdown",
	Long:  `Prints each step with its component, inputs and outputs. Rendered with glamour on a terminal.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, _, err := setup(cmd); err != nil {
			return err
		}
		w, err := cli.LoadWorkflow(workflowArg(args))
		if err != nil {
			return err
		}

		render := tui.RendererFor(cmd.OutOrStdout())
		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			render = tui.Plain
		}
		out, err := render(graph.GenerateMarkdown(w))
		if err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown without terminal styling")
}
