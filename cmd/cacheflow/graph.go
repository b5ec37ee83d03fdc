package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/cli"
	"github.com/aretw0/cacheflow/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [workflow]",
	Short: "Export the workflow as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph LR) of the workflow steps and their connections.
With --layout, connections whose ports are both laid out are drawn thick.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		w, err := cli.LoadWorkflow(workflowArg(args))
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if layoutPath, _ := cmd.Flags().GetString("layout"); layoutPath != "" {
			ctx := cmd.Context()
			c := cacheflow.New(cacheflow.WithWorkflow(w), cacheflow.WithLogger(logger))
			if _, err := cli.ApplyLayouts(ctx, c, layoutPath, logger); err != nil {
				return err
			}
			overlay = &graph.Overlay{Visible: c.Connections(ctx)}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(w, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("layout", "", "Layout document with reported port positions")
}
