package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/cli"
	"github.com/aretw0/cacheflow/pkg/domain"
)

type connectionOutput struct {
	domain.ConnectionView
	Path string `json:"path"`
}

var connectionsCmd = &cobra.Command{
	Use:   "connections [workflow]",
	Short: "Print the drawable connections as JSON",
	Long: `Reports the layout document to a canvas holding the workflow and prints the
connections whose source and destination ports were both reported.`,
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
		layoutPath, _ := cmd.Flags().GetString("layout")

		ctx := cmd.Context()
		c := cacheflow.New(cacheflow.WithWorkflow(w), cacheflow.WithLogger(logger))
		if _, err := cli.ApplyLayouts(ctx, c, layoutPath, logger); err != nil {
			return err
		}

		views := c.Connections(ctx)
		out := make([]connectionOutput, len(views))
		for i, v := range views {
			out[i] = connectionOutput{ConnectionView: v, Path: v.Path()}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	rootCmd.AddCommand(connectionsCmd)
	connectionsCmd.Flags().String("layout", "", "Layout document with reported port positions")
	_ = connectionsCmd.MarkFlagRequired("layout")
}
