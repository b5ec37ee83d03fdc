package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/cacheflow"
	"github.com/aretw0/cacheflow/internal/cli"
	"github.com/aretw0/cacheflow/pkg/adapters/mcp"
	cflog "github.com/aretw0/cacheflow/pkg/log"
	"github.com/aretw0/cacheflow/pkg/observability"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [workflow]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Opens a canvas on the workflow and exposes its edit and layout operations as MCP tools.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		w, err := cli.LoadWorkflow(workflowArg(args))
		if err != nil {
			return err
		}

		canvas := cacheflow.New(
			cacheflow.WithID("mcp"),
			cacheflow.WithWorkflow(w),
			cacheflow.WithLogger(logger),
			cacheflow.WithLifecycleHooks(observability.LogHooks(logger)),
		)
		srv := mcp.NewServer(canvas, mcp.WithLogger(logger))

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("starting cacheflow MCP server (stdio)")
			if err := srv.ServeStdio(); err != nil {
				logger.Error("MCP server execution failed", cflog.Error(err))
				return err
			}
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.ServeSSE(ctx, cfg.Addr(), cfg.ShutdownTimeout); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("MCP server execution failed", cflog.Error(err))
				return err
			}
			logger.Info("MCP server stopped gracefully")
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("host", "", "Host to bind (only for SSE)")
	mcpCmd.Flags().IntP("port", "p", 0, "Port to listen on (only for SSE)")
}
