package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/cacheflow"
	httpAdapter "github.com/aretw0/cacheflow/internal/adapters/http"
	"github.com/aretw0/cacheflow/internal/cli"
	"github.com/aretw0/cacheflow/pkg/log"
	"github.com/aretw0/cacheflow/pkg/observability"
	"github.com/aretw0/cacheflow/pkg/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the canvas HTTP server",
	Long: `Serves canvases over a JSON API with an SSE stream of derived connections and
Prometheus metrics. With --workflow a canvas is opened at startup.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}

		metrics := observability.NewMetrics()
		reg := prometheus.NewRegistry()
		if err := metrics.Register(reg); err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}

		sessions := session.NewManager(
			session.WithLogger(logger),
			session.WithCanvasOptions(
				cacheflow.WithLogger(logger),
				cacheflow.WithStreamBuffer(cfg.StreamBuffer),
				cacheflow.WithLifecycleHooks(observability.Combine(
					metrics.Hooks(),
					observability.LogHooks(logger),
				)),
			),
		)

		if path, _ := cmd.Flags().GetString("workflow"); path != "" {
			w, err := cli.LoadWorkflow(path)
			if err != nil {
				return err
			}
			id, _ := cmd.Flags().GetString("canvas")
			if _, _, err := sessions.Open(cmd.Context(), id, &w); err != nil {
				return err
			}
		}

		handler := httpAdapter.NewHandler(sessions,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetrics(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("cacheflow server listening", "address", srv.Addr, "metrics", cfg.MetricsPath)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(shutdown)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("shutdown started", "signal", sig.String())

			// SSE streams end once their canvas is closed.
			sessions.CloseAll()

			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", cfg.ShutdownTimeout, log.Error(err))
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			logger.Info("cacheflow server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "Host to bind (default from CACHEFLOW_HOST or 127.0.0.1)")
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (default from CACHEFLOW_PORT or 8080)")
	serveCmd.Flags().String("metrics-path", "", "Path of the Prometheus endpoint")
	serveCmd.Flags().String("workflow", "", "Workflow document (or \"demo\") to open at startup")
	serveCmd.Flags().String("canvas", "main", "Canvas id for --workflow")
}
