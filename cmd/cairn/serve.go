package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cairnlabs/cairn/internal/cli"
	"github.com/cairnlabs/cairn/internal/logging"
	httpadapter "github.com/cairnlabs/cairn/pkg/adapters/http"
	"github.com/cairnlabs/cairn/pkg/adapters/mcp"
	"github.com/cairnlabs/cairn/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP coaching server",
	Long: `Starts Cairn as a long-running server: the REST API on --port and
Prometheus metrics on --metrics-port. With --mcp, an MCP server (SSE
transport) runs alongside on --mcp-port.`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := optsFromFlags(cmd)
		port, _ := cmd.Flags().GetString("port")
		metricsPort, _ := cmd.Flags().GetString("metrics-port")
		withMCP, _ := cmd.Flags().GetBool("mcp")
		mcpPort, _ := cmd.Flags().GetInt("mcp-port")

		level := slog.LevelInfo
		if opts.Debug {
			level = slog.LevelDebug
		}
		logger := logging.NewJSON(level)

		stores, err := cli.NewStores(opts)
		if err != nil {
			fmt.Printf("Error building stores: %v\n", err)
			os.Exit(1)
		}
		defer stores.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		collector := observability.NewCollector(nil)

		engine, err := cli.NewEngine(ctx, opts, logger, stores.Docs, collector.Hooks())
		if err != nil {
			fmt.Printf("Error initializing engine: %v\n", err)
			os.Exit(1)
		}

		manager := stores.Manager(logger)
		handler := httpadapter.NewHandler(engine, manager,
			httpadapter.WithLogger(logger),
			httpadapter.WithDocumentStore(stores.Docs))

		api := &http.Server{Addr: ":" + port, Handler: handler}

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metrics := &http.Server{Addr: ":" + metricsPort, Handler: metricsMux}

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			logger.Info("api server listening", "addr", api.Addr)
			if err := api.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("api server: %w", err)
			}
			return nil
		})

		g.Go(func() error {
			logger.Info("metrics server listening", "addr", metrics.Addr)
			if err := metrics.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})

		if withMCP {
			srv := mcp.NewServer(engine, manager,
				mcp.WithDocumentStore(stores.Docs),
				mcp.WithLogger(logger))
			g.Go(func() error {
				logger.Info("mcp server listening", "port", mcpPort)
				if err := srv.ServeSSE(gctx, mcpPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("mcp server: %w", err)
				}
				return nil
			})
		}

		g.Go(func() error {
			<-gctx.Done()

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			logger.Info("shutting down")
			if err := api.Shutdown(shutdownCtx); err != nil {
				logger.Error("api shutdown incomplete", "err", err)
				api.Close()
			}
			if err := metrics.Shutdown(shutdownCtx); err != nil {
				metrics.Close()
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cairn server stopped gracefully")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port for the REST API")
	serveCmd.Flags().String("metrics-port", "9091", "Port for Prometheus metrics")
	serveCmd.Flags().Bool("mcp", false, "Also serve MCP over SSE")
	serveCmd.Flags().Int("mcp-port", 8090, "Port for the MCP SSE server (with --mcp)")
}
