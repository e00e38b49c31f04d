package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/tsedit/pkg/mcp"
	"github.com/Sumatoshi-tech/tsedit/pkg/observability"
)

const (
	metricsPath              = "/metrics"
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

func (a *App) mcpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

Tools:
  - insert_import: add an import to inline TypeScript or JavaScript code
  - list_imports:  list the import declarations of inline code

With --metrics-addr (or telemetry.prometheus_addr) Prometheus metrics are
served on /metrics at that address.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.setup(observability.ModeMCP); err != nil {
				return err
			}

			red, err := observability.NewREDMetrics(a.providers.Meter)
			if err != nil {
				return err
			}

			if a.providers.MetricsHandler != nil {
				stop, serveErr := serveMetrics(a.metricsAddress(), a.providers.MetricsHandler, a.providers.Logger)
				if serveErr != nil {
					return serveErr
				}

				defer stop()
			}

			parses, err := a.parseCache()
			if err != nil {
				return err
			}

			srv := mcp.NewServer(mcp.ServerDeps{
				Logger:  a.providers.Logger,
				Metrics: red,
				Edits:   a.edits,
				Tracer:  a.providers.Tracer,
				Cache:   parses,
			})

			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9464)")

	return cmd
}

func (a *App) metricsAddress() string {
	if a.metricsAddr != "" {
		return a.metricsAddr
	}

	return a.cfg.Telemetry.PrometheusAddr
}

// serveMetrics listens on addr and serves handler on /metrics until the
// returned stop function is called.
func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) (func(), error) {
	listener, err := net.Listen("tcp", addr) //nolint:noctx // long-lived listener owned by the server
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, handler)

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	logger.Info("serving metrics", "addr", listener.Addr().String(), "path", metricsPath)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
			logger.Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}, nil
}
