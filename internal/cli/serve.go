package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kubetopo/pkg/observability"
	"github.com/matzehuels/kubetopo/pkg/observability/prom"
	"github.com/matzehuels/kubetopo/pkg/server"
)

const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command that runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
		maxBody int64
		flags   runFlags
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API over HTTP",
		Long: `Serve the layout API over HTTP.

Routes:
  POST /api/v1/layout   graph in, diagram out
  POST /api/v1/render   graph in, diagram and rendered artifacts out
  GET  /healthz         liveness probe
  GET  /metrics         Prometheus metrics (unless --metrics=false)

The layout flags set the defaults; a request can override them in its
"options" object. Point --cache at redis:// or mongodb:// to share layouts
between replicas.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, metrics, maxBody, &flags)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "listen address")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	cmd.Flags().Int64Var(&maxBody, "max-body", server.DefaultMaxBodyBytes, "maximum request body size in bytes")
	flags.register(cmd)

	return cmd
}

// runServe serves until ctx is done, then shuts down gracefully.
func (c *CLI) runServe(ctx context.Context, addr string, metrics bool, maxBody int64, flags *runFlags) error {
	logger := loggerFromContext(ctx)

	defaults, err := flags.options(nil)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := defaults.ValidateForLayout(); err != nil {
		return err
	}
	defaults.Logger = nil

	runner, err := c.newRunner(ctx, flags)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := []server.Option{
		server.WithLogger(logger),
		server.WithDefaults(defaults),
		server.WithMaxBodyBytes(maxBody),
	}
	if metrics {
		observability.Register(prom.New(prometheus.DefaultRegisterer))
		opts = append(opts, server.WithMetrics(nil))
	}

	srv, err := server.New(addr, runner, opts...)
	if err != nil {
		return err
	}

	printSuccess("Serving layout API")
	printKeyValue("address", srv.Addr())
	printKeyValue("primitive", defaults.Primitive)
	printKeyValue("metrics", fmt.Sprint(metrics))
	printNewline()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	printInfo("Server stopped")
	return nil
}
