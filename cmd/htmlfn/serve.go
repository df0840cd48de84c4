package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/internal/watch"
	"github.com/vango-dev/htmlfn/pkg/render"
	"github.com/vango-dev/htmlfn/pkg/server"
	"github.com/vango-dev/htmlfn/pkg/tree"
)

func serveCmd(opts *globalOptions) *cobra.Command {
	var (
		addr     string
		watching bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve templates over HTTP",
		Long: `Serve every template over HTTP.

Routes:
  GET  /healthz          health check
  GET  /templates        template listing
  GET  /render/{name}    render with the query as context
  POST /render/{name}    render with a YAML or JSON body as context
  GET  /metrics          Prometheus metrics (server.metrics)
  GET  /preview/ws       live preview socket (server.preview)

With --watch, templates are reloaded when files in the templates
directory change and preview clients receive a reload message. A
reload that fails to parse keeps the previous templates.

Examples:
  htmlfn serve
  htmlfn serve --addr 127.0.0.1:3000 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if watching {
				cfg.Server.Watch = true
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			r, err := newRenderer(cfg, render.WithMetrics(render.NewMetrics(render.WithRegistry(registry))))
			if err != nil {
				return err
			}

			srv := server.New(r, server.Config{
				Addr:            cfg.Server.Addr,
				Metrics:         cfg.Server.Metrics,
				Gatherer:        registry,
				Preview:         cfg.Server.Preview,
				AllowedOrigins:  cfg.Server.AllowedOrigins,
				ShutdownTimeout: cfg.ShutdownTimeout(),
			}, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Server.Watch {
				go watchTemplates(ctx, cfg.TemplatesPath(), srv, logger)
			}

			logger.Info("serving templates", "templates", r.Set().Len(), "dir", cfg.TemplatesPath())
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from htmlfn.json)")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "Reload templates when they change")

	return cmd
}

// watchTemplates reloads the template set into srv whenever a template
// file under dir changes.
func watchTemplates(ctx context.Context, dir string, srv *server.Server, logger *slog.Logger) {
	w := watch.New(watch.Config{
		Paths:      []string{dir},
		Extensions: tree.Extensions,
	})
	w.OnChange(func(changes []watch.Change) {
		for _, c := range changes {
			logger.Debug("template changed", "path", c.Path, "op", c.Op.String())
		}
		set, err := tree.Load(dir)
		if err != nil {
			attrs := []any{"error", err}
			var he *herrors.Error
			if herrors.As(err, &he) {
				attrs = append(attrs, "code", he.Code)
				if he.Location != nil {
					attrs = append(attrs, "location", he.Location.String())
				}
			}
			logger.Error("template reload failed", attrs...)
			return
		}
		srv.Reload(set)
	})
	w.Start(ctx)
}
