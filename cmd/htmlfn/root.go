package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/htmlfn/internal/config"
	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/pkg/render"
	"github.com/vango-dev/htmlfn/pkg/tree"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	dir       string
	logLevel  string
	logFormat string
	noColor   bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "htmlfn",
		Short: "Render HTML from composable template documents",
		Long: `htmlfn renders HTML from template documents written in YAML or JSON.

A template document describes an element tree with data paths,
iteration, scoping and conditionals. htmlfn can render a template
once, serve every template over HTTP with a live preview socket,
or publish rendered pages to S3-compatible storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if opts.noColor {
				herrors.DisableColors()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.dir, "dir", "C", ".", "Project directory containing htmlfn.json")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from htmlfn.json)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (default from htmlfn.json)")
	flags.BoolVar(&opts.noColor, "no-color", false, "Disable colored error output")

	cmd.AddCommand(
		renderCmd(opts),
		serveCmd(opts),
		publishCmd(opts),
		listCmd(opts),
		benchCmd(opts),
		initCmd(opts),
		versionCmd(),
	)

	return cmd
}

// loadConfig reads htmlfn.json from the project directory, applies flag
// overrides and validates the result.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadOrDefault(o.dir)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if o.logFormat != "" {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log settings.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(w, handlerOpts))
}

// newRenderer loads the template set and the default context named by cfg.
func newRenderer(cfg *config.Config, opts ...render.Option) (*render.Renderer, error) {
	set, err := tree.Load(cfg.TemplatesPath())
	if err != nil {
		return nil, err
	}

	var data any
	if path := cfg.ContextPath(); path != "" {
		if data, err = loadContext(path); err != nil {
			return nil, err
		}
	}

	return render.NewRenderer(set, render.RendererConfig{
		DefaultContext: data,
		Lang:           cfg.Lang,
		StyleSheets:    cfg.StyleSheets,
	}, opts...), nil
}

// loadContext reads a YAML or JSON render context.
func loadContext(path string) (any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, herrors.New("H050").WithDetail(err.Error()).Wrap(err)
	}

	var data any
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, herrors.New("H050").
			WithDetail(path + ": " + err.Error()).
			WithSuggestion("Check that the context file is valid YAML or JSON").
			Wrap(err)
	}
	return data, nil
}
