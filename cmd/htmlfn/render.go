package main

import (
	"bytes"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/htmlfn/pkg/render"
)

func renderCmd(opts *globalOptions) *cobra.Command {
	var (
		contextFile string
		out         string
		page        bool
		title       string
	)

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template once",
		Long: `Render a template to standard output or a file.

The render context comes from --context, falling back to the context
file in htmlfn.json and then to the template's own context.

Examples:
  htmlfn render index
  htmlfn render blog/post --context post.yaml
  htmlfn render index --page --out public/index.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			r, err := newRenderer(cfg)
			if err != nil {
				return err
			}

			var data any
			if contextFile != "" {
				if data, err = loadContext(contextFile); err != nil {
					return err
				}
			}

			if out == "" {
				return renderTo(cmd, r, cmd.OutOrStdout(), args[0], data, page, title)
			}

			// The file is only touched once the render succeeded.
			var buf bytes.Buffer
			if err := renderTo(cmd, r, &buf, args[0], data, page, title); err != nil {
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return err
			}
			success(cmd.ErrOrStderr(), "Rendered %s to %s", args[0], out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "YAML or JSON file with the render context")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write output to a file instead of stdout")
	cmd.Flags().BoolVarP(&page, "page", "p", false, "Wrap the output in a full HTML document")
	cmd.Flags().StringVar(&title, "title", "", "Page title (with --page; default from the template)")

	return cmd
}

func renderTo(cmd *cobra.Command, r *render.Renderer, w io.Writer, name string, data any, page bool, title string) error {
	if page {
		return r.RenderPage(cmd.Context(), w, name, data, render.PageData{Title: title})
	}
	return r.RenderToWriter(cmd.Context(), w, name, data)
}
