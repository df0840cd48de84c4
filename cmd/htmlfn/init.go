package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/htmlfn/internal/config"
	herrors "github.com/vango-dev/htmlfn/internal/errors"
)

const sampleTemplate = `title: Home
context:
  site: htmlfn
  links:
    - {href: /docs, label: Docs}
    - {href: /blog, label: Blog}
body:
  - tag: h1.title
    children: {path: site}
  - tag: ul
    children:
      each: links
      do:
        tag: li
        children:
          tag: a
          attrs:
            href: {path: entry.href}
          children: {path: entry.label}
`

func initCmd(opts *globalOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create htmlfn.json and a sample template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if config.Exists(opts.dir) && !force {
				return herrors.Newf(herrors.CategoryCLI, "htmlfn.json already exists in %s", opts.dir).
					WithSuggestion("Use --force to overwrite it")
			}

			cfg := config.New()
			path := filepath.Join(opts.dir, config.ConfigFileName)
			if err := cfg.SaveTo(path); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			success(w, "Created %s", path)

			templates := cfg.TemplatesPath()
			if err := os.MkdirAll(templates, 0o755); err != nil {
				return err
			}
			index := filepath.Join(templates, "index.yaml")
			if _, err := os.Stat(index); os.IsNotExist(err) {
				if err := os.WriteFile(index, []byte(sampleTemplate), 0o644); err != nil {
					return err
				}
				success(w, "Created %s", index)
			}

			info(w, "Run 'htmlfn render index' to try it")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing htmlfn.json")

	return cmd
}
