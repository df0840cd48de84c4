package main

import (
	"github.com/spf13/cobra"

	"github.com/vango-dev/htmlfn/pkg/publish"
)

func publishCmd(opts *globalOptions) *cobra.Command {
	var (
		contextFile string
		bucket      string
		prefix      string
		page        bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "publish [templates...]",
		Short: "Render templates and upload them to S3",
		Long: `Render templates and upload the results to S3-compatible storage.

Every template is published when none are named. Each one is stored
as <prefix>/<name>.html. Credentials come from
HTMLFN_PUBLISH_ACCESS_KEY_ID / HTMLFN_PUBLISH_SECRET_ACCESS_KEY or the
standard AWS_* variables.

Examples:
  htmlfn publish --page
  htmlfn publish index about --bucket my-site --prefix v2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if bucket != "" {
				cfg.Publish.Bucket = bucket
			}
			if prefix != "" {
				cfg.Publish.Prefix = prefix
			}
			logger := newLogger(cfg, cmd.ErrOrStderr())

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

			pcfg := publish.Config{
				Bucket:          cfg.Publish.Bucket,
				Prefix:          cfg.Publish.Prefix,
				Region:          cfg.Publish.Region,
				Endpoint:        cfg.Publish.Endpoint,
				PathStyle:       cfg.Publish.PathStyle,
				AccessKeyID:     cfg.Publish.AccessKeyID,
				SecretAccessKey: cfg.Publish.SecretAccessKey,
				CacheControl:    cfg.Publish.CacheControl,
				Page:            page,
				Concurrency:     concurrency,
			}
			p := publish.New(publish.NewClient(pcfg), r, pcfg, logger)

			results, err := p.Publish(cmd.Context(), args, data)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, res := range results {
				info(w, "%s → s3://%s/%s (%d bytes)", res.Template, pcfg.Bucket, res.Key, res.Bytes)
			}
			success(w, "Published %d templates", len(results))
			return nil
		},
	}

	cmd.Flags().StringVarP(&contextFile, "context", "c", "", "YAML or JSON file with the render context")
	cmd.Flags().StringVar(&bucket, "bucket", "", "Destination bucket (default from htmlfn.json)")
	cmd.Flags().StringVar(&prefix, "prefix", "", "Object key prefix (default from htmlfn.json)")
	cmd.Flags().BoolVarP(&page, "page", "p", false, "Wrap every template in a full HTML document")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", publish.DefaultConcurrency, "Parallel uploads")

	return cmd
}
