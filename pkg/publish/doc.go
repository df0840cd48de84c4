// Package publish renders templates and uploads the results to
// S3-compatible object storage.
//
//	client := publish.NewClient(cfg)
//	p := publish.New(client, renderer, cfg, logger)
//	results, err := p.Publish(ctx, nil, data)
//
// Each template is stored under Prefix/<name>.html. Uploads run
// concurrently, bounded by Config.Concurrency; the first failure cancels
// the remaining uploads.
package publish
