package publish

import (
	"context"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/sync/errgroup"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/pkg/render"
)

// DefaultConcurrency is the default number of parallel uploads.
const DefaultConcurrency = 4

// Config configures the destination bucket.
type Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
	CacheControl    string

	// Page wraps every template in a full HTML document.
	Page bool

	// Concurrency bounds parallel uploads.
	Concurrency int
}

// Putter is the part of the S3 API the publisher uses.
type Putter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Result describes one uploaded template.
type Result struct {
	Template string
	Key      string
	Bytes    int
}

// NewClient creates an S3 client for cfg. Without static credentials in
// cfg the standard AWS_* environment variables are used.
func NewClient(cfg Config) *s3.Client {
	accessKey, secretKey, session := cfg.AccessKeyID, cfg.SecretAccessKey, ""
	if accessKey == "" {
		accessKey = os.Getenv("AWS_ACCESS_KEY_ID")
		secretKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
		session = os.Getenv("AWS_SESSION_TOKEN")
	}

	opts := []func(*s3.Options){
		func(o *s3.Options) {
			o.Region = cfg.Region
			o.Credentials = credentials.NewStaticCredentialsProvider(accessKey, secretKey, session)
		},
	}
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.PathStyle
		})
	}

	return s3.New(s3.Options{}, opts...)
}

// Publisher renders templates and uploads them.
type Publisher struct {
	client   Putter
	renderer *render.Renderer
	cfg      Config
	logger   *slog.Logger
}

// New creates a Publisher. A nil logger uses slog.Default.
func New(client Putter, renderer *render.Renderer, cfg Config, logger *slog.Logger) *Publisher {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		client:   client,
		renderer: renderer,
		cfg:      cfg,
		logger:   logger.With("component", "publish", "bucket", cfg.Bucket),
	}
}

// Key returns the object key for a template name.
func (p *Publisher) Key(name string) string {
	key := name + ".html"
	if prefix := strings.Trim(p.cfg.Prefix, "/"); prefix != "" {
		key = path.Join(prefix, key)
	}
	return key
}

// Publish renders and uploads the named templates, or every template
// when names is empty. data is the render context; nil falls back to the
// renderer and template defaults. Results are in the order of names.
func (p *Publisher) Publish(ctx context.Context, names []string, data any) ([]Result, error) {
	if p.cfg.Bucket == "" {
		return nil, herrors.New("H030", "*").
			WithDetail("No bucket is configured.").
			WithSuggestion("Set publish.bucket in htmlfn.json or HTMLFN_PUBLISH_BUCKET").
			Wrap(ErrInvalidConfig)
	}
	if len(names) == 0 {
		names = p.renderer.Set().Names()
	}

	results := make([]Result, len(names))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			res, err := p.publishOne(ctx, name, data)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (p *Publisher) publishOne(ctx context.Context, name string, data any) (Result, error) {
	body, err := p.renderOne(ctx, name, data)
	if err != nil {
		return Result{}, err
	}

	key := p.Key(name)
	input := &s3.PutObjectInput{
		Bucket:        aws.String(p.cfg.Bucket),
		Key:           aws.String(key),
		Body:          strings.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("text/html; charset=utf-8"),
	}
	if p.cfg.CacheControl != "" {
		input.CacheControl = aws.String(p.cfg.CacheControl)
	}

	if _, err := p.client.PutObject(ctx, input); err != nil {
		p.logger.Error("upload failed", "template", name, "key", key, "error", err)
		return Result{}, wrapS3Error(err, p.cfg.Bucket, key)
	}

	p.logger.Info("published", "template", name, "key", key, "bytes", len(body))
	return Result{Template: name, Key: key, Bytes: len(body)}, nil
}

func (p *Publisher) renderOne(ctx context.Context, name string, data any) (string, error) {
	if !p.cfg.Page {
		return p.renderer.RenderToString(ctx, name, data)
	}
	var buf strings.Builder
	if err := p.renderer.RenderPage(ctx, &buf, name, data, render.PageData{}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
