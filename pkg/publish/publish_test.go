package publish

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	herrors "github.com/vango-dev/htmlfn/internal/errors"
	"github.com/vango-dev/htmlfn/pkg/markup"
	"github.com/vango-dev/htmlfn/pkg/render"
	"github.com/vango-dev/htmlfn/pkg/tree"
)

// memoryBucket is an in-memory PutObject fake.
type memoryBucket struct {
	mu      sync.Mutex
	objects map[string]string
	inputs  []*s3.PutObjectInput
	err     error
}

func (b *memoryBucket) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if b.err != nil {
		return nil, b.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.objects == nil {
		b.objects = make(map[string]string)
	}
	b.objects[aws.ToString(in.Key)] = string(data)
	b.inputs = append(b.inputs, in)
	return &s3.PutObjectOutput{}, nil
}

func newRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	docs := map[string]string{
		"index":     "title: Home\nbody: {tag: h1, children: {path: site}}",
		"blog/post": "body: {tag: article, children: post}",
		"broken":    "body: {path: obj}",
	}
	var templates []*tree.Template
	for name, doc := range docs {
		tmpl, err := tree.Parse(name, []byte(doc))
		require.NoError(t, err)
		templates = append(templates, tmpl)
	}
	set, err := tree.NewSet(templates...)
	require.NoError(t, err)
	return render.NewRenderer(set, render.RendererConfig{})
}

func TestPublish(t *testing.T) {
	t.Parallel()
	bucket := &memoryBucket{}
	p := New(bucket, newRenderer(t), Config{Bucket: "site", Prefix: "/www/", CacheControl: "max-age=60"}, nil)

	results, err := p.Publish(context.Background(), []string{"index", "blog/post"}, map[string]any{"site": "S"})
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, Result{Template: "index", Key: "www/index.html", Bytes: len("<h1>S</h1>")}, results[0])
	assert.Equal(t, "www/blog/post.html", results[1].Key)

	assert.Equal(t, "<h1>S</h1>", bucket.objects["www/index.html"])
	assert.Equal(t, "<article>post</article>", bucket.objects["www/blog/post.html"])
	for _, in := range bucket.inputs {
		assert.Equal(t, "site", aws.ToString(in.Bucket))
		assert.Equal(t, "text/html; charset=utf-8", aws.ToString(in.ContentType))
		assert.Equal(t, "max-age=60", aws.ToString(in.CacheControl))
	}
}

func TestPublishAllPages(t *testing.T) {
	t.Parallel()
	bucket := &memoryBucket{}
	r := newRenderer(t)
	p := New(bucket, r, Config{Bucket: "site", Page: true, Concurrency: 1}, nil)

	_, err := p.Publish(context.Background(), nil, map[string]any{"site": "S", "obj": "ok"})
	require.NoError(t, err)

	keys := make([]string, 0, len(bucket.objects))
	for k := range bucket.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"blog/post.html", "broken.html", "index.html"}, keys)
	assert.Contains(t, bucket.objects["index.html"], "<title>Home</title>")
	assert.Contains(t, bucket.objects["index.html"], "<!DOCTYPE html>")
}

func TestPublishRenderError(t *testing.T) {
	t.Parallel()
	bucket := &memoryBucket{}
	p := New(bucket, newRenderer(t), Config{Bucket: "site"}, nil)

	_, err := p.Publish(context.Background(), []string{"broken"}, map[string]any{"obj": struct{}{}})
	require.ErrorIs(t, err, markup.ErrRenderType)
	assert.Empty(t, bucket.objects)
}

func TestPublishRequiresBucket(t *testing.T) {
	t.Parallel()
	p := New(&memoryBucket{}, newRenderer(t), Config{}, nil)

	_, err := p.Publish(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestPublishS3Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		code     string
		sentinel error
	}{
		{"access denied", &smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}, "H031", ErrAccessDenied},
		{"no such bucket code", &smithy.GenericAPIError{Code: "NoSuchBucket"}, "H030", ErrNoSuchBucket},
		{"no such bucket type", &types.NoSuchBucket{}, "H030", ErrNoSuchBucket},
		{"other", errors.New("connection reset"), "H030", ErrUploadFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&memoryBucket{err: tt.err}, newRenderer(t), Config{Bucket: "site"}, nil)

			_, err := p.Publish(context.Background(), []string{"index"}, map[string]any{})
			var he *herrors.Error
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.code, he.Code)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestKey(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "index.html", New(nil, nil, Config{}, nil).Key("index"))
	assert.Equal(t, "a/b/c.html", New(nil, nil, Config{Prefix: "a/b"}, nil).Key("c"))
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	client := NewClient(Config{Region: "eu-west-1", Endpoint: "http://localhost:9000", PathStyle: true, AccessKeyID: "id", SecretAccessKey: "secret"})

	opts := client.Options()
	assert.Equal(t, "eu-west-1", opts.Region)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)

	creds, err := opts.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "id", creds.AccessKeyID)
}
