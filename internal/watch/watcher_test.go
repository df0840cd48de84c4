package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPoll(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.yaml")
	post := filepath.Join(dir, "blog", "post.yaml")
	write(t, index, "body: a")
	write(t, post, "body: b")

	w := New(Config{Paths: []string{dir}, Extensions: []string{".yaml"}})
	assert.Empty(t, w.Poll(), "first poll records a snapshot")
	assert.Empty(t, w.Poll())

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(index, later, later))
	require.NoError(t, os.Remove(post))
	fresh := filepath.Join(dir, "fresh.yaml")
	write(t, fresh, "body: c")

	changes := w.Poll()
	assert.ElementsMatch(t, []Change{
		{Path: post, Op: Removed},
		{Path: fresh, Op: Created},
		{Path: index, Op: Modified},
	}, changes)
	assert.Empty(t, w.Poll())
}

func TestPollFilters(t *testing.T) {
	dir := t.TempDir()
	w := New(Config{Paths: []string{dir}, Extensions: []string{".yaml"}})
	w.Poll()

	write(t, filepath.Join(dir, "notes.txt"), "x")
	write(t, filepath.Join(dir, "draft.yaml.swp"), "x")
	write(t, filepath.Join(dir, ".git", "config.yaml"), "x")
	write(t, filepath.Join(dir, "page.YAML"), "x")

	changes := w.Poll()
	require.Len(t, changes, 1)
	assert.Equal(t, filepath.Join(dir, "page.YAML"), changes[0].Path)
	assert.Equal(t, "created", changes[0].Op.String())
}

func TestPollMissingPath(t *testing.T) {
	w := New(Config{Paths: []string{filepath.Join(t.TempDir(), "missing")}})
	w.Poll()
	assert.Empty(t, w.Poll())
}

func TestStartCallsOnChange(t *testing.T) {
	dir := t.TempDir()
	w := New(Config{Paths: []string{dir}, Interval: 10 * time.Millisecond})

	got := make(chan []Change, 1)
	w.OnChange(func(changes []Change) {
		select {
		case got <- changes:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	require.Eventually(t, w.IsRunning, time.Second, 5*time.Millisecond)
	write(t, filepath.Join(dir, "index.yaml"), "body: a")

	select {
	case changes := <-got:
		require.Len(t, changes, 1)
		assert.Equal(t, Created, changes[0].Op)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}

	w.Stop()
	require.NoError(t, <-done)
	assert.False(t, w.IsRunning())
}

func TestStartCancel(t *testing.T) {
	w := New(Config{Paths: []string{t.TempDir()}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Start(ctx), context.Canceled)
	assert.False(t, w.IsRunning())
}
