package watch

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"
)

// Op describes what happened to a file.
type Op int

const (
	Created Op = iota
	Modified
	Removed
)

func (o Op) String() string {
	switch o {
	case Created:
		return "created"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Change is one detected file change.
type Change struct {
	Path string
	Op   Op
}

// Config configures a Watcher.
type Config struct {
	// Paths are the directories to watch.
	Paths []string

	// Extensions limits watched files, e.g. ".yaml". Empty watches every
	// file.
	Extensions []string

	// Ignore lists base-name globs (e.g. "*.swp") or path segments
	// (e.g. ".git") to skip.
	Ignore []string

	// Interval is the polling period.
	Interval time.Duration
}

// DefaultIgnore contains patterns skipped when Config.Ignore is empty.
var DefaultIgnore = []string{
	".git",
	"node_modules",
	"*.tmp",
	"*.swp",
	"*~",
}

// DefaultInterval is the polling period used when Config.Interval is zero.
const DefaultInterval = 250 * time.Millisecond

// Watcher polls for file changes.
type Watcher struct {
	config   Config
	mu       sync.Mutex
	onChange func([]Change)
	files    map[string]time.Time
	running  bool
	stopCh   chan struct{}
}

// New creates a Watcher.
func New(config Config) *Watcher {
	if config.Interval <= 0 {
		config.Interval = DefaultInterval
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	return &Watcher{config: config}
}

// OnChange sets the callback receiving each batch of changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = fn
}

// Start takes an initial snapshot and polls until ctx is done or Stop is
// called. It returns nil after Stop and ctx.Err() on cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.stopCh = make(chan struct{})
	stopCh := w.stopCh
	w.files = w.scan()
	w.mu.Unlock()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			w.Poll()
		}
	}
}

// Stop stops a running watcher.
func (w *Watcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		close(w.stopCh)
		w.running = false
	}
}

// IsRunning reports whether Start is polling.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

// Poll scans once and reports changes since the previous scan. The first
// call only records a snapshot.
func (w *Watcher) Poll() []Change {
	w.mu.Lock()
	current := w.scan()
	previous := w.files
	w.files = current
	callback := w.onChange
	w.mu.Unlock()

	if previous == nil {
		return nil
	}

	var changes []Change
	for p, mod := range current {
		old, ok := previous[p]
		switch {
		case !ok:
			changes = append(changes, Change{Path: p, Op: Created})
		case !mod.Equal(old):
			changes = append(changes, Change{Path: p, Op: Modified})
		}
	}
	for p := range previous {
		if _, ok := current[p]; !ok {
			changes = append(changes, Change{Path: p, Op: Removed})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })

	if len(changes) > 0 && callback != nil {
		callback(changes)
	}
	return changes
}

// scan walks the watched paths. Missing paths are skipped.
func (w *Watcher) scan() map[string]time.Time {
	files := make(map[string]time.Time)
	for _, root := range w.config.Paths {
		filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			if w.ignored(p) {
				if d.IsDir() && p != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !w.matches(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				return nil
			}
			files[p] = info.ModTime()
			return nil
		})
	}
	return files
}

func (w *Watcher) matches(p string) bool {
	if len(w.config.Extensions) == 0 {
		return true
	}
	return slices.Contains(w.config.Extensions, strings.ToLower(filepath.Ext(p)))
}

func (w *Watcher) ignored(p string) bool {
	name := filepath.Base(p)
	segments := strings.Split(filepath.ToSlash(p), "/")

	for _, pattern := range w.config.Ignore {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		if strings.ContainsAny(pattern, "*?[") {
			if ok, _ := path.Match(pattern, name); ok {
				return true
			}
			continue
		}
		if slices.Contains(segments, pattern) {
			return true
		}
	}
	return false
}
