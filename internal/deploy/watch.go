package deploy

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 2 * time.Second

// WatchScheduler re-runs the deploy pipeline on file changes. Bursts of events
// are debounced, and pipeline runs are serialized: while one run is in flight
// at most one re-run queues behind it, so two runs can never race over the
// same working tree.
type WatchScheduler struct {
	logger   *slog.Logger
	debounce time.Duration

	mu      sync.Mutex
	running bool
	pending bool
	done    sync.WaitGroup
}

// NewWatchScheduler returns a scheduler with the production debounce window.
func NewWatchScheduler(logger *slog.Logger) *WatchScheduler {
	return &WatchScheduler{logger: logger, debounce: debounceWindow}
}

// Run watches dir recursively and invokes pipeline after each debounced burst
// of qualifying changes. It blocks until ctx is cancelled.
func (s *WatchScheduler) Run(ctx context.Context, dir string, pipeline func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := addRecursive(watcher, dir); err != nil {
		return err
	}

	events := make(chan string)
	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !qualifies(dir, ev.Name) {
					continue
				}
				// New directories join the watch so nested edits keep firing.
				if ev.Op.Has(fsnotify.Create) {
					if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
						_ = addRecursive(watcher, ev.Name)
					}
				}
				select {
				case events <- ev.Name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("file watcher error", "error", err)
			}
		}
	}()

	s.logger.Info("watching for changes", "dir", dir)
	s.loop(ctx, events, pipeline)
	s.done.Wait()
	return ctx.Err()
}

// loop debounces events and hands quiet moments to trigger. Split from Run so
// tests can feed a synthetic event stream.
func (s *WatchScheduler) loop(ctx context.Context, events <-chan string, pipeline func()) {
	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(s.debounce)
		case <-timer.C:
			s.trigger(pipeline)
		}
	}
}

// trigger starts a pipeline run, or queues exactly one re-run when a run is
// already in flight.
func (s *WatchScheduler) trigger(pipeline func()) {
	s.mu.Lock()
	if s.running {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		for {
			pipeline()
			s.mu.Lock()
			if s.pending {
				s.pending = false
				s.mu.Unlock()
				continue
			}
			s.running = false
			s.mu.Unlock()
			return
		}
	}()
}

func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(filepath.Base(path)) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// qualifies filters hidden paths and the orchestrator's own transient archives.
func qualifies(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if isHidden(part) {
			return false
		}
	}
	base := filepath.Base(path)
	if strings.HasPrefix(base, "vaf-") && strings.HasSuffix(base, ".zip") {
		return false
	}
	return true
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}
