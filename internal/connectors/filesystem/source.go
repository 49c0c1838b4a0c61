// Package filesystem discovers and watches note files on local disk.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/mtm/internal/logger"
)

// ChangeType is what happened to a watched file.
type ChangeType string

// Change types.
const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// Change reports one file event.
type Change struct {
	Type ChangeType
	Path string
}

// Source lists and watches note files under a root directory. Hidden files
// and directories are ignored, and so are files the filter rejects.
type Source struct {
	root   string
	accept func(path string) bool

	mu      sync.Mutex
	watcher *fsnotify.Watcher
}

// New creates a source for root. A nil accept admits every file.
func New(root string, accept func(path string) bool) *Source {
	if accept == nil {
		accept = func(string) bool { return true }
	}
	return &Source{root: root, accept: accept}
}

// Root returns the watched directory.
func (s *Source) Root() string {
	return s.root
}

// List returns every accepted file under the root, sorted by path.
func (s *Source) List(ctx context.Context) ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path != s.root && isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && s.accept(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", s.root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Watch streams changes to accepted files until ctx is cancelled.
// Directories created after the call are watched too.
func (s *Source) Watch(ctx context.Context) (<-chan Change, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	if err := s.addTree(watcher, s.root); err != nil {
		watcher.Close()
		return nil, err
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	// Overflow errors arrive in bursts; log at most one per second.
	warnErr := rate.Sometimes{First: 1, Interval: time.Second}

	changes := make(chan Change)
	go func() {
		defer close(changes)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !isHidden(info.Name()) {
						if err := s.addTree(watcher, event.Name); err != nil {
							logger.Warn("watching %s: %v", event.Name, err)
						}
						continue
					}
				}
				change := s.handleFsEvent(event)
				if change == nil {
					continue
				}
				select {
				case changes <- *change:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				warnErr.Do(func() { logger.Warn("watch error: %v", err) })
			}
		}
	}()

	return changes, nil
}

// Close stops a running watch.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}

func (s *Source) addTree(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

// handleFsEvent maps an fsnotify event to a Change, or nil if it is not
// one the caller cares about.
func (s *Source) handleFsEvent(event fsnotify.Event) *Change {
	if s.hidden(event.Name) || !s.accept(event.Name) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		return &Change{Type: ChangeDeleted, Path: event.Name}
	case event.Has(fsnotify.Create), event.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return nil
		}
		changeType := ChangeUpdated
		if event.Has(fsnotify.Create) {
			changeType = ChangeCreated
		}
		return &Change{Type: changeType, Path: event.Name}
	default:
		return nil
	}
}

// hidden checks path relative to the root, so a root inside a dot
// directory still works.
func (s *Source) hidden(path string) bool {
	rel, err := filepath.Rel(s.root, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
