// Package policy provides a file-backed permessage.Allowlist that can be
// hot-reloaded while a process is running, so an operator can widen or
// narrow which extensions a deployment negotiates without a restart.
package policy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// document is the on-disk shape of an allowlist file:
//
//	extensions:
//	  - permessage-deflate
//	  - permessage-bzip2
//
// A single entry of "*" allows every extension name.
type document struct {
	Extensions []string `yaml:"extensions"`
}

const wildcard = "*"

// Allowlist implements permessage.Allowlist over a YAML file, optionally
// watching it for changes with fsnotify. The zero value is not usable; use
// NewAllowlist.
type Allowlist struct {
	path   string
	logger *slog.Logger

	set atomic.Pointer[allowSet]

	watchOnce sync.Once
	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

type allowSet struct {
	names map[string]struct{}
	all   bool
}

func (s *allowSet) isAllowed(name string) bool {
	if s == nil {
		return false
	}
	if s.all {
		return true
	}
	_, ok := s.names[name]
	return ok
}

// Option configures an Allowlist at construction time.
type Option func(*Allowlist)

// WithLogger overrides the default logger (slog.Default()). A nil logger is
// ignored.
func WithLogger(l *slog.Logger) Option {
	return func(a *Allowlist) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAllowlist loads path and, if watch is true, starts a background
// fsnotify watcher that reloads the file on every write or create event.
// The returned Allowlist reflects the file's contents at the time of the
// most recent successful load; a load failure after the initial one is
// logged and the previous contents remain in effect.
func NewAllowlist(path string, watch bool, opts ...Option) (*Allowlist, error) {
	a := &Allowlist{
		path:   path,
		logger: slog.Default(),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With(slog.String("component", "policy.Allowlist"), slog.String("path", path))

	if err := a.reload(); err != nil {
		return nil, err
	}
	if watch {
		if err := a.startWatching(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// IsAllowed implements permessage.Allowlist.
func (a *Allowlist) IsAllowed(name string) bool {
	return a.set.Load().isAllowed(name)
}

// Reload re-reads the backing file immediately, independent of the
// watcher. It exists mainly for tests and for callers wired to their own
// reload signal (e.g. SIGHUP) instead of fsnotify.
func (a *Allowlist) Reload() error {
	return a.reload()
}

func (a *Allowlist) reload() error {
	raw, err := os.ReadFile(a.path)
	if err != nil {
		return fmt.Errorf("policy: reading allowlist %s: %w", a.path, err)
	}
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("policy: parsing allowlist %s: %w", a.path, err)
	}

	next := &allowSet{names: make(map[string]struct{}, len(doc.Extensions))}
	for _, name := range doc.Extensions {
		if name == wildcard {
			next.all = true
			continue
		}
		next.names[name] = struct{}{}
	}
	a.set.Store(next)
	return nil
}

func (a *Allowlist) startWatching() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("policy: creating watcher: %w", err)
	}
	// Watch the containing directory rather than the file itself: editors
	// commonly replace a file via rename rather than in-place write, which
	// drops a direct watch on the old inode.
	dir := filepath.Dir(a.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("policy: watching %s: %w", dir, err)
	}
	a.watcher = w
	go a.watchLoop()
	return nil
}

func (a *Allowlist) watchLoop() {
	target := filepath.Clean(a.path)
	for {
		select {
		case <-a.done:
			return
		case ev, ok := <-a.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := a.reload(); err != nil {
				a.logger.Warn("failed to reload allowlist, keeping previous contents", slog.String("err", err.Error()))
			} else {
				a.logger.Info("reloaded allowlist")
			}
		case err, ok := <-a.watcher.Errors:
			if !ok {
				return
			}
			a.logger.Warn("allowlist watcher error", slog.String("err", err.Error()))
		}
	}
}

// Close stops the background watcher, if any. It is safe to call multiple
// times and safe to call on an Allowlist that was never watching.
func (a *Allowlist) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.done)
		if a.watcher != nil {
			err = a.watcher.Close()
		}
	})
	return err
}
