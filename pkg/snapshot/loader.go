package snapshot

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// Loader reads snapshot files and optionally watches them for changes. A failed
// reload never replaces the last good snapshot; it is logged and reported
// through the error callback instead.
type Loader struct {
	path    string
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	mu      sync.RWMutex
	current *Snapshot

	onChange func(*Snapshot)
	onError  func(error)
	done     chan struct{}
}

// NewLoader creates a loader for the given snapshot file. A nil logger falls
// back to slog.Default().
func NewLoader(path string, logger *slog.Logger) (*Loader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve snapshot path: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		path:   absPath,
		logger: logger,
		done:   make(chan struct{}),
	}, nil
}

// Path returns the absolute path of the watched snapshot file.
func (l *Loader) Path() string {
	return l.path
}

// Load reads, env-expands, parses and validates the snapshot file. On success
// the result also becomes Current.
func (l *Loader) Load() (*Snapshot, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	// Hosts commonly template repository locations through the environment,
	// e.g. path: ${MAVEN_REPO}/org/mockito/...
	expanded := []byte(os.ExpandEnv(string(data)))

	var snap Snapshot
	if err := yaml.Unmarshal(expanded, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot YAML: %w", err)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.current = &snap
	l.mu.Unlock()

	return &snap, nil
}

// Watch starts monitoring the snapshot file. onChange receives every snapshot
// that loads and validates cleanly; onError receives reload failures. Either
// callback may be nil. The file's directory is watched rather than the file
// itself so atomic rename-style saves are picked up.
func (l *Loader) Watch(onChange func(*Snapshot), onError func(error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create snapshot watcher: %w", err)
	}
	l.watcher = watcher
	l.onChange = onChange
	l.onError = onError

	go l.watchLoop()

	if err := l.watcher.Add(filepath.Dir(l.path)); err != nil {
		l.watcher.Close()
		return fmt.Errorf("watch snapshot directory: %w", err)
	}
	return nil
}

func (l *Loader) watchLoop() {
	for {
		select {
		case <-l.done:
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != l.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			l.reload()
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("snapshot watcher error", "error", err)
		}
	}
}

func (l *Loader) reload() {
	snap, err := l.Load()
	if err != nil {
		// Keep the last good snapshot current.
		l.logger.Error("snapshot reload failed, keeping previous snapshot", "path", l.path, "error", err)
		if l.onError != nil {
			l.onError(err)
		}
		return
	}
	l.logger.Info("snapshot reloaded",
		"path", l.path,
		"dependencies", len(snap.Dependencies),
		"test_plugins", len(snap.TestPlugins))
	if l.onChange != nil {
		l.onChange(snap)
	}
}

// Current returns the most recently loaded valid snapshot, or nil when nothing
// has loaded yet.
func (l *Loader) Current() *Snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Close stops watching. The loader must not be reused afterwards.
func (l *Loader) Close() error {
	close(l.done)
	if l.watcher != nil {
		return l.watcher.Close()
	}
	return nil
}
