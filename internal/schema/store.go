package schema

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/abrezinsky/revista/internal/logger"
)

// Store holds the active schema and swaps it when the backing file changes.
type Store struct {
	log      logger.Logger
	path     string
	debounce time.Duration

	mu      sync.RWMutex
	current *File
	onLoad  []func(*File)
}

// NewStore loads path (or the embedded default when empty) into a new Store.
func NewStore(log logger.Logger, path string) (*Store, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		log:      log,
		path:     path,
		debounce: 300 * time.Millisecond,
		current:  f,
	}, nil
}

// NewStaticStore wraps an already parsed schema. Watch is a no-op on it.
func NewStaticStore(log logger.Logger, f *File) *Store {
	return &Store{log: log, current: f}
}

// Current returns the active schema
func (s *Store) Current() *File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Path returns the backing file, empty for the embedded default
func (s *Store) Path() string {
	return s.path
}

// OnLoad registers a callback run after every successful reload
func (s *Store) OnLoad(fn func(*File)) {
	s.mu.Lock()
	s.onLoad = append(s.onLoad, fn)
	s.mu.Unlock()
}

// Reload re-reads the backing file. On error the previous schema stays active.
func (s *Store) Reload() error {
	if s.path == "" {
		return nil
	}
	f, err := Load(s.path)
	if err != nil {
		s.log.Warn("Schema reload failed, keeping previous schema", "path", s.path, "error", err)
		return err
	}

	s.mu.Lock()
	s.current = f
	callbacks := append([]func(*File){}, s.onLoad...)
	s.mu.Unlock()

	s.log.Info("Schema reloaded", "path", s.path, "name", f.Name, "version", f.Version, "essential_checks", len(f.Essential))
	for _, fn := range callbacks {
		fn(f)
	}
	return nil
}

// Watch reloads the schema whenever its file is written or replaced.
// It blocks until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	if s.path == "" {
		<-ctx.Done()
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer w.Close()

	// Editors often replace files by rename, so watch the directory and filter by name.
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	var (
		timerMu sync.Mutex
		timer   *time.Timer
	)
	trigger := func() {
		timerMu.Lock()
		defer timerMu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(s.debounce, func() { _ = s.Reload() })
	}
	defer func() {
		timerMu.Lock()
		if timer != nil {
			timer.Stop()
		}
		timerMu.Unlock()
	}()

	s.log.Debug("Watching schema file", "path", s.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) || event.Op.Has(fsnotify.Rename) {
				trigger()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("schema watcher error: %w", err)
		}
	}
}
