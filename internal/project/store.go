package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/renameio/v2"
)

// NotFoundError is returned by Store.Load when a project id has no
// document on disk.
type NotFoundError struct {
	ProjectID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("project %q not found", e.ProjectID)
}

// Store is a document-per-project JSON store rooted at dataDir, with
// atomic temp+rename writes and a default-filling migration on every
// load (spec.md §4.3). It owns the project document exclusively;
// callers perform a short-lived read-modify-write per update.
type Store struct {
	dataDir string

	mu       sync.Mutex
	watchers map[string]*fsnotify.Watcher
}

// NewStore roots a Store at dataDir, creating it if necessary.
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir %s: %w", dataDir, err)
	}
	return &Store{dataDir: dataDir, watchers: map[string]*fsnotify.Watcher{}}, nil
}

func (s *Store) projectDir(id string) string {
	return filepath.Join(s.dataDir, "projects", id)
}

func (s *Store) documentPath(id string) string {
	return filepath.Join(s.projectDir(id), "project.json")
}

func (s *Store) demoContextPath(id string) string {
	return filepath.Join(s.projectDir(id), "demo_context.md")
}

// Create initializes a brand new project document and persists it.
func (s *Store) Create(id string, now time.Time) (*Project, error) {
	if err := os.MkdirAll(s.projectDir(id), 0o755); err != nil {
		return nil, fmt.Errorf("creating project dir for %s: %w", id, err)
	}
	p := New(id, now)
	if err := s.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads a project document, running ensure_defaults on it before
// returning. Returns *NotFoundError if the document doesn't exist.
func (s *Store) Load(id string, now time.Time) (*Project, error) {
	raw, err := os.ReadFile(s.documentPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &NotFoundError{ProjectID: id}
		}
		return nil, fmt.Errorf("reading project %s: %w", id, err)
	}

	var p Project
	if err := json.Unmarshal(raw, &p); err != nil {
		// A corrupted or partially-written document still gets a fresh
		// shell run through ensure_defaults rather than failing the read
		// outright — the project id itself is the only thing we trust.
		p = Project{ProjectID: id}
	}
	if p.ProjectID == "" {
		p.ProjectID = id
	}
	EnsureDefaults(&p, now)
	return &p, nil
}

// Save persists p atomically and mirrors settings.demo_context into the
// sibling demo_context.md file.
func (s *Store) Save(p *Project) error {
	return s.save(p)
}

func (s *Store) save(p *Project) error {
	if err := os.MkdirAll(s.projectDir(p.ProjectID), 0o755); err != nil {
		return fmt.Errorf("creating project dir for %s: %w", p.ProjectID, err)
	}

	payload, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling project %s: %w", p.ProjectID, err)
	}

	if err := writeAtomic(s.documentPath(p.ProjectID), payload); err != nil {
		return fmt.Errorf("writing project document for %s: %w", p.ProjectID, err)
	}
	if err := writeAtomic(s.demoContextPath(p.ProjectID), []byte(p.Settings.DemoContext)); err != nil {
		return fmt.Errorf("mirroring demo_context.md for %s: %w", p.ProjectID, err)
	}
	return nil
}

// Update performs a read-modify-write: it loads the project, applies fn,
// and saves the result. There is no cross-process lock — concurrent
// updates to the same project follow last-writer-wins at document
// granularity, per spec.md §5.
func (s *Store) Update(id string, now time.Time, fn func(p *Project) error) (*Project, error) {
	p, err := s.Load(id, now)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = now
	if err := s.save(p); err != nil {
		return nil, err
	}
	return p, nil
}

func writeAtomic(path string, data []byte) error {
	w, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("staging %s: %w", path, err)
	}
	defer w.Cleanup()

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return w.CloseAtomicallyReplace()
}

// WatchDemoContext watches a project's demo_context.md for external edits
// (an operator hand-editing the mirrored file) and invokes onChange with
// the new content. The returned stop function releases the watcher.
func (s *Store) WatchDemoContext(id string, onChange func(content string)) (stop func() error, err error) {
	path := s.demoContextPath(id)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating demo_context watcher for %s: %w", id, err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				data, err := os.ReadFile(path)
				if err != nil {
					continue
				}
				onChange(string(data))
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	s.mu.Lock()
	s.watchers[id] = watcher
	s.mu.Unlock()

	return func() error {
		s.mu.Lock()
		delete(s.watchers, id)
		s.mu.Unlock()
		return watcher.Close()
	}, nil
}

// Close releases every active demo_context watcher.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var firstErr error
	for id, w := range s.watchers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.watchers, id)
	}
	return firstErr
}
