// Package contexts persists named daemon URLs and the current selection in
// config.toml.
package contexts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/agnivade/levenshtein"
	"github.com/gofrs/flock"
	"github.com/pelletier/go-toml/v2"
)

type Entry struct {
	URL string `toml:"url" json:"url"`
}

// File is the on-disk shape: `current = "name"` plus one [contexts.<name>]
// table per entry.
type File struct {
	Current  *string          `toml:"current,omitempty" json:"current"`
	Contexts map[string]Entry `toml:"contexts" json:"contexts"`
}

type Store struct {
	path     string
	lockPath string
	file     File
}

// ErrNotFound is returned for operations naming an unknown context.
var ErrNotFound = errors.New("context not found")

// Open reads path once. A missing or empty file is an empty store.
func Open(path string) (*Store, error) {
	s := &Store{
		path:     path,
		lockPath: strings.TrimSuffix(path, filepath.Ext(path)) + ".lock",
		file:     File{Contexts: map[string]Entry{}},
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return s, nil
	}
	if err := toml.Unmarshal(data, &s.file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if s.file.Contexts == nil {
		s.file.Contexts = map[string]Entry{}
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Lookup(name string) (string, bool) {
	e, ok := s.file.Contexts[name]
	return e.URL, ok
}

func (s *Store) CurrentName() string {
	if s.file.Current == nil {
		return ""
	}
	return *s.file.Current
}

// Current returns the selected context. It fails when none is selected or
// the selection points at a removed entry.
func (s *Store) Current() (string, Entry, error) {
	name := s.CurrentName()
	if name == "" {
		return "", Entry{}, errors.New("no current context set")
	}
	e, ok := s.file.Contexts[name]
	if !ok {
		return "", Entry{}, fmt.Errorf("current context %s not found in config", name)
	}
	return name, e, nil
}

// Names lists contexts in lexical order.
func (s *Store) Names() []string {
	names := make([]string, 0, len(s.file.Contexts))
	for name := range s.file.Contexts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Store) Snapshot() File {
	out := File{Contexts: make(map[string]Entry, len(s.file.Contexts))}
	for k, v := range s.file.Contexts {
		out.Contexts[k] = v
	}
	if s.file.Current != nil {
		cur := *s.file.Current
		out.Current = &cur
	}
	return out
}

// Add creates or replaces name. It becomes current when use is set or no
// context is selected yet. The returned flag reports whether name is current.
func (s *Store) Add(name, url string, use bool) (bool, error) {
	name = strings.TrimSpace(name)
	url = strings.TrimSpace(url)
	if name == "" {
		return false, errors.New("context name is required")
	}
	if url == "" {
		return false, errors.New("context url is required")
	}
	s.file.Contexts[name] = Entry{URL: url}
	if use || s.file.Current == nil {
		s.file.Current = &name
	}
	return s.CurrentName() == name, nil
}

func (s *Store) Use(name string) error {
	if _, ok := s.file.Contexts[name]; !ok {
		return s.notFound(name)
	}
	s.file.Current = &name
	return nil
}

// Remove deletes name and clears the selection if it pointed there. Removing
// an unknown name is a no-op.
func (s *Store) Remove(name string) {
	delete(s.file.Contexts, name)
	if s.CurrentName() == name {
		s.file.Current = nil
	}
}

func (s *Store) notFound(name string) error {
	if suggestion := s.closest(name); suggestion != "" {
		return fmt.Errorf("%w: %s (did you mean %q?)", ErrNotFound, name, suggestion)
	}
	return fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (s *Store) closest(name string) string {
	best, bestDist := "", 3
	for _, candidate := range s.Names() {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDist {
			best, bestDist = candidate, d
		}
	}
	return best
}

// Save writes the store once, under a file lock, via rename. Concurrent CLI
// invocations still race: the last writer wins.
func (s *Store) Save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}
	lock := flock.New(s.lockPath)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	locked, err := lock.TryLockContext(ctx, 50*time.Millisecond)
	if err != nil {
		return fmt.Errorf("lock %s: %w", s.lockPath, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: timeout acquiring lock", s.lockPath)
	}
	defer func() { _ = lock.Unlock() }()

	data, err := toml.Marshal(s.file)
	if err != nil {
		return fmt.Errorf("encode contexts: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "config-*.toml.tmp")
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
