// Package prefs persists small client-local values (the session anchor, the
// selected theme) in a TOML file guarded by an inter-process file lock.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	toml "github.com/pelletier/go-toml/v2"
)

// Prefs is the on-disk document.
type Prefs struct {
	Theme  string            `toml:"theme"`
	Values map[string]string `toml:"values"`
}

const (
	defaultPrefsPath = "~/.local/state/auqa/state.toml"
	defaultTheme     = "Nightfox"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if the
// file is missing or unreadable.
func Load(path string) (Prefs, error) {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}, nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	return prefs, nil
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	tmp := resolved + ".tmp"
	if err := os.WriteFile(tmp, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := os.Rename(tmp, resolved); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

// Store is a key-value view over a prefs file. Every read and write goes to
// disk under a file lock so a CLI `session reset` is seen by a running TUI
// the next time it reads.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore returns a Store backed by path (empty uses DefaultPath).
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the value stored under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var value string
	var ok bool
	read := func() error {
		p, _ := Load(s.path)
		value, ok = p.Values[key]
		return nil
	}
	if err := s.withLock(false, read); err != nil {
		_ = read() // unlocked read beats reporting nothing
	}
	return value, ok
}

// Set stores value under key.
func (s *Store) Set(key, value string) error {
	return s.update(func(p *Prefs) {
		if p.Values == nil {
			p.Values = make(map[string]string)
		}
		p.Values[key] = value
	})
}

// Theme returns the persisted theme name.
func (s *Store) Theme() string {
	p, _ := Load(s.path)
	return p.Theme
}

// SetTheme persists the theme name without touching other values.
func (s *Store) SetTheme(name string) error {
	return s.update(func(p *Prefs) { p.Theme = name })
}

func (s *Store) update(mutate func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withLock(true, func() error {
		p, _ := Load(s.path)
		mutate(&p)
		return Save(s.path, p)
	})
}

func (s *Store) withLock(exclusive bool, fn func() error) error {
	resolved, err := resolvePath(s.path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	lock := flock.New(resolved + ".lock")
	if exclusive {
		err = lock.Lock()
	} else {
		err = lock.RLock()
	}
	if err != nil {
		return fmt.Errorf("lock prefs: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	return fn()
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
