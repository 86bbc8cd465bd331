// Package theme holds the light/dark UI preference of one browser.
package theme

import (
	"log/slog"
	"strings"
	"sync"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

func (t Theme) Toggled() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Storage persists the preference across visits.
type Storage interface {
	Load() (Theme, bool, error)
	Save(Theme) error
}

// Store always starts at Light. The persisted or system preference is only
// applied by Mount, so whatever was rendered before mounting is consistent
// with the initial value.
type Store struct {
	storage Storage
	system  func() Theme
	log     *slog.Logger

	mu      sync.RWMutex
	current Theme
	mounted bool
}

func New(storage Storage, system func() Theme, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		storage: storage,
		system:  system,
		log:     log,
		current: Light,
	}
}

// Mount resolves the stored preference, falling back to the system
// preference, and persists the result. Later calls are no-ops.
func (s *Store) Mount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return
	}

	resolved := Light
	stored, ok, err := s.storage.Load()
	switch {
	case err != nil:
		s.log.Warn("theme preference unreadable", "error", err)
		fallthrough
	case !ok:
		if s.system != nil {
			if sys, valid := Parse(string(s.system())); valid {
				resolved = sys
			}
		}
	default:
		resolved = stored
	}

	s.current = resolved
	s.mounted = true
	s.persistLocked()
}

// Toggle flips the theme. After Mount every change is persisted immediately.
func (s *Store) Toggle() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.current.Toggled()
	if s.mounted {
		s.persistLocked()
	}
	return s.current
}

func (s *Store) persistLocked() {
	if err := s.storage.Save(s.current); err != nil {
		s.log.Warn("theme preference not saved", "theme", s.current, "error", err)
	}
}

func (s *Store) Theme() Theme {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Store) Mounted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mounted
}

// RootClass is the class applied to the document root element.
func (s *Store) RootClass() string {
	return string(s.Theme())
}
