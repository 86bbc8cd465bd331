package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"frecks-web/internal/domain"
	"frecks-web/internal/theme"

	"github.com/google/uuid"
)

// Browser bundles the per-browser UI state. It is created on the first
// request of a browser and closed when the browser goes idle.
type Browser struct {
	ID      string
	Session *Store
	Theme   *theme.Store
	Auth    *TokenAuth

	lastSeen atomic.Int64
}

func (b *Browser) touch(now time.Time) { b.lastSeen.Store(now.UnixNano()) }

func (b *Browser) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, b.lastSeen.Load()))
}

type ManagerConfig struct {
	Records   Persistence
	Verifier  TokenVerifier
	GoTrue    GoTrue
	Profiles  domain.ProfileRepository
	IdleAfter time.Duration // in-memory teardown of inactive browsers
	RecordTTL time.Duration // how long tokens and preferences persist
	Log       *slog.Logger
}

// Manager owns the live Browser entries keyed by session cookie id.
type Manager struct {
	cfg ManagerConfig
	log *slog.Logger
	now func() time.Time

	mu       sync.Mutex
	browsers map[string]*Browser
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.IdleAfter <= 0 {
		cfg.IdleAfter = 30 * time.Minute
	}
	if cfg.RecordTTL <= 0 {
		cfg.RecordTTL = 30 * 24 * time.Hour
	}
	return &Manager{
		cfg:      cfg,
		log:      cfg.Log,
		now:      time.Now,
		browsers: make(map[string]*Browser),
	}
}

// RecordTTL is the lifetime of the browser cookie and its record.
func (m *Manager) RecordTTL() time.Duration { return m.cfg.RecordTTL }

// Open returns the live Browser for id, reviving it from its persisted
// record or creating a new one. Unknown ids are never adopted: a fresh id is
// issued instead. system is the browser's reported color-scheme preference.
func (m *Manager) Open(ctx context.Context, id string, system theme.Theme) (*Browser, bool, error) {
	now := m.now()

	m.mu.Lock()
	if b, ok := m.browsers[id]; ok && id != "" {
		b.touch(now)
		m.mu.Unlock()
		return b, false, nil
	}
	m.mu.Unlock()

	isNew := false
	if id != "" {
		rec, err := m.cfg.Records.Load(ctx, id)
		if err != nil {
			return nil, false, err
		}
		if rec == nil {
			id = ""
		}
	}
	if id == "" {
		id = uuid.NewString()
		isNew = true
	}
	if err := m.cfg.Records.Update(ctx, id, m.cfg.RecordTTL, func(*Record) {}); err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// another request for the same browser may have won the race
	if b, ok := m.browsers[id]; ok {
		b.touch(now)
		return b, isNew, nil
	}

	log := m.log.With("browser_id", id)
	b := &Browser{ID: id}
	b.Auth = NewTokenAuth(id, m.cfg.Records, m.cfg.RecordTTL, m.cfg.Verifier, m.cfg.GoTrue, log)
	b.Theme = theme.New(&recordThemeStorage{records: m.cfg.Records, id: id, ttl: m.cfg.RecordTTL}, func() theme.Theme { return system }, log)
	b.Theme.Mount()
	b.Session = NewStore(b.Auth, m.cfg.Profiles, log)
	b.Session.Start(ctx)
	b.touch(now)
	m.browsers[id] = b

	log.Debug("browser session opened", "new", isNew)
	return b, isNew, nil
}

// Len reports the number of live browsers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.browsers)
}

// Sweep closes browsers idle for longer than the configured limit. Their
// records stay, so the next visit revives them.
func (m *Manager) Sweep() int {
	now := m.now()
	var idle []*Browser

	m.mu.Lock()
	for id, b := range m.browsers {
		if b.idleSince(now) > m.cfg.IdleAfter {
			idle = append(idle, b)
			delete(m.browsers, id)
		}
	}
	m.mu.Unlock()

	for _, b := range idle {
		b.Session.Close()
	}
	return len(idle)
}

// Run sweeps periodically until ctx is done, then closes every browser.
func (m *Manager) Run(ctx context.Context, every time.Duration) error {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			m.CloseAll()
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Debug("idle browser sessions closed", "count", n)
			}
		}
	}
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*Browser, 0, len(m.browsers))
	for id, b := range m.browsers {
		all = append(all, b)
		delete(m.browsers, id)
	}
	m.mu.Unlock()

	for _, b := range all {
		b.Session.Close()
	}
}

// recordThemeStorage keeps the theme preference in the browser Record.
type recordThemeStorage struct {
	records Persistence
	id      string
	ttl     time.Duration
}

const themeIOTimeout = 3 * time.Second

func (s *recordThemeStorage) Load() (theme.Theme, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), themeIOTimeout)
	defer cancel()
	rec, err := s.records.Load(ctx, s.id)
	if err != nil || rec == nil {
		return "", false, err
	}
	t, ok := theme.Parse(rec.Theme)
	return t, ok, nil
}

func (s *recordThemeStorage) Save(t theme.Theme) error {
	ctx, cancel := context.WithTimeout(context.Background(), themeIOTimeout)
	defer cancel()
	return s.records.Update(ctx, s.id, s.ttl, func(r *Record) {
		r.Theme = string(t)
	})
}
