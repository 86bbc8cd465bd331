package session

import (
	"context"
	"log/slog"
	"sync"

	"frecks-web/internal/domain"
)

// State is a read-only snapshot of a Store.
type State struct {
	Identity *domain.Identity `json:"user"`
	Profile  *domain.Profile  `json:"profile"`
	Loading  bool             `json:"loading"`
}

type fetch struct {
	cancel context.CancelFunc
}

// Store tracks the signed-in identity of one browser and its profile row.
//
// Profile fetches are deduplicated per identity id: while a fetch for an id is
// in flight, further triggers for that id return immediately. Identity and
// Profile values are replaced, never mutated, so snapshots can be shared.
type Store struct {
	auth     AuthClient
	profiles domain.ProfileRepository
	log      *slog.Logger

	mu        sync.Mutex
	identity  *domain.Identity
	profile   *domain.Profile
	lastID    string
	loading   bool
	mounted   bool
	closed    bool
	inflight  map[string]*fetch
	watchers  map[int]func(State)
	nextWatch int

	ctx         context.Context
	cancel      context.CancelFunc
	unsubscribe func()
	wg          sync.WaitGroup
}

func NewStore(auth AuthClient, profiles domain.ProfileRepository, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		auth:     auth,
		profiles: profiles,
		log:      log,
		loading:  true,
		inflight: make(map[string]*fetch),
		watchers: make(map[int]func(State)),
	}
}

// Start mounts the store: it subscribes to auth changes and loads the current
// session and profile in the background. Loading stays true until that first
// load completes. The store outlives ctx's cancellation; use Close to stop it.
func (s *Store) Start(ctx context.Context) {
	s.mu.Lock()
	if s.mounted || s.closed {
		s.mu.Unlock()
		return
	}
	s.mounted = true
	s.ctx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.wg.Add(1)
	s.mu.Unlock()

	unsubscribe := s.auth.OnAuthStateChange(s.handleAuthChange)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		unsubscribe()
	} else {
		s.unsubscribe = unsubscribe
		s.mu.Unlock()
	}

	go s.initialize()
}

// Close unmounts the store. In-flight fetches are cancelled and any result
// arriving afterwards is discarded. Close waits for background work to stop.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for id, f := range s.inflight {
		f.cancel()
		delete(s.inflight, id)
	}
	unsubscribe := s.unsubscribe
	cancel := s.cancel
	s.watchers = map[int]func(State){}
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Store) initialize() {
	defer s.wg.Done()

	ident, err := s.auth.GetSession(s.ctx)
	if err != nil {
		s.log.Warn("session lookup failed", "error", err)
		ident = nil
	}

	if id, changed := s.applyIdentity(ident); changed && id != "" {
		s.loadProfile(s.ctx, id, false)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.loading = false
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(st)
}

// handleAuthChange ignores notifications that keep the same user id, such as
// token refreshes, so they cause neither state changes nor profile fetches.
func (s *Store) handleAuthChange(state AuthState) {
	id, changed := s.applyIdentity(state.Identity)
	if !changed {
		return
	}
	s.log.Debug("auth state changed", "event", state.Event, "signed_in", id != "")
	if id == "" {
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	ctx := s.ctx
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.loadProfile(ctx, id, false)
	}()
}

// applyIdentity installs ident if its user id differs from the last one seen.
// A change always drops the previous profile.
func (s *Store) applyIdentity(ident *domain.Identity) (string, bool) {
	id := ""
	if ident != nil {
		id = ident.ID
	}

	s.mu.Lock()
	if s.closed || id == s.lastID {
		s.mu.Unlock()
		return id, false
	}
	if f, ok := s.inflight[s.lastID]; ok {
		f.cancel()
		delete(s.inflight, s.lastID)
	}
	s.lastID = id
	s.identity = ident
	s.profile = nil
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
	return id, true
}

// loadProfile fetches the profile for id and applies it if the fetch is still
// current. Without force, a fetch already in flight for id makes this a no-op;
// with force, the in-flight fetch is cancelled and replaced.
func (s *Store) loadProfile(parent context.Context, id string, force bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if prev, busy := s.inflight[id]; busy {
		if !force {
			s.mu.Unlock()
			return
		}
		prev.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	stop := context.AfterFunc(parent, cancel)
	f := &fetch{cancel: cancel}
	s.inflight[id] = f
	s.mu.Unlock()

	// read the token now: the cached identity is stale after a token refresh
	token, err := s.auth.AccessToken(ctx)
	var profile *domain.Profile
	if err == nil {
		profile, err = s.profiles.GetByID(domain.WithAccessToken(ctx, token), id)
	}
	cancelled := ctx.Err() != nil
	stop()
	cancel()

	s.mu.Lock()
	if s.inflight[id] != f {
		// superseded by a refresh, an identity change or Close
		s.mu.Unlock()
		return
	}
	delete(s.inflight, id)
	if s.closed || cancelled || s.lastID != id {
		s.mu.Unlock()
		return
	}
	if err != nil {
		s.log.Error("profile fetch failed", "user_id", id, "error", err)
		s.profile = nil
	} else {
		s.profile = profile
	}
	st := s.snapshotLocked()
	s.mu.Unlock()

	s.notify(st)
}

// RefreshProfile re-reads the profile of the current identity even when a
// fetch for it is already in flight; the older fetch's result is discarded.
func (s *Store) RefreshProfile(ctx context.Context) State {
	s.mu.Lock()
	id := s.lastID
	closed := s.closed || !s.mounted
	s.mu.Unlock()

	if !closed && id != "" {
		s.loadProfile(ctx, id, true)
	}
	return s.State()
}

// SignOut ends the session with the auth provider and clears local state
// regardless of whether the provider call succeeded.
func (s *Store) SignOut(ctx context.Context) error {
	err := s.auth.SignOut(ctx)
	s.applyIdentity(nil)
	return err
}

// Watch registers fn to be called with every new state. The returned func
// removes the watcher.
func (s *Store) Watch(fn func(State)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	key := s.nextWatch
	s.nextWatch++
	s.watchers[key] = fn
	return func() {
		s.mu.Lock()
		delete(s.watchers, key)
		s.mu.Unlock()
	}
}

func (s *Store) notify(st State) {
	s.mu.Lock()
	fns := make([]func(State), 0, len(s.watchers))
	for _, fn := range s.watchers {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}

func (s *Store) snapshotLocked() State {
	return State{Identity: s.identity, Profile: s.profile, Loading: s.loading}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) Identity() *domain.Identity { return s.State().Identity }

func (s *Store) Profile() *domain.Profile { return s.State().Profile }

func (s *Store) Loading() bool { return s.State().Loading }
