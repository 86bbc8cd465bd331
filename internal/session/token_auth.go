package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"frecks-web/internal/domain"
	"frecks-web/pkg/auth"
)

// TokenVerifier validates a Supabase access token.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// GoTrue is the subset of the Supabase auth API used per browser.
type GoTrue interface {
	RefreshSession(ctx context.Context, refreshToken string) (*domain.AuthTokens, error)
	SignOut(ctx context.Context, accessToken string) error
}

// TokenAuth is the AuthClient of one browser. It keeps the browser's
// Supabase tokens in its Record and emits auth-state changes when they are
// set, refreshed or cleared.
type TokenAuth struct {
	browserID string
	records   Persistence
	ttl       time.Duration
	verifier  TokenVerifier
	gotrue    GoTrue
	log       *slog.Logger

	mu        sync.Mutex
	listeners map[int]func(AuthState)
	next      int
}

func NewTokenAuth(browserID string, records Persistence, ttl time.Duration, verifier TokenVerifier, gotrue GoTrue, log *slog.Logger) *TokenAuth {
	if log == nil {
		log = slog.Default()
	}
	return &TokenAuth{
		browserID: browserID,
		records:   records,
		ttl:       ttl,
		verifier:  verifier,
		gotrue:    gotrue,
		log:       log,
		listeners: make(map[int]func(AuthState)),
	}
}

// GetSession returns the identity behind the stored access token, refreshing
// it silently when it no longer verifies. It returns nil when signed out.
func (a *TokenAuth) GetSession(ctx context.Context) (*domain.Identity, error) {
	rec, err := a.records.Load(ctx, a.browserID)
	if err != nil {
		return nil, fmt.Errorf("session: load record: %w", err)
	}
	if rec == nil || rec.AccessToken == "" {
		return nil, nil
	}

	if claims, err := a.verifier.Verify(rec.AccessToken); err == nil {
		return identityFromClaims(claims, rec.AccessToken), nil
	}

	if rec.RefreshToken == "" {
		return nil, a.clear(ctx)
	}
	ident, err := a.refresh(ctx, rec.RefreshToken)
	if err != nil {
		a.log.Info("stored session could not be refreshed", "error", err)
		return nil, a.clear(ctx)
	}
	return ident, nil
}

func (a *TokenAuth) AccessToken(ctx context.Context) (string, error) {
	rec, err := a.records.Load(ctx, a.browserID)
	if err != nil {
		return "", fmt.Errorf("session: load record: %w", err)
	}
	if rec == nil {
		return "", nil
	}
	return rec.AccessToken, nil
}

// SetSession stores tokens obtained from a sign-in and announces SIGNED_IN.
func (a *TokenAuth) SetSession(ctx context.Context, tokens *domain.AuthTokens) (*domain.Identity, error) {
	ident, err := a.store(ctx, tokens)
	if err != nil {
		return nil, err
	}
	a.emit(AuthState{Event: EventSignedIn, Identity: ident})
	return ident, nil
}

// RefreshIfExpiring refreshes the access token when it expires within window
// and announces TOKEN_REFRESHED.
func (a *TokenAuth) RefreshIfExpiring(ctx context.Context, window time.Duration) error {
	rec, err := a.records.Load(ctx, a.browserID)
	if err != nil || rec == nil || rec.RefreshToken == "" {
		return err
	}
	if time.Until(rec.ExpiresAt) > window {
		return nil
	}

	ident, err := a.refresh(ctx, rec.RefreshToken)
	if err != nil {
		a.log.Info("token refresh failed, signing out browser", "error", err)
		if cerr := a.clear(ctx); cerr != nil {
			return cerr
		}
		a.emit(AuthState{Event: EventSignedOut})
		return nil
	}
	a.emit(AuthState{Event: EventTokenRefreshed, Identity: ident})
	return nil
}

// SignOut revokes the session upstream (best effort), drops the tokens and
// announces SIGNED_OUT.
func (a *TokenAuth) SignOut(ctx context.Context) error {
	rec, err := a.records.Load(ctx, a.browserID)
	if err != nil {
		return fmt.Errorf("session: load record: %w", err)
	}

	var upstreamErr error
	if rec != nil && rec.AccessToken != "" {
		upstreamErr = a.gotrue.SignOut(ctx, rec.AccessToken)
	}
	if err := a.clear(ctx); err != nil {
		return err
	}
	a.emit(AuthState{Event: EventSignedOut})
	return upstreamErr
}

func (a *TokenAuth) OnAuthStateChange(fn func(AuthState)) (unsubscribe func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := a.next
	a.next++
	a.listeners[key] = fn
	return func() {
		a.mu.Lock()
		delete(a.listeners, key)
		a.mu.Unlock()
	}
}

func (a *TokenAuth) refresh(ctx context.Context, refreshToken string) (*domain.Identity, error) {
	tokens, err := a.gotrue.RefreshSession(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return a.store(ctx, tokens)
}

func (a *TokenAuth) store(ctx context.Context, tokens *domain.AuthTokens) (*domain.Identity, error) {
	claims, err := a.verifier.Verify(tokens.AccessToken)
	if err != nil {
		return nil, err
	}
	err = a.records.Update(ctx, a.browserID, a.ttl, func(r *Record) {
		r.AccessToken = tokens.AccessToken
		r.RefreshToken = tokens.RefreshToken
		r.UserID = claims.Subject
		r.ExpiresAt = tokens.ExpiresAt
		if r.ExpiresAt.IsZero() {
			r.ExpiresAt = claims.ExpiresAt
		}
	})
	if err != nil {
		return nil, fmt.Errorf("session: save record: %w", err)
	}
	return identityFromClaims(claims, tokens.AccessToken), nil
}

func (a *TokenAuth) clear(ctx context.Context) error {
	return a.records.Update(ctx, a.browserID, a.ttl, func(r *Record) {
		r.ClearTokens()
	})
}

func (a *TokenAuth) emit(state AuthState) {
	a.mu.Lock()
	fns := make([]func(AuthState), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(state)
	}
}

func identityFromClaims(c *auth.Claims, accessToken string) *domain.Identity {
	return &domain.Identity{
		ID:          c.Subject,
		Email:       c.Email,
		AccessToken: accessToken,
		ExpiresAt:   c.ExpiresAt,
	}
}
