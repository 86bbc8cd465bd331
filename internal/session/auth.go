package session

import (
	"context"

	"frecks-web/internal/domain"
)

// AuthEvent names an auth-state transition, using Supabase's event vocabulary.
type AuthEvent string

const (
	EventInitialSession AuthEvent = "INITIAL_SESSION"
	EventSignedIn       AuthEvent = "SIGNED_IN"
	EventSignedOut      AuthEvent = "SIGNED_OUT"
	EventTokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

// AuthState is delivered to auth-state-change listeners. Identity is nil when signed out.
type AuthState struct {
	Event    AuthEvent
	Identity *domain.Identity
}

// AuthClient is the auth collaborator the Store depends on.
type AuthClient interface {
	GetSession(ctx context.Context) (*domain.Identity, error)
	// AccessToken returns the current access token without verifying or
	// refreshing it, or "" when signed out.
	AccessToken(ctx context.Context) (string, error)
	OnAuthStateChange(fn func(AuthState)) (unsubscribe func())
	SignOut(ctx context.Context) error
}
