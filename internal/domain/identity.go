package domain

import (
	"context"
	"time"
)

type Role string

const (
	RoleUser    Role = "user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

// Identity is the auth provider's view of the signed-in user.
type Identity struct {
	ID          string    `json:"id"` // Supabase UUID
	Email       string    `json:"email"`
	AccessToken string    `json:"-"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Profile is the extended user record stored in the profiles table.
type Profile struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	FullName   string  `json:"full_name"`
	Role       Role    `json:"role"`
	Gender     *string `json:"gender,omitempty"`
	School     *string `json:"school,omitempty"`
	AvatarName *string `json:"avatar_name,omitempty"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
}

// ProfileColumns is the column list used by every profile source.
const ProfileColumns = "id,email,full_name,role,gender,school,avatar_name,avatar_url"

// ProfileRepository reads profile rows. Implementations that enforce row
// level security read the caller's access token with AccessToken(ctx).
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
}

// AuthTokens is what Supabase returns from a password or refresh grant.
type AuthTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
}
