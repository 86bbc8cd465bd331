package supabase

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"frecks-web/internal/domain"
	"frecks-web/pkg/apperror"
	sb "frecks-web/pkg/supabase"
)

type profileRepo struct {
	client *sb.Client
}

// NewProfileRepository reads profiles through Supabase PostgREST.
func NewProfileRepository(client *sb.Client) domain.ProfileRepository {
	return &profileRepo{client: client}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	q := url.Values{
		"id":     {"eq." + id},
		"select": {domain.ProfileColumns},
	}
	var p domain.Profile
	// profiles is owner-readable only, so the read runs as the signed-in user
	if err := r.client.SelectOne(ctx, "profiles", domain.AccessToken(ctx), q, &p); err != nil {
		// PostgREST answers 406 when a single-object read matches no row
		var apiErr *sb.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotAcceptable {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, err
	}
	if p.Role == "" {
		p.Role = domain.RoleUser
	}
	return &p, nil
}
