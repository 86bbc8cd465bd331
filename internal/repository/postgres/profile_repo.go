package postgres

import (
	"context"
	"errors"

	"frecks-web/internal/domain"
	"frecks-web/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type profileRepo struct {
	db *pgxpool.Pool
}

// NewProfileRepository reads profiles straight from the Supabase Postgres database.
func NewProfileRepository(db *pgxpool.Pool) domain.ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT id, email, full_name, role, gender, school, avatar_name, avatar_url
              FROM profiles WHERE id = $1`
	var (
		p        domain.Profile
		email    *string
		fullName *string
		role     *string
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &email, &fullName, &role, &p.Gender, &p.School, &p.AvatarName, &p.AvatarURL,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("Profile not found")
		}
		return nil, err
	}

	if email != nil {
		p.Email = *email
	}
	if fullName != nil {
		p.FullName = *fullName
	}
	p.Role = domain.RoleUser
	if role != nil && *role != "" {
		p.Role = domain.Role(*role)
	}
	return &p, nil
}
