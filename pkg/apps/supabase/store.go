package supabase

import (
	"context"
	"fmt"
	"time"

	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
)

// PGStore implements Store against the project's Postgres database.
type PGStore struct {
	db *pgdb.DB
}

// NewPGStore wraps an open connection pool.
func NewPGStore(db *pgdb.DB) *PGStore {
	return &PGStore{db: db}
}

// BackdateAuthUser rewrites the GoTrue-stamped timestamps on auth.users.
func (s *PGStore) BackdateAuthUser(ctx context.Context, userID string, createdAt, lastSignInAt time.Time) error {
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE auth.users
		SET created_at = $1,
		    last_sign_in_at = $2
		WHERE id = $3`,
		createdAt, lastSignInAt, userID)
	if err != nil {
		return fmt.Errorf("backdate auth user %s: %w", userID, err)
	}
	return nil
}

func (s *PGStore) ExistingBrandNames(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT name FROM public.brands`)
	if err != nil {
		return nil, fmt.Errorf("list brands: %w", err)
	}
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names[name] = true
	}
	return names, rows.Err()
}

func (s *PGStore) InsertBrand(ctx context.Context, row BrandRow) error {
	_, err := s.db.Pool.Exec(ctx, `
		INSERT INTO public.brands (id, name, description, logo_url, created_at)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)`,
		row.ID, row.Name, row.Description, row.LogoURL, row.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert brand %q: %w", row.Name, err)
	}
	return nil
}
