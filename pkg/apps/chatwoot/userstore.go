package chatwoot

import (
	"context"
	"fmt"
	"time"

	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
	"github.com/fixturelab/platformseed/pkg/fake"
)

// PGUserStore applies user fixups directly against the Chatwoot database.
// The REST API exposes neither encrypted_password nor timestamps, so this is
// the only route.
type PGUserStore struct {
	db    *pgdb.DB
	faker *fake.Faker
}

// NewPGUserStore wraps an open connection pool.
func NewPGUserStore(db *pgdb.DB) *PGUserStore {
	return &PGUserStore{db: db, faker: fake.New()}
}

// AdminPasswordHash reads the devise hash of user 1, the account owner.
func (s *PGUserStore) AdminPasswordHash(ctx context.Context) (string, error) {
	var hash string
	err := s.db.Pool.QueryRow(ctx,
		`SELECT encrypted_password FROM users WHERE id = 1`).Scan(&hash)
	if err != nil {
		return "", fmt.Errorf("read admin password hash: %w", err)
	}
	return hash, nil
}

// ListUserIDs returns every user id in the account.
func (s *PGUserStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.db.Pool.Query(ctx, `SELECT id FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ApplyUserFixup backdates one user and installs the shared password hash,
// clearing any pending reset token.
func (s *PGUserStore) ApplyUserFixup(ctx context.Context, userID int64, passwordHash string) error {
	times := s.faker.TimeChain(3, 365*24*time.Hour)
	_, err := s.db.Pool.Exec(ctx, `
		UPDATE users
		SET created_at = $1,
		    confirmed_at = $2,
		    updated_at = $3,
		    encrypted_password = $4,
		    reset_password_token = NULL,
		    reset_password_sent_at = NULL
		WHERE id = $5`,
		times[0], times[1], times[2], passwordHash, userID)
	return err
}
