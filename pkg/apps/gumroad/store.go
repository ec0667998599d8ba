package gumroad

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fixturelab/platformseed/pkg/clients/mysqldb"
)

// FollowerRow mirrors the followers table columns the seeder writes.
type FollowerRow struct {
	FollowedID  int64
	Email       string
	Source      string
	CreatedAt   string
	UpdatedAt   string
	ConfirmedAt string
}

// AudienceMemberRow mirrors the audience_members columns the seeder writes.
type AudienceMemberRow struct {
	SellerID          int64
	Email             string
	FollowerID        int64
	CreatedAt         string
	UpdatedAt         string
	FollowerCreatedAt string
}

// MySQLStore implements Store against the Gumroad database.
type MySQLStore struct {
	db *mysqldb.DB
}

// NewMySQLStore wraps an open connection pool.
func NewMySQLStore(db *mysqldb.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// FollowerID returns the row ID of the seller's follower for the email, if
// one exists. Re-runs stitch audience rows against this ID.
func (s *MySQLStore) FollowerID(ctx context.Context, sellerID int64, email string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM followers WHERE followed_id = ? AND email = ? LIMIT 1`,
		sellerID, email).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("check follower %s: %w", email, err)
	}
	return id, true, nil
}

// AudienceMemberExists reports whether the seller already has an audience
// row for the email.
func (s *MySQLStore) AudienceMemberExists(ctx context.Context, sellerID int64, email string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id FROM audience_members WHERE seller_id = ? AND email = ? LIMIT 1`,
		sellerID, email).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check audience member %s: %w", email, err)
	}
	return true, nil
}

// InsertFollower inserts one follower row and returns its generated ID.
func (s *MySQLStore) InsertFollower(ctx context.Context, f FollowerRow) (int64, error) {
	confirmedAt := sql.NullString{String: f.ConfirmedAt, Valid: f.ConfirmedAt != ""}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO followers (
			followed_id, email, created_at, updated_at, follower_user_id,
			source, source_product_id, confirmed_at, deleted_at
		) VALUES (?, ?, ?, ?, NULL, ?, NULL, ?, NULL)`,
		f.FollowedID, f.Email, f.CreatedAt, f.UpdatedAt, f.Source, confirmedAt)
	if err != nil {
		return 0, fmt.Errorf("insert follower %s: %w", f.Email, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("follower id for %s: %w", f.Email, err)
	}
	return id, nil
}

// InsertAudienceMember inserts the audience_members row for a follower. The
// details JSON carries the resolved follower row ID, never a temp ID.
func (s *MySQLStore) InsertAudienceMember(ctx context.Context, m AudienceMemberRow) error {
	details := fmt.Sprintf(`{"follower":{"id":%d,"created_at":%q}}`, m.FollowerID, m.FollowerCreatedAt)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audience_members (
			seller_id, email, details, created_at, updated_at,
			customer, follower, affiliate,
			min_paid_cents, max_paid_cents, min_created_at, max_created_at,
			min_purchase_created_at, max_purchase_created_at, follower_created_at,
			min_affiliate_created_at, max_affiliate_created_at
		) VALUES (?, ?, ?, ?, ?, 0, 1, 0, NULL, NULL, ?, ?, NULL, NULL, ?, NULL, NULL)`,
		m.SellerID, m.Email, details, m.CreatedAt, m.UpdatedAt,
		m.CreatedAt, m.CreatedAt, m.FollowerCreatedAt)
	if err != nil {
		return fmt.Errorf("insert audience member %s: %w", m.Email, err)
	}
	return nil
}

// MarkUnfollowed soft-deletes a follower row.
func (s *MySQLStore) MarkUnfollowed(ctx context.Context, followerID int64, deletedAt, updatedAt string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE followers SET deleted_at = ?, updated_at = ? WHERE id = ?`,
		deletedAt, updatedAt, followerID)
	if err != nil {
		return fmt.Errorf("mark follower %d unfollowed: %w", followerID, err)
	}
	return nil
}

// ClearFollowerFlag drops the follower flag on the audience row after an
// unfollow.
func (s *MySQLStore) ClearFollowerFlag(ctx context.Context, sellerID int64, email, updatedAt string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE audience_members SET follower = 0, updated_at = ? WHERE email = ? AND seller_id = ?`,
		updatedAt, email, sellerID)
	if err != nil {
		return fmt.Errorf("clear follower flag for %s: %w", email, err)
	}
	return nil
}
