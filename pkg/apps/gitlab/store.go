package gitlab

import (
	"context"
	"fmt"

	"github.com/fixturelab/platformseed/pkg/clients/pgdb"
)

// PGAuthorStore implements AuthorStore against the GitLab database.
type PGAuthorStore struct {
	db *pgdb.DB
}

// NewPGAuthorStore wraps an open connection pool.
func NewPGAuthorStore(db *pgdb.DB) *PGAuthorStore {
	return &PGAuthorStore{db: db}
}

func (s *PGAuthorStore) IssuesByAuthor(ctx context.Context, authorID int) ([]AuthoredItem, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, iid, project_id, title
		FROM issues
		WHERE author_id = $1
		ORDER BY id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("issues by author %d: %w", authorID, err)
	}
	defer rows.Close()
	return scanAuthoredItems(rows)
}

func (s *PGAuthorStore) MergeRequestsByAuthor(ctx context.Context, authorID int) ([]AuthoredItem, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT id, iid, target_project_id, title
		FROM merge_requests
		WHERE author_id = $1
		ORDER BY id`, authorID)
	if err != nil {
		return nil, fmt.Errorf("merge requests by author %d: %w", authorID, err)
	}
	defer rows.Close()
	return scanAuthoredItems(rows)
}

type pgRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAuthoredItems(rows pgRows) ([]AuthoredItem, error) {
	var items []AuthoredItem
	for rows.Next() {
		var item AuthoredItem
		if err := rows.Scan(&item.ID, &item.IID, &item.ProjectID, &item.Title); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ReassignIssueAuthor rewrites the author of one issue, guarded on the
// current author so a concurrent change is never clobbered.
func (s *PGAuthorStore) ReassignIssueAuthor(ctx context.Context, issueID, fromAuthorID, toAuthorID int) (bool, error) {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE issues
		SET author_id = $1, updated_at = NOW()
		WHERE id = $2 AND author_id = $3`,
		toAuthorID, issueID, fromAuthorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReassignMergeRequestAuthor rewrites the author of one merge request.
func (s *PGAuthorStore) ReassignMergeRequestAuthor(ctx context.Context, mrID, fromAuthorID, toAuthorID int) (bool, error) {
	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE merge_requests
		SET author_id = $1, updated_at = NOW()
		WHERE id = $2 AND author_id = $3`,
		toAuthorID, mrID, fromAuthorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
