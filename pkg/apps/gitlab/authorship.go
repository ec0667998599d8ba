package gitlab

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
)

// AuthoredItem is one issue or merge request row authored by the import
// account.
type AuthoredItem struct {
	ID        int
	IID       int
	ProjectID int
	Title     string
}

// ReassignImportedAuthors finds the import bot account and rewrites the
// author of every issue and merge request it owns to a random member of the
// item's project. The API has no way to change an author, so the rewrite
// goes straight to the database.
func (s *Seeder) ReassignImportedAuthors(ctx context.Context) error {
	if s.authors == nil {
		return fmt.Errorf("reassign authors: no database configured")
	}

	importID, err := s.findImportUser(ctx)
	if err != nil {
		return err
	}

	members := make(map[int][]int)
	memberIDs := func(projectID int) ([]int, error) {
		if ids, cached := members[projectID]; cached {
			return ids, nil
		}
		projectMembers, err := s.api.ListProjectMembers(ctx, projectID)
		if err != nil {
			return nil, err
		}
		var ids []int
		for _, m := range projectMembers {
			if m.ID != importID {
				ids = append(ids, m.ID)
			}
		}
		members[projectID] = ids
		return ids, nil
	}

	issues, err := s.authors.IssuesByAuthor(ctx, importID)
	if err != nil {
		return fmt.Errorf("list imported issues: %w", err)
	}
	mrs, err := s.authors.MergeRequestsByAuthor(ctx, importID)
	if err != nil {
		return fmt.Errorf("list imported merge requests: %w", err)
	}

	reassigned := 0
	for _, issue := range issues {
		ids, err := memberIDs(issue.ProjectID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			s.logger.Warn("no members to take over issue",
				zap.Int("project_id", issue.ProjectID), zap.Int("iid", issue.IID))
			continue
		}
		ok, err := s.authors.ReassignIssueAuthor(ctx, issue.ID, importID, fake.Pick(s.faker, ids))
		if err != nil {
			return fmt.Errorf("reassign issue #%d: %w", issue.IID, err)
		}
		if ok {
			reassigned++
		}
	}
	for _, mr := range mrs {
		ids, err := memberIDs(mr.ProjectID)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			s.logger.Warn("no members to take over merge request",
				zap.Int("project_id", mr.ProjectID), zap.Int("iid", mr.IID))
			continue
		}
		ok, err := s.authors.ReassignMergeRequestAuthor(ctx, mr.ID, importID, fake.Pick(s.faker, ids))
		if err != nil {
			return fmt.Errorf("reassign merge request !%d: %w", mr.IID, err)
		}
		if ok {
			reassigned++
		}
	}

	s.logger.Info("reassigned imported authorship",
		zap.Int("issues", len(issues)),
		zap.Int("merge_requests", len(mrs)),
		zap.Int("reassigned", reassigned))
	return nil
}

// findImportUser locates the account imports ran under, preferring a user
// with "import" in the display name.
func (s *Seeder) findImportUser(ctx context.Context) (int, error) {
	users, err := s.api.SearchUsers(ctx, "import")
	if err != nil {
		return 0, fmt.Errorf("search import user: %w", err)
	}
	if len(users) == 0 {
		return 0, fmt.Errorf("no import user found")
	}
	for _, u := range users {
		if strings.Contains(strings.ToLower(u.Name), "import") {
			return u.ID, nil
		}
	}
	return users[0].ID, nil
}
