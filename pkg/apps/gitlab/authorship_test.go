package gitlab

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixturelab/platformseed/pkg/clients/gitlab"
)

type stubAuthorStore struct {
	issuesByAuthorFunc func(ctx context.Context, authorID int) ([]AuthoredItem, error)
	mrsByAuthorFunc    func(ctx context.Context, authorID int) ([]AuthoredItem, error)
	reassignIssueFunc  func(ctx context.Context, issueID, fromAuthorID, toAuthorID int) (bool, error)
	reassignMRFunc     func(ctx context.Context, mrID, fromAuthorID, toAuthorID int) (bool, error)
}

func (s *stubAuthorStore) IssuesByAuthor(ctx context.Context, authorID int) ([]AuthoredItem, error) {
	if s.issuesByAuthorFunc != nil {
		return s.issuesByAuthorFunc(ctx, authorID)
	}
	return nil, nil
}

func (s *stubAuthorStore) MergeRequestsByAuthor(ctx context.Context, authorID int) ([]AuthoredItem, error) {
	if s.mrsByAuthorFunc != nil {
		return s.mrsByAuthorFunc(ctx, authorID)
	}
	return nil, nil
}

func (s *stubAuthorStore) ReassignIssueAuthor(ctx context.Context, issueID, fromAuthorID, toAuthorID int) (bool, error) {
	if s.reassignIssueFunc != nil {
		return s.reassignIssueFunc(ctx, issueID, fromAuthorID, toAuthorID)
	}
	return true, nil
}

func (s *stubAuthorStore) ReassignMergeRequestAuthor(ctx context.Context, mrID, fromAuthorID, toAuthorID int) (bool, error) {
	if s.reassignMRFunc != nil {
		return s.reassignMRFunc(ctx, mrID, fromAuthorID, toAuthorID)
	}
	return true, nil
}

func TestReassignImportedAuthorsRewritesToProjectMembers(t *testing.T) {
	api := &stubAPI{
		searchUsersFunc: func(ctx context.Context, query string) ([]gitlab.User, error) {
			return []gitlab.User{
				{ID: 4, Name: "Paula Importer", Username: "paula"},
				{ID: 9, Name: "GitLab Import Bot", Username: "import-bot"},
			}, nil
		},
		listProjectMembersFunc: func(ctx context.Context, projectID int) ([]gitlab.Member, error) {
			return []gitlab.Member{{ID: 9, Username: "import-bot"}, {ID: 21, Username: "dev1"}}, nil
		},
	}

	var issueReassigns, mrReassigns [][3]int
	authors := &stubAuthorStore{
		issuesByAuthorFunc: func(ctx context.Context, authorID int) ([]AuthoredItem, error) {
			assert.Equal(t, 9, authorID)
			return []AuthoredItem{{ID: 100, IID: 1, ProjectID: 7, Title: "Imported issue"}}, nil
		},
		mrsByAuthorFunc: func(ctx context.Context, authorID int) ([]AuthoredItem, error) {
			return []AuthoredItem{{ID: 200, IID: 3, ProjectID: 7, Title: "Imported MR"}}, nil
		},
		reassignIssueFunc: func(ctx context.Context, issueID, fromAuthorID, toAuthorID int) (bool, error) {
			issueReassigns = append(issueReassigns, [3]int{issueID, fromAuthorID, toAuthorID})
			return true, nil
		},
		reassignMRFunc: func(ctx context.Context, mrID, fromAuthorID, toAuthorID int) (bool, error) {
			mrReassigns = append(mrReassigns, [3]int{mrID, fromAuthorID, toAuthorID})
			return true, nil
		},
	}

	s := newTestSeeder(t, api, authors)
	require.NoError(t, s.ReassignImportedAuthors(context.Background()))

	// "GitLab Import Bot" wins over "Paula Importer" despite ordering, and
	// the bot itself is never a reassignment target.
	require.Len(t, issueReassigns, 1)
	assert.Equal(t, [3]int{100, 9, 21}, issueReassigns[0])
	require.Len(t, mrReassigns, 1)
	assert.Equal(t, [3]int{200, 9, 21}, mrReassigns[0])
}

func TestReassignImportedAuthorsSkipsMemberlessProjects(t *testing.T) {
	api := &stubAPI{
		searchUsersFunc: func(ctx context.Context, query string) ([]gitlab.User, error) {
			return []gitlab.User{{ID: 9, Name: "Import Bot"}}, nil
		},
		listProjectMembersFunc: func(ctx context.Context, projectID int) ([]gitlab.Member, error) {
			return []gitlab.Member{{ID: 9, Username: "import-bot"}}, nil
		},
	}

	reassigned := 0
	authors := &stubAuthorStore{
		issuesByAuthorFunc: func(ctx context.Context, authorID int) ([]AuthoredItem, error) {
			return []AuthoredItem{{ID: 100, IID: 1, ProjectID: 7}}, nil
		},
		reassignIssueFunc: func(ctx context.Context, issueID, fromAuthorID, toAuthorID int) (bool, error) {
			reassigned++
			return true, nil
		},
	}

	s := newTestSeeder(t, api, authors)
	require.NoError(t, s.ReassignImportedAuthors(context.Background()))
	assert.Zero(t, reassigned)
}

func TestReassignImportedAuthorsRequiresDatabase(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{}, nil)
	err := s.ReassignImportedAuthors(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database configured")
}

func TestSeedProjectsAddsMembersAndSurvivesMemberErrors(t *testing.T) {
	added := 0
	api := &stubAPI{
		listUsersFunc: func(ctx context.Context) ([]gitlab.User, error) {
			return []gitlab.User{
				{ID: 11, Username: "dev1"},
				{ID: 12, Username: "dev2"},
				{ID: 13, Username: "dev3"},
			}, nil
		},
		addProjectMemberFunc: func(ctx context.Context, projectID, userID, accessLevel int) error {
			assert.Equal(t, developerAccess, accessLevel)
			added++
			return assert.AnError
		},
	}
	s := newTestSeeder(t, api, nil)

	projects := []ProjectRecord{{Name: "billing-service", Description: "Invoicing", MemberCount: 2}}
	require.NoError(t, s.projectCache().Write(projects))

	summary, err := s.SeedProjects(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Zero(t, summary.Failed)
	assert.Positive(t, added)
}
