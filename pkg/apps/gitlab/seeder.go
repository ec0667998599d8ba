// Package gitlab seeds a GitLab instance: users, projects with members,
// and issues over the v4 REST API. Records imported under a bot account can
// be reassigned to real project members directly in the database, since the
// API forbids changing an author.
package gitlab

import (
	"context"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/gitlab"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

const developerAccess = 30

// API is the slice of the GitLab client the seeder needs; tests stub it.
type API interface {
	ListUsers(ctx context.Context) ([]gitlab.User, error)
	CreateUser(ctx context.Context, name, username, email, password string) (*gitlab.User, error)
	SearchUsers(ctx context.Context, query string) ([]gitlab.User, error)
	ListProjects(ctx context.Context) ([]gitlab.Project, error)
	CreateProject(ctx context.Context, name, description string) (*gitlab.Project, error)
	ListProjectMembers(ctx context.Context, projectID int) ([]gitlab.Member, error)
	AddProjectMember(ctx context.Context, projectID, userID, accessLevel int) error
	ListIssues(ctx context.Context, projectID int) ([]gitlab.Issue, error)
	CreateIssue(ctx context.Context, projectID int, title, description string, assigneeID int) (*gitlab.Issue, error)
}

// AuthorStore is the database surface for authorship rewrites; tests stub it.
type AuthorStore interface {
	IssuesByAuthor(ctx context.Context, authorID int) ([]AuthoredItem, error)
	MergeRequestsByAuthor(ctx context.Context, authorID int) ([]AuthoredItem, error)
	ReassignIssueAuthor(ctx context.Context, issueID, fromAuthorID, toAuthorID int) (bool, error)
	ReassignMergeRequestAuthor(ctx context.Context, mrID, fromAuthorID, toAuthorID int) (bool, error)
}

// Seeder drives generation and seeding for one GitLab instance.
type Seeder struct {
	api     API
	authors AuthorStore
	llm     llm.Client
	faker   *fake.Faker
	runner  *pipeline.Runner
	dir     string
	logger  *zap.Logger
}

// NewSeeder wires a seeder from its dependencies. authors may be nil when no
// database access is configured; only ReassignImportedAuthors needs it.
func NewSeeder(api API, authors AuthorStore, llmClient llm.Client, dir string, workers int, logger *zap.Logger) *Seeder {
	log := logger.Named("gitlab")
	return &Seeder{
		api:     api,
		authors: authors,
		llm:     llmClient,
		faker:   fake.New(),
		runner:  pipeline.NewRunner(workers, log),
		dir:     dir,
		logger:  log,
	}
}
