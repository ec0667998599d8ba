package gitlab

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// IssueRecord is a generated issue fixture attached to a cached project by
// name.
type IssueRecord struct {
	Project     string `json:"project"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Seeder) issueCache() *pipeline.Cache[IssueRecord] {
	return pipeline.NewCache[IssueRecord](s.dir, "issues")
}

func issuePrompt(projectNames []string) pipeline.PromptFunc {
	return func(n int) llm.Request {
		return llm.Request{
			System: "You generate realistic issue tracker fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
			Prompt: fmt.Sprintf(`Generate EXACTLY %d issues for these software projects: %v.

Each element must have:
- "project": one of the project names above, verbatim
- "title": short imperative issue title, unique within its project
- "description": 2-4 sentences with reproduction steps or acceptance criteria in Markdown

Mix bug reports, feature requests, and chores; spread issues across the projects.`, n, projectNames),
		}
	}
}

// GenerateIssues asks the LLM for exactly count issues spread across the
// cached projects and caches them.
func (s *Seeder) GenerateIssues(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate issues: no LLM client configured")
	}

	projects, err := s.projectCache().Read()
	if err != nil {
		return fmt.Errorf("generate issues: %w", err)
	}
	names := make([]string, len(projects))
	for i, p := range projects {
		names[i] = p.Name
	}

	issues, err := pipeline.GenerateRecords[IssueRecord](ctx, s.llm, s.logger, issuePrompt(names), count)
	if err != nil {
		return fmt.Errorf("generate issues: %w", err)
	}

	valid := make(map[string]bool, len(names))
	for _, n := range names {
		valid[n] = true
	}
	for i := range issues {
		if !valid[issues[i].Project] {
			issues[i].Project = fake.Pick(s.faker, names)
		}
	}

	if err := s.issueCache().Write(issues); err != nil {
		return err
	}
	s.logger.Info("generated issues", zap.Int("count", count))
	return nil
}

// SeedIssues opens the cached issues in their projects, assigning each to a
// random project member. Titles are the natural key within a project.
func (s *Seeder) SeedIssues(ctx context.Context) (pipeline.Summary, error) {
	issues, ok, err := pipeline.Load(s.issueCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "issues"}, err
	}

	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "issues"}, fmt.Errorf("list projects: %w", err)
	}
	projectIDs := make(map[string]int, len(projects))
	for _, p := range projects {
		projectIDs[p.Name] = p.ID
	}

	existingTitles := make(map[int]map[string]bool)
	members := make(map[int][]int)

	summary := pipeline.RunSequential(ctx, s.logger, "issues", issues,
		func(i IssueRecord) string { return i.Project + "/" + i.Title },
		func(ctx context.Context, i IssueRecord) (pipeline.Status, error) {
			projectID, found := projectIDs[i.Project]
			if !found {
				return pipeline.StatusFailed,
					fmt.Errorf("project %q: %w", i.Project, apperrors.ErrMissingUpstream)
			}

			titles, cached := existingTitles[projectID]
			if !cached {
				open, err := s.api.ListIssues(ctx, projectID)
				if err != nil {
					return pipeline.StatusFailed, err
				}
				titles = make(map[string]bool, len(open))
				for _, existing := range open {
					titles[existing.Title] = true
				}
				existingTitles[projectID] = titles

				projectMembers, err := s.api.ListProjectMembers(ctx, projectID)
				if err != nil {
					return pipeline.StatusFailed, err
				}
				for _, m := range projectMembers {
					members[projectID] = append(members[projectID], m.ID)
				}
			}
			if titles[i.Title] {
				return pipeline.StatusSkipped, nil
			}

			assigneeID := 0
			if ids := members[projectID]; len(ids) > 0 {
				assigneeID = fake.Pick(s.faker, ids)
			}
			if _, err := s.api.CreateIssue(ctx, projectID, i.Title, i.Description, assigneeID); err != nil {
				return pipeline.StatusFailed, err
			}
			titles[i.Title] = true
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertIssues generates count issues and immediately seeds them.
func (s *Seeder) InsertIssues(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateIssues(ctx, count); err != nil {
		return pipeline.Summary{Entity: "issues"}, err
	}
	return s.SeedIssues(ctx)
}
