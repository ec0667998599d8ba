package gitlab

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// ProjectRecord is a generated project fixture.
type ProjectRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	MemberCount int    `json:"member_count"`
}

func (s *Seeder) projectCache() *pipeline.Cache[ProjectRecord] {
	return pipeline.NewCache[ProjectRecord](s.dir, "projects")
}

func projectPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic software project fixtures for a source forge. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d software projects as a JSON array.

Each element must have:
- "name": short project name in kebab-case or Title Case, unique
- "description": one sentence saying what the project does

Mix services, libraries, and internal tools of one engineering org.`, n),
	}
}

// GenerateProjects asks the LLM for exactly count project fixtures and
// caches them with a target member count each.
func (s *Seeder) GenerateProjects(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate projects: no LLM client configured")
	}

	projects, err := pipeline.GenerateRecords[ProjectRecord](ctx, s.llm, s.logger, projectPrompt, count)
	if err != nil {
		return fmt.Errorf("generate projects: %w", err)
	}
	for i := range projects {
		projects[i].MemberCount = s.faker.IntRange(2, 5)
	}

	if err := s.projectCache().Write(projects); err != nil {
		return err
	}
	s.logger.Info("generated projects", zap.Int("count", count))
	return nil
}

// SeedProjects creates the cached projects and grants a handful of random
// users developer access to each. Project names are the natural key.
func (s *Seeder) SeedProjects(ctx context.Context) (pipeline.Summary, error) {
	projects, ok, err := pipeline.Load(s.projectCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "projects"}, err
	}

	existing, err := s.api.ListProjects(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "projects"}, fmt.Errorf("precheck projects: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.Name] = true
	}

	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "projects"}, fmt.Errorf("list users: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "projects", projects,
		func(p ProjectRecord) string { return p.Name },
		func(ctx context.Context, p ProjectRecord) (pipeline.Status, error) {
			if seen[p.Name] {
				return pipeline.StatusSkipped, nil
			}
			created, err := s.api.CreateProject(ctx, p.Name, p.Description)
			if err != nil {
				return pipeline.StatusFailed, err
			}

			picked := make(map[int]bool)
			for i := 0; i < p.MemberCount && i < len(users); i++ {
				user := fake.Pick(s.faker, users)
				if picked[user.ID] {
					continue
				}
				picked[user.ID] = true
				if err := s.api.AddProjectMember(ctx, created.ID, user.ID, developerAccess); err != nil {
					// Adding the token's own user, or a race with another
					// run, answers 409; the project itself is fine.
					s.logger.Debug("member not added",
						zap.String("project", p.Name),
						zap.String("user", user.Username),
						zap.Error(err))
				}
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertProjects generates count projects and immediately seeds them.
func (s *Seeder) InsertProjects(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateProjects(ctx, count); err != nil {
		return pipeline.Summary{Entity: "projects"}, err
	}
	return s.SeedProjects(ctx)
}
