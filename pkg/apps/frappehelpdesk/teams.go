package frappehelpdesk

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// TeamRecord is a generated helpdesk team fixture.
type TeamRecord struct {
	TeamName    string `json:"team_name"`
	Description string `json:"description"`
}

func (s *Seeder) teamCache() *pipeline.Cache[TeamRecord] {
	return pipeline.NewCache[TeamRecord](s.dir, "teams")
}

func teamPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic helpdesk team fixtures. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d customer support teams as a JSON array.

Each element must have:
- "team_name": short unique team name (Technical Support, Billing, Escalations and the like)
- "description": one sentence on the team's responsibilities

Cover different support functions; no duplicate names.`, n),
	}
}

// GenerateTeams asks the LLM for exactly count team fixtures and caches
// them.
func (s *Seeder) GenerateTeams(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate teams: no LLM client configured")
	}

	teams, err := pipeline.GenerateRecords[TeamRecord](ctx, s.llm, s.logger, teamPrompt, count)
	if err != nil {
		return fmt.Errorf("generate teams: %w", err)
	}

	if err := s.teamCache().Write(teams); err != nil {
		return err
	}
	s.logger.Info("generated teams", zap.Int("count", count))
	return nil
}

// SeedTeams creates the cached teams, skipping names that already exist.
func (s *Seeder) SeedTeams(ctx context.Context) (pipeline.Summary, error) {
	teams, ok, err := pipeline.Load(s.teamCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "teams"}, err
	}

	seen, err := s.existingValues(ctx, "HD Team", "name")
	if err != nil {
		return pipeline.Summary{Entity: "teams"}, fmt.Errorf("precheck teams: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "teams", teams,
		func(tm TeamRecord) string { return tm.TeamName },
		func(ctx context.Context, tm TeamRecord) (pipeline.Status, error) {
			if seen[tm.TeamName] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Insert(ctx, "HD Team", map[string]any{
				"doctype":     "HD Team",
				"team_name":   tm.TeamName,
				"description": tm.Description,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertTeams generates count teams and immediately seeds them.
func (s *Seeder) InsertTeams(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateTeams(ctx, count); err != nil {
		return pipeline.Summary{Entity: "teams"}, err
	}
	return s.SeedTeams(ctx)
}
