package chatwoot

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// AgentRecord is a generated agent fixture. Timestamps follow Chatwoot's
// created ≤ confirmed ≤ updated ordering.
type AgentRecord struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	Availability string    `json:"availability"`
	CreatedAt    time.Time `json:"created_at"`
	ConfirmedAt  time.Time `json:"confirmed_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (s *Seeder) agentCache() *pipeline.Cache[AgentRecord] {
	return pipeline.NewCache[AgentRecord](s.dir, "agents")
}

// GenerateAgents writes exactly count agent fixtures to the cache. Roughly
// one agent in five is an administrator.
func (s *Seeder) GenerateAgents(ctx context.Context, count int) error {
	agents := make([]AgentRecord, 0, count)
	for i := 0; i < count; i++ {
		p := s.faker.Person()
		times := s.faker.TimeChain(3, 365*24*time.Hour)

		agents = append(agents, AgentRecord{
			Name:         p.FirstName + " " + p.LastName,
			Email:        p.Email,
			Role:         fake.PickWeighted(s.faker, []string{"agent", "administrator"}, []int{4, 1}),
			Availability: fake.Pick(s.faker, []string{"online", "offline", "busy"}),
			CreatedAt:    times[0],
			ConfirmedAt:  times[1],
			UpdatedAt:    times[2],
		})
	}

	if err := s.agentCache().Write(agents); err != nil {
		return err
	}
	s.logger.Info("generated agents", zap.Int("count", count))
	return nil
}

// SeedAgents creates the cached agents, skipping emails that already exist
// in the account.
func (s *Seeder) SeedAgents(ctx context.Context) (pipeline.Summary, error) {
	agents, ok, err := pipeline.Load(s.agentCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "agents"}, err
	}

	existing, err := s.api.ListAgents(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "agents"}, fmt.Errorf("precheck agents: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, a := range existing {
		seen[a.Email] = true
	}

	summary := pipeline.Run(ctx, s.runner, "agents", agents,
		func(a AgentRecord) string { return a.Email },
		func(ctx context.Context, a AgentRecord) (pipeline.Status, error) {
			if seen[a.Email] {
				return pipeline.StatusSkipped, nil
			}
			if _, err := s.api.AddAgent(ctx, a.Name, a.Email, a.Role); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertAgents generates count agents and immediately seeds them.
func (s *Seeder) InsertAgents(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateAgents(ctx, count); err != nil {
		return pipeline.Summary{Entity: "agents"}, err
	}
	return s.SeedAgents(ctx)
}

// FixupUsers backdates the users and account_users rows Chatwoot created
// during agent signup and copies the admin password hash onto every user, so
// seeded agents can log in without the confirmation flow.
func (s *Seeder) FixupUsers(ctx context.Context) error {
	if s.users == nil {
		return fmt.Errorf("fixup users: no database configured")
	}

	hash, err := s.users.AdminPasswordHash(ctx)
	if err != nil {
		return fmt.Errorf("fixup users: %w", err)
	}

	ids, err := s.users.ListUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("fixup users: %w", err)
	}

	for _, id := range ids {
		if err := s.users.ApplyUserFixup(ctx, id, hash); err != nil {
			return fmt.Errorf("fixup user %d: %w", id, err)
		}
	}
	s.logger.Info("updated user timestamps and passwords", zap.Int("users", len(ids)))
	return nil
}
