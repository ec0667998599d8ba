package supabase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/supabase"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// UserRecord is a generated auth user fixture.
type UserRecord struct {
	Email        string    `json:"email"`
	Password     string    `json:"password"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	LastSignInAt time.Time `json:"last_sign_in_at"`
}

func (s *Seeder) userCache() *pipeline.Cache[UserRecord] {
	return pipeline.NewCache[UserRecord](s.dir, "users")
}

// GenerateUsers fabricates count auth user fixtures with signup dates skewed
// toward the present and caches them.
func (s *Seeder) GenerateUsers(ctx context.Context, count int) error {
	signups := s.faker.GrowthDates(count, 2)

	users := make([]UserRecord, 0, count)
	for i := 0; i < count; i++ {
		person := s.faker.Person()
		createdAt := signups[i]
		sinceSignup := time.Since(createdAt)
		users = append(users, UserRecord{
			Email:        person.Email,
			Password:     "password",
			FirstName:    person.FirstName,
			LastName:     person.LastName,
			CreatedAt:    createdAt,
			LastSignInAt: createdAt.Add(time.Duration(s.faker.Float64Range(0.1, 0.95) * float64(sinceSignup))),
		})
	}

	if err := s.userCache().Write(users); err != nil {
		return err
	}
	s.logger.Info("generated users", zap.Int("count", count))
	return nil
}

// SeedUsers creates the cached users as confirmed GoTrue accounts, then
// backdates created_at and last_sign_in_at directly in auth.users (the admin
// API always stamps "now").
func (s *Seeder) SeedUsers(ctx context.Context) (pipeline.Summary, error) {
	users, ok, err := pipeline.Load(s.userCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "users"}, err
	}

	existing, err := s.api.ListUsers(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "users"}, fmt.Errorf("precheck users: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, u := range existing {
		seen[u.Email] = true
	}

	summary := pipeline.RunSequential(ctx, s.logger, "users", users,
		func(u UserRecord) string { return u.Email },
		func(ctx context.Context, u UserRecord) (pipeline.Status, error) {
			if seen[u.Email] {
				return pipeline.StatusSkipped, nil
			}
			created, err := s.api.CreateUser(ctx, supabase.AuthUser{
				Email:    u.Email,
				Password: u.Password,
				UserMetadata: map[string]any{
					"first_name": u.FirstName,
					"last_name":  u.LastName,
				},
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			if err := s.store.BackdateAuthUser(ctx, created.ID, u.CreatedAt, u.LastSignInAt); err != nil {
				s.logger.Warn("could not backdate auth user",
					zap.String("email", u.Email), zap.Error(err))
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertUsers generates count users and immediately seeds them.
func (s *Seeder) InsertUsers(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateUsers(ctx, count); err != nil {
		return pipeline.Summary{Entity: "users"}, err
	}
	return s.SeedUsers(ctx)
}
