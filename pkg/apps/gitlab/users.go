package gitlab

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// UserRecord is a generated user fixture.
type UserRecord struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Seeder) userCache() *pipeline.Cache[UserRecord] {
	return pipeline.NewCache[UserRecord](s.dir, "users")
}

// GenerateUsers fabricates count user fixtures with unique usernames and
// caches them.
func (s *Seeder) GenerateUsers(ctx context.Context, count int) error {
	usernames := make(map[string]bool, count)
	users := make([]UserRecord, 0, count)
	for len(users) < count {
		person := s.faker.Person()
		username := strings.ToLower(person.FirstName) + "." + strings.ToLower(person.LastName)
		if usernames[username] {
			username = fmt.Sprintf("%s%d", username, s.faker.IntRange(10, 99))
			if usernames[username] {
				continue
			}
		}
		usernames[username] = true
		users = append(users, UserRecord{
			Name:     person.FirstName + " " + person.LastName,
			Username: username,
			Email:    person.Email,
			Password: s.faker.Raw().Password(true, true, true, false, false, 12),
		})
	}

	if err := s.userCache().Write(users); err != nil {
		return err
	}
	s.logger.Info("generated users", zap.Int("count", count))
	return nil
}

// SeedUsers creates the cached users, skipping usernames and emails that
// already exist.
func (s *Seeder) SeedUsers(ctx context.Context) (pipeline.Summary, error) {
	users, ok, err := pipeline.Load(s.userCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "users"}, err
	}

	existing, err := s.api.ListUsers(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "users"}, fmt.Errorf("precheck users: %w", err)
	}
	seen := make(map[string]bool, len(existing)*2)
	for _, u := range existing {
		seen[u.Username] = true
		seen[u.Email] = true
	}

	summary := pipeline.Run(ctx, s.runner, "users", users,
		func(u UserRecord) string { return u.Username },
		func(ctx context.Context, u UserRecord) (pipeline.Status, error) {
			if seen[u.Username] || seen[u.Email] {
				return pipeline.StatusSkipped, nil
			}
			if _, err := s.api.CreateUser(ctx, u.Name, u.Username, u.Email, u.Password); err != nil {
				return pipeline.StatusFailed, err
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
