package medusa

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/medusa"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// CustomerRecord is a generated store customer fixture.
type CustomerRecord struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

func (s *Seeder) customerCache() *pipeline.Cache[CustomerRecord] {
	return pipeline.NewCache[CustomerRecord](s.dir, "customers")
}

// GenerateCustomers writes exactly count customer fixtures with unique
// emails to the cache.
func (s *Seeder) GenerateCustomers(ctx context.Context, count int) error {
	customers := make([]CustomerRecord, 0, count)
	used := make(map[string]bool, count)
	for len(customers) < count {
		p := s.faker.Person()
		if used[p.Email] {
			continue
		}
		used[p.Email] = true

		customers = append(customers, CustomerRecord{
			Email:     p.Email,
			FirstName: p.FirstName,
			LastName:  p.LastName,
			Phone:     "+1" + s.faker.Raw().Numerify("##########"),
		})
	}

	if err := s.customerCache().Write(customers); err != nil {
		return err
	}
	s.logger.Info("generated customers", zap.Int("count", count))
	return nil
}

// SeedCustomers creates the cached customers, skipping emails that already
// exist.
func (s *Seeder) SeedCustomers(ctx context.Context) (pipeline.Summary, error) {
	customers, ok, err := pipeline.Load(s.customerCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "customers"}, err
	}

	existing, err := s.api.ListCustomers(ctx, "")
	if err != nil {
		return pipeline.Summary{Entity: "customers"}, fmt.Errorf("precheck customers: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c.Email] = true
	}

	summary := pipeline.Run(ctx, s.runner, "customers", customers,
		func(c CustomerRecord) string { return c.Email },
		func(ctx context.Context, c CustomerRecord) (pipeline.Status, error) {
			if seen[c.Email] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.CreateCustomer(ctx, medusa.Customer{
				Email:     c.Email,
				FirstName: c.FirstName,
				LastName:  c.LastName,
				Phone:     c.Phone,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertCustomers generates count customers and immediately seeds them.
func (s *Seeder) InsertCustomers(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateCustomers(ctx, count); err != nil {
		return pipeline.Summary{Entity: "customers"}, err
	}
	return s.SeedCustomers(ctx)
}
