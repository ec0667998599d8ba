package frappehelpdesk

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// CustomerRecord is a generated helpdesk customer fixture. Domain is the
// natural key Helpdesk matches portal users against.
type CustomerRecord struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

func (s *Seeder) customerCache() *pipeline.Cache[CustomerRecord] {
	return pipeline.NewCache[CustomerRecord](s.dir, "customers")
}

// GenerateCustomers writes exactly count customer fixtures with unique
// domains to the cache.
func (s *Seeder) GenerateCustomers(ctx context.Context, count int) error {
	customers := make([]CustomerRecord, 0, count)
	usedDomains := make(map[string]bool, count)
	for len(customers) < count {
		name := strings.NewReplacer("-", " ", ",", "").Replace(s.faker.Raw().Company())
		domain := strings.ToLower(strings.Map(func(r rune) rune {
			if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, name)) + ".com"
		if usedDomains[domain] {
			continue
		}
		usedDomains[domain] = true

		customers = append(customers, CustomerRecord{Name: name, Domain: domain})
	}

	if err := s.customerCache().Write(customers); err != nil {
		return err
	}
	s.logger.Info("generated customers", zap.Int("count", count))
	return nil
}

// SeedCustomers creates the cached customers, skipping domains that already
// exist.
func (s *Seeder) SeedCustomers(ctx context.Context) (pipeline.Summary, error) {
	customers, ok, err := pipeline.Load(s.customerCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "customers"}, err
	}

	seen, err := s.existingValues(ctx, "HD Customer", "domain")
	if err != nil {
		return pipeline.Summary{Entity: "customers"}, fmt.Errorf("precheck customers: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "customers", customers,
		func(c CustomerRecord) string { return c.Domain },
		func(ctx context.Context, c CustomerRecord) (pipeline.Status, error) {
			if seen[c.Domain] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Insert(ctx, "HD Customer", map[string]any{
				"doctype":       "HD Customer",
				"customer_name": c.Name,
				"domain":        c.Domain,
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
