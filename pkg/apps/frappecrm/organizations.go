package frappecrm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

var industries = []string{
	"Software", "Retail & Wholesale", "Healthcare", "Financial Services",
	"Manufacturing", "Education", "Telecommunications", "Logistics",
}

var employeeBands = []string{"1-10", "11-50", "51-200", "201-500", "501-1000", "1000+"}

// OrganizationRecord is a generated CRM organization fixture.
type OrganizationRecord struct {
	OrganizationName string `json:"organization_name"`
	Website          string `json:"website"`
	Industry         string `json:"industry"`
	NoOfEmployees    string `json:"no_of_employees"`
	Territory        string `json:"territory"`
}

func (s *Seeder) organizationCache() *pipeline.Cache[OrganizationRecord] {
	return pipeline.NewCache[OrganizationRecord](s.dir, "organizations")
}

func websiteFor(company string) string {
	host := strings.ToLower(company)
	host = strings.Map(func(r rune) rune {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, host)
	return "https://" + host + ".com"
}

// GenerateOrganizations writes exactly count organization fixtures to the
// cache with unique names.
func (s *Seeder) GenerateOrganizations(ctx context.Context, count int) error {
	orgs := make([]OrganizationRecord, 0, count)
	used := make(map[string]bool, count)
	for len(orgs) < count {
		name := strings.NewReplacer("-", " ", ",", "").Replace(s.faker.Raw().Company())
		if used[name] {
			continue
		}
		used[name] = true

		orgs = append(orgs, OrganizationRecord{
			OrganizationName: name,
			Website:          websiteFor(name),
			Industry:         fake.Pick(s.faker, industries),
			NoOfEmployees:    fake.Pick(s.faker, employeeBands),
			Territory:        s.faker.Raw().Country(),
		})
	}

	if err := s.organizationCache().Write(orgs); err != nil {
		return err
	}
	s.logger.Info("generated organizations", zap.Int("count", count))
	return nil
}

// SeedOrganizations creates the cached organizations, skipping names that
// already exist on the site.
func (s *Seeder) SeedOrganizations(ctx context.Context) (pipeline.Summary, error) {
	orgs, ok, err := pipeline.Load(s.organizationCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "organizations"}, err
	}

	seen, err := s.existingValues(ctx, "CRM Organization", "organization_name")
	if err != nil {
		return pipeline.Summary{Entity: "organizations"}, fmt.Errorf("precheck organizations: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "organizations", orgs,
		func(o OrganizationRecord) string { return o.OrganizationName },
		func(ctx context.Context, o OrganizationRecord) (pipeline.Status, error) {
			if seen[o.OrganizationName] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Insert(ctx, "CRM Organization", map[string]any{
				"doctype":           "CRM Organization",
				"organization_name": o.OrganizationName,
				"website":           o.Website,
				"industry":          o.Industry,
				"no_of_employees":   o.NoOfEmployees,
				"territory":         o.Territory,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertOrganizations generates count organizations and immediately seeds
// them.
func (s *Seeder) InsertOrganizations(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateOrganizations(ctx, count); err != nil {
		return pipeline.Summary{Entity: "organizations"}, err
	}
	return s.SeedOrganizations(ctx)
}
