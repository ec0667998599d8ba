package odoosales

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// LeadRecord is a generated CRM lead fixture.
type LeadRecord struct {
	Name            string  `json:"name"`
	ContactName     string  `json:"contact_name"`
	PartnerName     string  `json:"partner_name"`
	EmailFrom       string  `json:"email_from"`
	Phone           string  `json:"phone"`
	ExpectedRevenue float64 `json:"expected_revenue"`
	Probability     float64 `json:"probability"`
}

var leadInterests = []string{
	"Pricing inquiry",
	"Demo request",
	"Bulk order",
	"Renewal discussion",
	"Partnership opportunity",
	"Upgrade quote",
	"Onboarding support",
}

func (s *Seeder) leadCache() *pipeline.Cache[LeadRecord] {
	return pipeline.NewCache[LeadRecord](s.dir, "leads")
}

// GenerateLeads fabricates count CRM lead fixtures and caches them.
func (s *Seeder) GenerateLeads(ctx context.Context, count int) error {
	leads := make([]LeadRecord, 0, count)
	for i := 0; i < count; i++ {
		person := s.faker.Person()
		company := s.faker.Raw().Company()
		leads = append(leads, LeadRecord{
			Name:            fmt.Sprintf("%s - %s", fake.Pick(s.faker, leadInterests), company),
			ContactName:     person.FirstName + " " + person.LastName,
			PartnerName:     company,
			EmailFrom:       person.Email,
			Phone:           s.faker.Raw().Phone(),
			ExpectedRevenue: float64(s.faker.IntRange(5000, 100000)),
			Probability:     float64(s.faker.IntRange(10, 90)),
		})
	}

	if err := s.leadCache().Write(leads); err != nil {
		return err
	}
	s.logger.Info("generated leads", zap.Int("count", count))
	return nil
}

// SeedLeads creates the cached leads as crm.lead records, skipping
// sender emails that already have a lead.
func (s *Seeder) SeedLeads(ctx context.Context) (pipeline.Summary, error) {
	leads, ok, err := pipeline.Load(s.leadCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "leads"}, err
	}

	seen, err := s.existingField(ctx, "crm.lead", "email_from")
	if err != nil {
		return pipeline.Summary{Entity: "leads"}, fmt.Errorf("precheck leads: %w", err)
	}

	summary := pipeline.RunSequential(ctx, s.logger, "leads", leads,
		func(l LeadRecord) string { return l.EmailFrom },
		func(ctx context.Context, l LeadRecord) (pipeline.Status, error) {
			if seen[l.EmailFrom] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Create(ctx, "crm.lead", map[string]any{
				"name":             l.Name,
				"contact_name":     l.ContactName,
				"partner_name":     l.PartnerName,
				"email_from":       l.EmailFrom,
				"phone":            l.Phone,
				"expected_revenue": l.ExpectedRevenue,
				"probability":      l.Probability,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertLeads generates count leads and immediately seeds them.
func (s *Seeder) InsertLeads(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateLeads(ctx, count); err != nil {
		return pipeline.Summary{Entity: "leads"}, err
	}
	return s.SeedLeads(ctx)
}
