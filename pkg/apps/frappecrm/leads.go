package frappecrm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

var leadStatuses = []string{"New", "Contacted", "Nurture", "Qualified", "Unqualified", "Junk"}
var leadStatusWeights = []int{30, 25, 15, 15, 10, 5}

// LeadRecord is a generated CRM lead fixture. The LLM fills the narrative
// fields; status and mobile number come from faker afterwards.
type LeadRecord struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Organization string `json:"organization"`
	JobTitle     string `json:"job_title"`
	MobileNo     string `json:"mobile_no"`
	Status       string `json:"status"`
}

func (s *Seeder) leadCache() *pipeline.Cache[LeadRecord] {
	return pipeline.NewCache[LeadRecord](s.dir, "leads")
}

func leadPrompt(n int) llm.Request {
	return llm.Request{
		System: "You generate realistic B2B sales lead fixtures for a CRM. Always return the EXACT number of records requested as a JSON array, with no commentary.",
		Prompt: fmt.Sprintf(`Generate EXACTLY %d sales leads as a JSON array.

Each element must have:
- "first_name", "last_name": a plausible contact name
- "email": first.last@company-domain, derived from the name and organization
- "organization": a realistic company name, varied across industries
- "job_title": the contact's role (procurement, engineering, operations, leadership)

Vary seniority and industry; no duplicate emails.`, n),
	}
}

// GenerateLeads asks the LLM for exactly count lead fixtures and writes them
// to the cache with faker-assigned status and phone number.
func (s *Seeder) GenerateLeads(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate leads: no LLM client configured")
	}

	leads, err := pipeline.GenerateRecords[LeadRecord](ctx, s.llm, s.logger, leadPrompt, count)
	if err != nil {
		return fmt.Errorf("generate leads: %w", err)
	}

	for i := range leads {
		leads[i].Status = fake.PickWeighted(s.faker, leadStatuses, leadStatusWeights)
		leads[i].MobileNo = "+1" + s.faker.Raw().Numerify("##########")
	}

	if err := s.leadCache().Write(leads); err != nil {
		return err
	}
	s.logger.Info("generated leads", zap.Int("count", count))
	return nil
}

// SeedLeads creates the cached leads, skipping emails that already exist.
func (s *Seeder) SeedLeads(ctx context.Context) (pipeline.Summary, error) {
	leads, ok, err := pipeline.Load(s.leadCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "leads"}, err
	}

	seen, err := s.existingValues(ctx, "CRM Lead", "email")
	if err != nil {
		return pipeline.Summary{Entity: "leads"}, fmt.Errorf("precheck leads: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "leads", leads,
		func(l LeadRecord) string { return l.Email },
		func(ctx context.Context, l LeadRecord) (pipeline.Status, error) {
			if seen[l.Email] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Insert(ctx, "CRM Lead", map[string]any{
				"doctype":      "CRM Lead",
				"first_name":   l.FirstName,
				"last_name":    l.LastName,
				"email":        l.Email,
				"organization": l.Organization,
				"job_title":    l.JobTitle,
				"mobile_no":    l.MobileNo,
				"status":       l.Status,
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
