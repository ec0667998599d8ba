package frappecrm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/frappe"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

var dealStatuses = []string{
	"Qualification", "Demo/Making", "Proposal/Quotation",
	"Negotiation", "Ready to Close", "Won", "Lost",
}
var dealStatusWeights = []int{10, 15, 15, 15, 10, 35, 10}

var lostReasons = []string{
	"Budget constraints", "Chose a competitor", "No decision timeline",
	"Missing features", "Other",
}

// DealRecord is a generated CRM deal fixture referencing an organization
// from the organizations cache by name.
type DealRecord struct {
	Organization string  `json:"organization"`
	Status       string  `json:"status"`
	LostReason   string  `json:"lost_reason,omitempty"`
	AnnualValue  float64 `json:"annual_revenue"`
}

func (s *Seeder) dealCache() *pipeline.Cache[DealRecord] {
	return pipeline.NewCache[DealRecord](s.dir, "deals")
}

// dealKey is the natural key a deal is deduplicated by; CRM Deal docnames
// are autogenerated, so the inserted fields stand in for one.
func dealKey(org, status string, annualValue float64) string {
	return fmt.Sprintf("%s/%s/%.0f", org, status, annualValue)
}

// existingDeals collects the natural keys of deals already on the site.
func (s *Seeder) existingDeals(ctx context.Context) (map[string]bool, error) {
	docs, err := s.api.GetList(ctx, "CRM Deal", frappe.ListOptions{
		Fields: []string{"organization", "status", "annual_revenue"},
	})
	if err != nil {
		return nil, err
	}
	keys := make(map[string]bool, len(docs))
	for _, doc := range docs {
		org, _ := doc["organization"].(string)
		status, _ := doc["status"].(string)
		value, _ := doc["annual_revenue"].(float64)
		keys[dealKey(org, status, value)] = true
	}
	return keys, nil
}

// GenerateDeals writes exactly count deal fixtures to the cache, each tied
// to an organization from the organizations cache.
func (s *Seeder) GenerateDeals(ctx context.Context, count int) error {
	orgs, err := s.organizationCache().Read()
	if err != nil {
		return fmt.Errorf("deals need organizations: %w", err)
	}
	if len(orgs) == 0 {
		return fmt.Errorf("deals need organizations: cache is empty (run generate-organizations first)")
	}

	deals := make([]DealRecord, 0, count)
	for i := 0; i < count; i++ {
		status := fake.PickWeighted(s.faker, dealStatuses, dealStatusWeights)
		deal := DealRecord{
			Organization: fake.Pick(s.faker, orgs).OrganizationName,
			Status:       status,
			AnnualValue:  float64(s.faker.IntRange(5, 500)) * 1000,
		}
		if status == "Lost" {
			deal.LostReason = fake.Pick(s.faker, lostReasons)
		}
		deals = append(deals, deal)
	}

	if err := s.dealCache().Write(deals); err != nil {
		return err
	}
	s.logger.Info("generated deals", zap.Int("count", count))
	return nil
}

// SeedDeals creates the cached deals, skipping deals already on the site.
// Deals whose organization does not exist on the site fail individually
// instead of aborting the batch.
func (s *Seeder) SeedDeals(ctx context.Context) (pipeline.Summary, error) {
	deals, ok, err := pipeline.Load(s.dealCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "deals"}, err
	}

	seen, err := s.existingDeals(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "deals"}, fmt.Errorf("precheck deals: %w", err)
	}

	orgsOnSite, err := s.existingValues(ctx, "CRM Organization", "organization_name")
	if err != nil {
		return pipeline.Summary{Entity: "deals"}, fmt.Errorf("list organizations: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "deals", deals,
		func(d DealRecord) string { return d.Organization + "/" + d.Status },
		func(ctx context.Context, d DealRecord) (pipeline.Status, error) {
			if seen[dealKey(d.Organization, d.Status, d.AnnualValue)] {
				return pipeline.StatusSkipped, nil
			}
			if !orgsOnSite[d.Organization] {
				return pipeline.StatusFailed, fmt.Errorf("%w: organization %q not on site (run seed-organizations first)",
					apperrors.ErrMissingUpstream, d.Organization)
			}

			doc := map[string]any{
				"doctype":        "CRM Deal",
				"organization":   d.Organization,
				"status":         d.Status,
				"annual_revenue": d.AnnualValue,
			}
			if d.LostReason != "" {
				doc["lost_reason"] = d.LostReason
				if d.LostReason == "Other" {
					doc["lost_notes"] = "Deal went quiet after evaluation"
				}
			}
			if _, err := s.api.Insert(ctx, "CRM Deal", doc); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertDeals generates count deals and immediately seeds them.
func (s *Seeder) InsertDeals(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateDeals(ctx, count); err != nil {
		return pipeline.Summary{Entity: "deals"}, err
	}
	return s.SeedDeals(ctx)
}
