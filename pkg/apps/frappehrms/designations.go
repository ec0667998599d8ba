package frappehrms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// designationPool mixes individual-contributor, manager and executive
// titles; employee generation tiers off these prefixes.
var designationPool = []string{
	"Software Engineer", "Senior Software Engineer", "QA Engineer",
	"Product Designer", "Data Analyst", "Account Executive",
	"Sales Development Representative", "Customer Success Specialist",
	"Recruiter", "Accountant", "Marketing Specialist", "Operations Analyst",
	"Engineering Manager", "Sales Manager", "Head of Marketing",
	"Head of People", "Chief Executive Officer", "Chief Technology Officer",
	"Chief Financial Officer",
}

// DesignationRecord is a generated designation fixture.
type DesignationRecord struct {
	DesignationName string `json:"designation_name"`
}

func (s *Seeder) designationCache() *pipeline.Cache[DesignationRecord] {
	return pipeline.NewCache[DesignationRecord](s.dir, "designations")
}

// GenerateDesignations writes exactly count distinct designation fixtures to
// the cache; count is capped by the pool size.
func (s *Seeder) GenerateDesignations(ctx context.Context, count int) error {
	if count > len(designationPool) {
		return fmt.Errorf("generate designations: at most %d distinct designations available, got %d",
			len(designationPool), count)
	}

	picked := make([]DesignationRecord, 0, count)
	used := make(map[string]bool, count)
	for len(picked) < count {
		name := designationPool[s.faker.IntRange(0, len(designationPool)-1)]
		if used[name] {
			continue
		}
		used[name] = true
		picked = append(picked, DesignationRecord{DesignationName: name})
	}

	if err := s.designationCache().Write(picked); err != nil {
		return err
	}
	s.logger.Info("generated designations", zap.Int("count", count))
	return nil
}

// SeedDesignations creates the cached designations, skipping names already
// present.
func (s *Seeder) SeedDesignations(ctx context.Context) (pipeline.Summary, error) {
	designations, ok, err := pipeline.Load(s.designationCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "designations"}, err
	}

	seen, err := s.existingValues(ctx, "Designation", "designation_name")
	if err != nil {
		return pipeline.Summary{Entity: "designations"}, fmt.Errorf("precheck designations: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "designations", designations,
		func(d DesignationRecord) string { return d.DesignationName },
		func(ctx context.Context, d DesignationRecord) (pipeline.Status, error) {
			if seen[d.DesignationName] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Insert(ctx, "Designation", map[string]any{
				"doctype":          "Designation",
				"designation_name": d.DesignationName,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertDesignations generates count designations and immediately seeds
// them.
func (s *Seeder) InsertDesignations(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateDesignations(ctx, count); err != nil {
		return pipeline.Summary{Entity: "designations"}, err
	}
	return s.SeedDesignations(ctx)
}
