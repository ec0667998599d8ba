package frappehrms

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// departmentPool is the set GenerateDepartments samples from; Frappe HR
// expects conventional corporate department names.
var departmentPool = []string{
	"Engineering", "Product", "Sales", "Marketing", "Customer Success",
	"Human Resources", "Finance", "Legal", "Operations", "IT",
	"Quality Assurance", "Research and Development", "Procurement", "Design",
}

// DepartmentRecord is a generated department fixture.
type DepartmentRecord struct {
	DepartmentName string `json:"department_name"`
}

func (s *Seeder) departmentCache() *pipeline.Cache[DepartmentRecord] {
	return pipeline.NewCache[DepartmentRecord](s.dir, "departments")
}

// GenerateDepartments writes exactly count distinct department fixtures to
// the cache; count is capped by the pool size.
func (s *Seeder) GenerateDepartments(ctx context.Context, count int) error {
	if count > len(departmentPool) {
		return fmt.Errorf("generate departments: at most %d distinct departments available, got %d",
			len(departmentPool), count)
	}

	picked := make([]DepartmentRecord, 0, count)
	used := make(map[string]bool, count)
	for len(picked) < count {
		name := departmentPool[s.faker.IntRange(0, len(departmentPool)-1)]
		if used[name] {
			continue
		}
		used[name] = true
		picked = append(picked, DepartmentRecord{DepartmentName: name})
	}

	if err := s.departmentCache().Write(picked); err != nil {
		return err
	}
	s.logger.Info("generated departments", zap.Int("count", count))
	return nil
}

// SeedDepartments creates the cached departments under the site's default
// company, skipping names already present.
func (s *Seeder) SeedDepartments(ctx context.Context) (pipeline.Summary, error) {
	departments, ok, err := pipeline.Load(s.departmentCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "departments"}, err
	}

	company, err := s.defaultCompany(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "departments"}, fmt.Errorf("lookup company: %w", err)
	}
	if company == "" {
		return pipeline.Summary{Entity: "departments"}, fmt.Errorf("%w: no Company on site", apperrors.ErrMissingUpstream)
	}

	seen, err := s.existingValues(ctx, "Department", "department_name")
	if err != nil {
		return pipeline.Summary{Entity: "departments"}, fmt.Errorf("precheck departments: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "departments", departments,
		func(d DepartmentRecord) string { return d.DepartmentName },
		func(ctx context.Context, d DepartmentRecord) (pipeline.Status, error) {
			if seen[d.DepartmentName] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.Insert(ctx, "Department", map[string]any{
				"doctype":         "Department",
				"department_name": d.DepartmentName,
				"company":         company,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertDepartments generates count departments and immediately seeds them.
func (s *Seeder) InsertDepartments(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateDepartments(ctx, count); err != nil {
		return pipeline.Summary{Entity: "departments"}, err
	}
	return s.SeedDepartments(ctx)
}
