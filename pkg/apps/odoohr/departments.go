package odoohr

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

var departmentPool = []string{
	"Management", "Engineering", "Sales", "Marketing", "Human Resources",
	"Finance", "Customer Support", "Operations", "Legal", "Procurement",
}

// DepartmentRecord is a generated department fixture.
type DepartmentRecord struct {
	Name string `json:"name"`
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
		picked = append(picked, DepartmentRecord{Name: name})
	}

	if err := s.departmentCache().Write(picked); err != nil {
		return err
	}
	s.logger.Info("generated departments", zap.Int("count", count))
	return nil
}

// SeedDepartments creates the cached departments, skipping names that
// already exist.
func (s *Seeder) SeedDepartments(ctx context.Context) (pipeline.Summary, error) {
	departments, ok, err := pipeline.Load(s.departmentCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "departments"}, err
	}

	existing, err := s.existingNames(ctx, "hr.department")
	if err != nil {
		return pipeline.Summary{Entity: "departments"}, fmt.Errorf("precheck departments: %w", err)
	}

	summary := pipeline.RunSequential(ctx, s.logger, "departments", departments,
		func(d DepartmentRecord) string { return d.Name },
		func(ctx context.Context, d DepartmentRecord) (pipeline.Status, error) {
			if _, found := existing[d.Name]; found {
				return pipeline.StatusSkipped, nil
			}
			if _, err := s.api.Create(ctx, "hr.department", map[string]any{"name": d.Name}); err != nil {
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
