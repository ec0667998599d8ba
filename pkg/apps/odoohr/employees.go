package odoohr

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

var jobTitles = []string{
	"Software Developer", "Account Manager", "HR Generalist",
	"Financial Analyst", "Support Specialist", "Operations Coordinator",
	"Marketing Manager", "Sales Representative", "Legal Counsel",
	"Procurement Officer",
}

// EmployeeRecord is a generated employee fixture. Department references the
// departments cache by name and resolves to an hr.department ID during
// seeding.
type EmployeeRecord struct {
	Name       string `json:"name"`
	WorkEmail  string `json:"work_email"`
	JobTitle   string `json:"job_title"`
	Department string `json:"department"`
	WorkPhone  string `json:"work_phone"`
}

func (s *Seeder) employeeCache() *pipeline.Cache[EmployeeRecord] {
	return pipeline.NewCache[EmployeeRecord](s.dir, "employees")
}

// GenerateEmployees writes exactly count employee fixtures to the cache,
// assigning each to a department from the departments cache.
func (s *Seeder) GenerateEmployees(ctx context.Context, count int) error {
	departments, err := s.departmentCache().Read()
	if err != nil {
		return fmt.Errorf("employees need departments: %w", err)
	}

	employees := make([]EmployeeRecord, 0, count)
	used := make(map[string]bool, count)
	for len(employees) < count {
		p := s.faker.Person()
		email := strings.ToLower(p.FirstName+"."+p.LastName) + "@company.example.com"
		if used[email] {
			continue
		}
		used[email] = true

		employees = append(employees, EmployeeRecord{
			Name:       p.FirstName + " " + p.LastName,
			WorkEmail:  email,
			JobTitle:   fake.Pick(s.faker, jobTitles),
			Department: fake.Pick(s.faker, departments).Name,
			WorkPhone:  "+1" + s.faker.Raw().Numerify("##########"),
		})
	}

	if err := s.employeeCache().Write(employees); err != nil {
		return err
	}
	s.logger.Info("generated employees", zap.Int("count", count))
	return nil
}

// SeedEmployees creates the cached employees, skipping work emails that
// already exist. Employees whose department is missing fail individually.
func (s *Seeder) SeedEmployees(ctx context.Context) (pipeline.Summary, error) {
	employees, ok, err := pipeline.Load(s.employeeCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "employees"}, err
	}

	existingRows, err := s.api.SearchRead(ctx, "hr.employee", [][]any{}, []string{"id", "work_email"})
	if err != nil {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("precheck employees: %w", err)
	}
	seen := make(map[string]bool, len(existingRows))
	for _, row := range existingRows {
		if email, ok := row["work_email"].(string); ok {
			seen[email] = true
		}
	}

	departmentIDs, err := s.existingNames(ctx, "hr.department")
	if err != nil {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("list departments: %w", err)
	}

	summary := pipeline.RunSequential(ctx, s.logger, "employees", employees,
		func(e EmployeeRecord) string { return e.WorkEmail },
		func(ctx context.Context, e EmployeeRecord) (pipeline.Status, error) {
			if seen[e.WorkEmail] {
				return pipeline.StatusSkipped, nil
			}
			departmentID, found := departmentIDs[e.Department]
			if !found {
				return pipeline.StatusFailed, fmt.Errorf("%w: department %q not in database (run seed-departments first)",
					apperrors.ErrMissingUpstream, e.Department)
			}
			_, err := s.api.Create(ctx, "hr.employee", map[string]any{
				"name":          e.Name,
				"work_email":    e.WorkEmail,
				"job_title":     e.JobTitle,
				"department_id": departmentID,
				"work_phone":    e.WorkPhone,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertEmployees generates count employees and immediately seeds them.
func (s *Seeder) InsertEmployees(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateEmployees(ctx, count); err != nil {
		return pipeline.Summary{Entity: "employees"}, err
	}
	return s.SeedEmployees(ctx)
}
