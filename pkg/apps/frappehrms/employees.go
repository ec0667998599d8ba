package frappehrms

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// EmployeeRecord is a generated employee fixture. Department and Designation
// reference the respective caches by name.
type EmployeeRecord struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Gender        string `json:"gender"`
	Status        string `json:"status"`
	DateOfBirth   string `json:"date_of_birth"`
	DateOfJoining string `json:"date_of_joining"`
	Department    string `json:"department"`
	Designation   string `json:"designation"`
	CompanyEmail  string `json:"company_email"`
	PersonalEmail string `json:"personal_email"`
}

func (s *Seeder) employeeCache() *pipeline.Cache[EmployeeRecord] {
	return pipeline.NewCache[EmployeeRecord](s.dir, "employees")
}

// pickDesignation tiers titles so executives stay rare: roughly 5% C-suite,
// 15% managers, the rest individual contributors.
func (s *Seeder) pickDesignation(designations []DesignationRecord) string {
	var cSuite, managers, regular []string
	for _, d := range designations {
		name := d.DesignationName
		switch {
		case strings.HasPrefix(name, "Chief") || strings.Contains(name, "Officer"):
			cSuite = append(cSuite, name)
		case strings.Contains(name, "Manager") || strings.Contains(name, "Head"):
			managers = append(managers, name)
		default:
			regular = append(regular, name)
		}
	}

	tier := fake.PickWeighted(s.faker, []string{"c_suite", "manager", "regular"}, []int{5, 15, 80})
	switch {
	case tier == "c_suite" && len(cSuite) > 0:
		return fake.Pick(s.faker, cSuite)
	case tier == "manager" && len(managers) > 0:
		return fake.Pick(s.faker, managers)
	case len(regular) > 0:
		return fake.Pick(s.faker, regular)
	default:
		return designations[s.faker.IntRange(0, len(designations)-1)].DesignationName
	}
}

// GenerateEmployees writes exactly count employee fixtures to the cache,
// drawing departments and designations from their caches.
func (s *Seeder) GenerateEmployees(ctx context.Context, count int) error {
	departments, err := s.departmentCache().Read()
	if err != nil {
		return fmt.Errorf("employees need departments: %w", err)
	}
	designations, err := s.designationCache().Read()
	if err != nil {
		return fmt.Errorf("employees need designations: %w", err)
	}

	now := time.Now()
	employees := make([]EmployeeRecord, 0, count)
	used := make(map[string]bool, count)
	for len(employees) < count {
		p := s.faker.Person()
		key := strings.ToLower(p.FirstName + "." + p.LastName)
		if used[key] {
			continue
		}
		used[key] = true

		dob := s.faker.TimeBetween(now.AddDate(-60, 0, 0), now.AddDate(-22, 0, 0))
		joined := s.faker.TimeBetween(now.AddDate(-8, 0, 0), now.AddDate(0, -1, 0))

		employees = append(employees, EmployeeRecord{
			FirstName:     p.FirstName,
			LastName:      p.LastName,
			Gender:        fake.Pick(s.faker, []string{"Male", "Female"}),
			Status:        fake.PickWeighted(s.faker, []string{"Active", "Inactive"}, []int{9, 1}),
			DateOfBirth:   dob.Format("2006-01-02"),
			DateOfJoining: joined.Format("2006-01-02"),
			Department:    fake.Pick(s.faker, departments).DepartmentName,
			Designation:   s.pickDesignation(designations),
			CompanyEmail:  key + "@company.example.com",
			PersonalEmail: key + "@" + s.faker.Raw().DomainName(),
		})
	}

	if err := s.employeeCache().Write(employees); err != nil {
		return err
	}
	s.logger.Info("generated employees", zap.Int("count", count))
	return nil
}

// SeedEmployees creates the cached employees, skipping company emails that
// already exist. Employees whose department or designation is missing on the
// site fail individually.
func (s *Seeder) SeedEmployees(ctx context.Context) (pipeline.Summary, error) {
	employees, ok, err := pipeline.Load(s.employeeCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "employees"}, err
	}

	company, err := s.defaultCompany(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("lookup company: %w", err)
	}
	if company == "" {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("%w: no Company on site", apperrors.ErrMissingUpstream)
	}

	seen, err := s.existingValues(ctx, "Employee", "company_email")
	if err != nil {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("precheck employees: %w", err)
	}
	// Department documents are named "<department_name> - <abbr>", so match
	// on the department_name field instead.
	departmentsOnSite, err := s.existingValues(ctx, "Department", "department_name")
	if err != nil {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("list departments: %w", err)
	}
	departmentNames, err := s.departmentDocNames(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("list departments: %w", err)
	}
	designationsOnSite, err := s.existingValues(ctx, "Designation", "name")
	if err != nil {
		return pipeline.Summary{Entity: "employees"}, fmt.Errorf("list designations: %w", err)
	}

	summary := pipeline.Run(ctx, s.runner, "employees", employees,
		func(e EmployeeRecord) string { return e.CompanyEmail },
		func(ctx context.Context, e EmployeeRecord) (pipeline.Status, error) {
			if seen[e.CompanyEmail] {
				return pipeline.StatusSkipped, nil
			}
			if !departmentsOnSite[e.Department] {
				return pipeline.StatusFailed, fmt.Errorf("%w: department %q not on site (run seed-departments first)",
					apperrors.ErrMissingUpstream, e.Department)
			}
			if !designationsOnSite[e.Designation] {
				return pipeline.StatusFailed, fmt.Errorf("%w: designation %q not on site (run seed-designations first)",
					apperrors.ErrMissingUpstream, e.Designation)
			}

			doc := map[string]any{
				"doctype":         "Employee",
				"first_name":      e.FirstName,
				"last_name":       e.LastName,
				"gender":          e.Gender,
				"status":          e.Status,
				"date_of_birth":   e.DateOfBirth,
				"date_of_joining": e.DateOfJoining,
				"department":      departmentNames[e.Department],
				"designation":     e.Designation,
				"company":         company,
				"company_email":   e.CompanyEmail,
				"personal_email":  e.PersonalEmail,
			}
			if e.Status == "Inactive" {
				doc["relieving_date"] = time.Now().AddDate(0, -s.faker.IntRange(1, 12), 0).Format("2006-01-02")
			}
			if _, err := s.api.Insert(ctx, "Employee", doc); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// departmentDocNames maps department_name to the document name the Employee
// link field requires.
func (s *Seeder) departmentDocNames(ctx context.Context) (map[string]string, error) {
	docs, err := s.api.GetList(ctx, "Department", frappeListFields("name", "department_name"))
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(docs))
	for _, doc := range docs {
		docName, _ := doc["name"].(string)
		deptName, _ := doc["department_name"].(string)
		if docName != "" && deptName != "" {
			names[deptName] = docName
		}
	}
	return names, nil
}

// InsertEmployees generates count employees and immediately seeds them.
func (s *Seeder) InsertEmployees(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateEmployees(ctx, count); err != nil {
		return pipeline.Summary{Entity: "employees"}, err
	}
	return s.SeedEmployees(ctx)
}
