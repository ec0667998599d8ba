package frappehrms

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
	"github.com/fixturelab/platformseed/pkg/clients/frappe"
)

type stubAPI struct {
	getListFunc func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error)
	insertFunc  func(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error)

	mu       sync.Mutex
	inserted []map[string]any
}

func (s *stubAPI) GetList(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error) {
	if s.getListFunc != nil {
		return s.getListFunc(ctx, doctype, opts)
	}
	return nil, nil
}

func (s *stubAPI) Insert(ctx context.Context, doctype string, doc map[string]any) (map[string]any, error) {
	s.mu.Lock()
	s.inserted = append(s.inserted, doc)
	s.mu.Unlock()
	if s.insertFunc != nil {
		return s.insertFunc(ctx, doctype, doc)
	}
	return doc, nil
}

func (s *stubAPI) insertedDocs() []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]any(nil), s.inserted...)
}

func newTestSeeder(t *testing.T, api API) *Seeder {
	t.Helper()
	return NewSeeder(api, t.TempDir(), 4, zap.NewNop())
}

// hrSiteAPI answers the lookups SeedEmployees makes against a site that has
// one company, the Engineering department and the Software Engineer
// designation.
func hrSiteAPI() *stubAPI {
	return &stubAPI{
		getListFunc: func(ctx context.Context, doctype string, opts frappe.ListOptions) ([]map[string]any, error) {
			switch doctype {
			case "Company":
				return []map[string]any{{"name": "Example Corp"}}, nil
			case "Department":
				return []map[string]any{{"name": "Engineering - EC", "department_name": "Engineering"}}, nil
			case "Designation":
				return []map[string]any{{"name": "Software Engineer"}}, nil
			}
			return nil, nil
		},
	}
}

func TestGenerateEmployeesUniqueEmailsAndDates(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()
	require.NoError(t, s.departmentCache().Write([]DepartmentRecord{{DepartmentName: "Engineering"}}))
	require.NoError(t, s.designationCache().Write([]DesignationRecord{
		{DesignationName: "Software Engineer"},
		{DesignationName: "Engineering Manager"},
		{DesignationName: "Chief Technology Officer"},
	}))

	require.NoError(t, s.GenerateEmployees(ctx, 25))

	employees, err := s.employeeCache().Read()
	require.NoError(t, err)
	require.Len(t, employees, 25)

	emails := make(map[string]bool)
	for _, e := range employees {
		assert.False(t, emails[e.CompanyEmail], "duplicate email %s", e.CompanyEmail)
		emails[e.CompanyEmail] = true
		assert.Less(t, e.DateOfBirth, e.DateOfJoining)
		assert.Equal(t, "Engineering", e.Department)
	}
}

func TestSeedEmployeesMapsDepartmentToDocName(t *testing.T) {
	api := hrSiteAPI()
	s := newTestSeeder(t, api)

	employees := []EmployeeRecord{{
		FirstName: "Jane", LastName: "Doe", Gender: "Female", Status: "Active",
		DateOfBirth: "1990-04-02", DateOfJoining: "2021-06-01",
		Department: "Engineering", Designation: "Software Engineer",
		CompanyEmail: "jane.doe@company.example.com",
	}}
	require.NoError(t, s.employeeCache().Write(employees))

	summary, err := s.SeedEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	docs := api.insertedDocs()
	require.Len(t, docs, 1)
	assert.Equal(t, "Engineering - EC", docs[0]["department"])
	assert.Equal(t, "Example Corp", docs[0]["company"])
}

func TestSeedEmployeesFailsOnUnknownDepartmentOrDesignation(t *testing.T) {
	s := newTestSeeder(t, hrSiteAPI())

	employees := []EmployeeRecord{
		{FirstName: "A", LastName: "B", Department: "Ghost Dept", Designation: "Software Engineer",
			Status: "Active", CompanyEmail: "a.b@company.example.com"},
		{FirstName: "C", LastName: "D", Department: "Engineering", Designation: "Ghost Role",
			Status: "Active", CompanyEmail: "c.d@company.example.com"},
	}
	require.NoError(t, s.employeeCache().Write(employees))

	summary, err := s.SeedEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Failed)
	for _, f := range summary.Failures {
		assert.ErrorIs(t, f.Err, apperrors.ErrMissingUpstream)
	}
}

func TestSeedEmployeesRequiresCompany(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	require.NoError(t, s.employeeCache().Write([]EmployeeRecord{
		{FirstName: "A", LastName: "B", CompanyEmail: "a.b@company.example.com"},
	}))

	_, err := s.SeedEmployees(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrMissingUpstream)
}
