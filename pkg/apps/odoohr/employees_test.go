package odoohr

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
)

type stubAPI struct {
	searchReadFunc func(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error)
	createFunc     func(ctx context.Context, model string, values map[string]any) (int, error)
	writeFunc      func(ctx context.Context, model string, ids []int, values map[string]any) error

	created []map[string]any
}

func (s *stubAPI) SearchRead(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error) {
	if s.searchReadFunc != nil {
		return s.searchReadFunc(ctx, model, domain, fields)
	}
	return nil, nil
}

func (s *stubAPI) Create(ctx context.Context, model string, values map[string]any) (int, error) {
	s.created = append(s.created, values)
	if s.createFunc != nil {
		return s.createFunc(ctx, model, values)
	}
	return len(s.created), nil
}

func (s *stubAPI) Write(ctx context.Context, model string, ids []int, values map[string]any) error {
	if s.writeFunc != nil {
		return s.writeFunc(ctx, model, ids, values)
	}
	return nil
}

func newTestSeeder(t *testing.T, api API) *Seeder {
	t.Helper()
	return NewSeeder(api, t.TempDir(), zap.NewNop())
}

func TestGenerateDepartmentsDistinctAndCapped(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	ctx := context.Background()

	require.Error(t, s.GenerateDepartments(ctx, len(departmentPool)+1))

	require.NoError(t, s.GenerateDepartments(ctx, 6))
	departments, err := s.departmentCache().Read()
	require.NoError(t, err)
	require.Len(t, departments, 6)

	names := make(map[string]bool)
	for _, d := range departments {
		assert.False(t, names[d.Name], "duplicate department %s", d.Name)
		names[d.Name] = true
	}
}

func TestSeedEmployeesResolvesDepartmentID(t *testing.T) {
	api := &stubAPI{
		searchReadFunc: func(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error) {
			switch model {
			case "hr.employee":
				return []map[string]any{{"id": float64(1), "work_email": "old.hand@company.example.com"}}, nil
			case "hr.department":
				return []map[string]any{{"id": float64(7), "name": "Engineering"}}, nil
			}
			return nil, nil
		},
	}
	s := newTestSeeder(t, api)

	employees := []EmployeeRecord{
		{Name: "Old Hand", WorkEmail: "old.hand@company.example.com", Department: "Engineering"},
		{Name: "Jane Doe", WorkEmail: "jane.doe@company.example.com", Department: "Engineering", JobTitle: "Software Developer"},
		{Name: "Lost Soul", WorkEmail: "lost.soul@company.example.com", Department: "Ghost Dept"},
	}
	require.NoError(t, s.employeeCache().Write(employees))

	summary, err := s.SeedEmployees(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.ErrorIs(t, summary.Failures[0].Err, apperrors.ErrMissingUpstream)

	require.Len(t, api.created, 1)
	assert.Equal(t, 7, api.created[0]["department_id"])
	assert.Equal(t, "jane.doe@company.example.com", api.created[0]["work_email"])
}

func TestSeedDepartmentsSkipsExisting(t *testing.T) {
	api := &stubAPI{
		searchReadFunc: func(ctx context.Context, model string, domain [][]any, fields []string) ([]map[string]any, error) {
			return []map[string]any{{"id": float64(3), "name": "Sales"}}, nil
		},
	}
	s := newTestSeeder(t, api)

	require.NoError(t, s.departmentCache().Write([]DepartmentRecord{
		{Name: "Sales"}, {Name: "Engineering"},
	}))

	summary, err := s.SeedDepartments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, "Successfully added 1 out of 2 departments (1 skipped, 0 failed)", summary.String())
}
