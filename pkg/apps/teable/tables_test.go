package teable

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/teable"
	"github.com/fixturelab/platformseed/pkg/llm"
)

// stubAPI implements API with overridable function fields.
type stubAPI struct {
	listSpacesFunc    func(ctx context.Context) ([]teable.Space, error)
	createSpaceFunc   func(ctx context.Context, name string) (*teable.Space, error)
	listBasesFunc     func(ctx context.Context, spaceID string) ([]teable.Base, error)
	createBaseFunc    func(ctx context.Context, spaceID, name string) (*teable.Base, error)
	listTablesFunc    func(ctx context.Context, baseID string) ([]teable.Table, error)
	createTableFunc   func(ctx context.Context, baseID, name string, fields []teable.Field) (*teable.Table, error)
	createFieldFunc   func(ctx context.Context, tableID string, field teable.Field) (*teable.Field, error)
	listRecordsFunc   func(ctx context.Context, tableID string, limit int) ([]teable.Record, error)
	createRecordsFunc func(ctx context.Context, tableID string, records []teable.Record) ([]teable.Record, error)
	updateRecordFunc  func(ctx context.Context, tableID, recordID string, fields map[string]any) error
}

func (s *stubAPI) ListSpaces(ctx context.Context) ([]teable.Space, error) {
	if s.listSpacesFunc != nil {
		return s.listSpacesFunc(ctx)
	}
	return []teable.Space{{ID: "spc1", Name: "Acme Workspace"}}, nil
}

func (s *stubAPI) CreateSpace(ctx context.Context, name string) (*teable.Space, error) {
	if s.createSpaceFunc != nil {
		return s.createSpaceFunc(ctx, name)
	}
	return &teable.Space{ID: "spc-" + name, Name: name}, nil
}

func (s *stubAPI) ListBases(ctx context.Context, spaceID string) ([]teable.Base, error) {
	if s.listBasesFunc != nil {
		return s.listBasesFunc(ctx, spaceID)
	}
	return []teable.Base{{ID: "bse1", Name: "Bug Tracker", SpaceID: spaceID}}, nil
}

func (s *stubAPI) CreateBase(ctx context.Context, spaceID, name string) (*teable.Base, error) {
	if s.createBaseFunc != nil {
		return s.createBaseFunc(ctx, spaceID, name)
	}
	return &teable.Base{ID: "bse-" + name, Name: name, SpaceID: spaceID}, nil
}

func (s *stubAPI) ListTables(ctx context.Context, baseID string) ([]teable.Table, error) {
	if s.listTablesFunc != nil {
		return s.listTablesFunc(ctx, baseID)
	}
	return nil, nil
}

func (s *stubAPI) CreateTable(ctx context.Context, baseID, name string, fields []teable.Field) (*teable.Table, error) {
	if s.createTableFunc != nil {
		return s.createTableFunc(ctx, baseID, name, fields)
	}
	return &teable.Table{ID: "tbl-" + name, Name: name, Fields: fields}, nil
}

func (s *stubAPI) CreateField(ctx context.Context, tableID string, field teable.Field) (*teable.Field, error) {
	if s.createFieldFunc != nil {
		return s.createFieldFunc(ctx, tableID, field)
	}
	return &field, nil
}

func (s *stubAPI) ListRecords(ctx context.Context, tableID string, limit int) ([]teable.Record, error) {
	if s.listRecordsFunc != nil {
		return s.listRecordsFunc(ctx, tableID, limit)
	}
	return nil, nil
}

func (s *stubAPI) CreateRecords(ctx context.Context, tableID string, records []teable.Record) ([]teable.Record, error) {
	if s.createRecordsFunc != nil {
		return s.createRecordsFunc(ctx, tableID, records)
	}
	return records, nil
}

func (s *stubAPI) UpdateRecord(ctx context.Context, tableID, recordID string, fields map[string]any) error {
	if s.updateRecordFunc != nil {
		return s.updateRecordFunc(ctx, tableID, recordID, fields)
	}
	return nil
}

func newTestSeeder(t *testing.T, api API) *Seeder {
	t.Helper()
	return NewSeeder(api, nil, t.TempDir(), zap.NewNop())
}

func seedBaseCache(t *testing.T, s *Seeder) {
	t.Helper()
	require.NoError(t, s.baseCache().Write([]BaseRecord{
		{Workspace: "Acme Workspace", Name: "Bug Tracker"},
	}))
}

func TestGenerateTablesDropsLinksToUnknownTables(t *testing.T) {
	mock := &llm.MockClient{
		GenerateFunc: func(ctx context.Context, req llm.Request) (string, error) {
			return `[
				{"base":"Bug Tracker","name":"Bugs","fields":[
					{"name":"Title","type":"singleLineText"},
					{"name":"Component","type":"link","link_table":"Components","relationship":"manyOne"},
					{"name":"Ghost","type":"link","link_table":"DoesNotExist","relationship":"manyOne"}
				]},
				{"base":"Bug Tracker","name":"Components","fields":[
					{"name":"Name","type":"singleLineText"}
				]}
			]`, nil
		},
	}
	s := newTestSeeder(t, &stubAPI{})
	s.llm = mock
	seedBaseCache(t, s)

	require.NoError(t, s.GenerateTables(context.Background(), 2))

	cached, err := s.tableCache().Read()
	require.NoError(t, err)
	require.Len(t, cached, 2)
	assert.Equal(t, "Acme Workspace", cached[0].Workspace)
	require.Len(t, cached[0].Fields, 2)
	assert.Equal(t, "Component", cached[0].Fields[1].Name)
}

func TestGenerateTablesRejectsEmptyBasesCache(t *testing.T) {
	s := newTestSeeder(t, &stubAPI{})
	s.llm = &llm.MockClient{}
	require.NoError(t, s.baseCache().Write([]BaseRecord{}))

	err := s.GenerateTables(context.Background(), 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generate-bases")
}

func TestSeedTablesResolvesLinkFieldForeignTable(t *testing.T) {
	var linkFields []teable.Field
	api := &stubAPI{
		createFieldFunc: func(ctx context.Context, tableID string, field teable.Field) (*teable.Field, error) {
			assert.Equal(t, "tbl-Bugs", tableID)
			linkFields = append(linkFields, field)
			return &field, nil
		},
	}
	s := newTestSeeder(t, api)

	tables := []TableRecord{
		{Workspace: "Acme Workspace", Base: "Bug Tracker", Name: "Components", Fields: []FieldSpec{
			{Name: "Name", Type: "singleLineText"},
		}},
		{Workspace: "Acme Workspace", Base: "Bug Tracker", Name: "Bugs", Fields: []FieldSpec{
			{Name: "Title", Type: "singleLineText"},
			{Name: "Severity", Type: "singleSelect", Choices: []string{"low", "high"}},
			{Name: "Component", Type: "link", LinkTable: "Components", Relationship: "manyOne"},
		}},
	}
	require.NoError(t, s.tableCache().Write(tables))

	summary, err := s.SeedTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Created)

	require.Len(t, linkFields, 1)
	assert.Equal(t, "link", linkFields[0].Type)
	assert.Equal(t, "tbl-Components", linkFields[0].Options["foreignTableId"])
	assert.Equal(t, "manyOne", linkFields[0].Options["relationship"])
}

func TestSeedTablesSkipsExistingWithoutTouchingFields(t *testing.T) {
	fieldCreates := 0
	api := &stubAPI{
		listTablesFunc: func(ctx context.Context, baseID string) ([]teable.Table, error) {
			return []teable.Table{{ID: "tbl9", Name: "Bugs"}}, nil
		},
		createFieldFunc: func(ctx context.Context, tableID string, field teable.Field) (*teable.Field, error) {
			fieldCreates++
			return &field, nil
		},
	}
	s := newTestSeeder(t, api)

	tables := []TableRecord{
		{Workspace: "Acme Workspace", Base: "Bug Tracker", Name: "Bugs", Fields: []FieldSpec{
			{Name: "Title", Type: "singleLineText"},
			{Name: "Dup", Type: "link", LinkTable: "Bugs", Relationship: "manyOne"},
		}},
	}
	require.NoError(t, s.tableCache().Write(tables))

	summary, err := s.SeedTables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, fieldCreates)
}

func TestSeedTableRecordsInsertsMissingRowsAndStitchesLinks(t *testing.T) {
	recordsByTable := map[string][]teable.Record{
		"tbl-Components": {
			{ID: "recC1", Fields: map[string]any{"Name": "parser"}},
		},
	}
	var updates []map[string]any
	api := &stubAPI{
		listTablesFunc: func(ctx context.Context, baseID string) ([]teable.Table, error) {
			return []teable.Table{{ID: "tbl-Bugs", Name: "Bugs"}, {ID: "tbl-Components", Name: "Components"}}, nil
		},
		listRecordsFunc: func(ctx context.Context, tableID string, limit int) ([]teable.Record, error) {
			return recordsByTable[tableID], nil
		},
		createRecordsFunc: func(ctx context.Context, tableID string, records []teable.Record) ([]teable.Record, error) {
			for i, r := range records {
				r.ID = fmt.Sprintf("rec%d", len(recordsByTable[tableID])+i+1)
				recordsByTable[tableID] = append(recordsByTable[tableID], r)
			}
			return recordsByTable[tableID], nil
		},
		updateRecordFunc: func(ctx context.Context, tableID, recordID string, fields map[string]any) error {
			updates = append(updates, fields)
			return nil
		},
	}
	s := newTestSeeder(t, api)

	schema := TableRecord{
		Workspace: "Acme Workspace", Base: "Bug Tracker", Name: "Bugs",
		Fields: []FieldSpec{
			{Name: "Title", Type: "singleLineText"},
			{Name: "Component", Type: "link", LinkTable: "Components", Relationship: "manyOne"},
		},
	}
	require.NoError(t, s.tableCache().Write([]TableRecord{schema}))
	require.NoError(t, s.recordCache().Write([]TableRows{{
		Workspace: "Acme Workspace", Base: "Bug Tracker", Table: "Bugs",
		Rows: []map[string]any{
			{"Title": "Crash on save"},
			{"Title": "Slow startup"},
		},
	}}))

	summary, err := s.SeedTableRecords(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Created)

	require.Len(t, updates, 2)
	for _, u := range updates {
		ref, ok := u["Component"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "recC1", ref["id"])
	}
}
