package teable

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/teable"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// TableRows holds the generated rows of one table. Link fields are absent
// from the rows; they are stitched to real records after insertion.
type TableRows struct {
	Workspace string           `json:"workspace"`
	Base      string           `json:"base"`
	Table     string           `json:"table"`
	Rows      []map[string]any `json:"rows"`
}

const recordBatchSize = 50

func (s *Seeder) recordCache() *pipeline.Cache[TableRows] {
	return pipeline.NewCache[TableRows](s.dir, "records")
}

func rowPrompt(table TableRecord) pipeline.PromptFunc {
	fields := make([]string, 0, len(table.Fields))
	for _, f := range table.Fields {
		if f.Type == "link" {
			continue
		}
		desc := fmt.Sprintf("%q (%s)", f.Name, f.Type)
		if f.Type == "singleSelect" {
			desc = fmt.Sprintf("%q (one of %v)", f.Name, f.Choices)
		}
		fields = append(fields, desc)
	}
	return func(n int) llm.Request {
		return llm.Request{
			System: "You generate realistic rows for a no-code database table. Always return the EXACT number of records requested as a JSON array, with no commentary.",
			Prompt: fmt.Sprintf(`Generate EXACTLY %d rows for the table %q as a JSON array.

Each element is an object with these keys: %v.
Dates are ISO 8601 strings, numbers are plain JSON numbers.
Values of the first key must be unique across rows.`, n, table.Name, fields),
		}
	}
}

// GenerateTableRecords asks the LLM for rowsPerTable rows for every cached
// table schema and caches the lot.
func (s *Seeder) GenerateTableRecords(ctx context.Context, rowsPerTable int) error {
	if s.llm == nil {
		return fmt.Errorf("generate records: no LLM client configured")
	}

	tables, err := s.tableCache().Read()
	if err != nil {
		return fmt.Errorf("generate records: %w", err)
	}

	all := make([]TableRows, 0, len(tables))
	for _, t := range tables {
		rows, err := pipeline.GenerateRecords[map[string]any](ctx, s.llm, s.logger, rowPrompt(t), rowsPerTable)
		if err != nil {
			return fmt.Errorf("generate rows for table %q: %w", t.Name, err)
		}
		all = append(all, TableRows{
			Workspace: t.Workspace,
			Base:      t.Base,
			Table:     t.Name,
			Rows:      rows,
		})
	}

	if err := s.recordCache().Write(all); err != nil {
		return err
	}
	s.logger.Info("generated table records",
		zap.Int("tables", len(all)), zap.Int("rows_per_table", rowsPerTable))
	return nil
}

// SeedTableRecords inserts the cached rows table by table, skipping rows
// whose title already exists, then fills link fields with references to
// random foreign records.
func (s *Seeder) SeedTableRecords(ctx context.Context) (pipeline.Summary, error) {
	cached, ok, err := pipeline.Load(s.recordCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "records"}, err
	}

	tables, err := s.tableCache().Read()
	if err != nil {
		return pipeline.Summary{Entity: "records"}, fmt.Errorf("read table schemas: %w", err)
	}
	schemas := make(map[string]TableRecord, len(tables))
	for _, t := range tables {
		schemas[t.Base+"/"+t.Name] = t
	}

	tableIDs := make(map[string]string)

	summary := pipeline.RunSequential(ctx, s.logger, "records", cached,
		func(tr TableRows) string { return tr.Base + "/" + tr.Table },
		func(ctx context.Context, tr TableRows) (pipeline.Status, error) {
			schema, known := schemas[tr.Base+"/"+tr.Table]
			if !known {
				return pipeline.StatusFailed, fmt.Errorf("no schema cached for table %q", tr.Table)
			}

			tableID, err := s.tableIDByName(ctx, tr, tableIDs)
			if err != nil {
				return pipeline.StatusFailed, err
			}

			created, err := s.insertMissingRows(ctx, tableID, schema, tr.Rows)
			if err != nil {
				return pipeline.StatusFailed, err
			}
			if created == 0 {
				return pipeline.StatusSkipped, nil
			}

			if err := s.stitchLinks(ctx, tableID, schema, tableIDs); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

func (s *Seeder) tableIDByName(ctx context.Context, tr TableRows, cache map[string]string) (string, error) {
	key := tr.Base + "/" + tr.Table
	if id, found := cache[key]; found {
		return id, nil
	}
	baseID, err := s.baseIDByName(ctx, tr.Workspace, tr.Base)
	if err != nil {
		return "", err
	}
	inBase, err := s.api.ListTables(ctx, baseID)
	if err != nil {
		return "", err
	}
	for _, t := range inBase {
		cache[tr.Base+"/"+t.Name] = t.ID
	}
	id, found := cache[key]
	if !found {
		return "", fmt.Errorf("table %q not found in base %q", tr.Table, tr.Base)
	}
	return id, nil
}

// insertMissingRows batches the rows whose title is not already present and
// returns how many were inserted.
func (s *Seeder) insertMissingRows(ctx context.Context, tableID string, schema TableRecord, rows []map[string]any) (int, error) {
	titleField := schema.Fields[0].Name

	existing, err := s.api.ListRecords(ctx, tableID, 1000)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, r := range existing {
		if title, ok := r.Fields[titleField].(string); ok {
			seen[title] = true
		}
	}

	var batch []teable.Record
	created := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := s.api.CreateRecords(ctx, tableID, batch); err != nil {
			return err
		}
		created += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, row := range rows {
		if title, ok := row[titleField].(string); ok && seen[title] {
			continue
		}
		batch = append(batch, teable.Record{Fields: row})
		if len(batch) == recordBatchSize {
			if err := flush(); err != nil {
				return created, err
			}
		}
	}
	return created, flush()
}

// stitchLinks fills every link field of freshly inserted rows with a random
// foreign record reference, spreading manyOne links across the foreign rows.
func (s *Seeder) stitchLinks(ctx context.Context, tableID string, schema TableRecord, tableIDs map[string]string) error {
	for _, f := range schema.Fields {
		if f.Type != "link" {
			continue
		}

		foreignID, found := tableIDs[schema.Base+"/"+f.LinkTable]
		if !found {
			s.logger.Warn("foreign table unknown, link left empty",
				zap.String("table", schema.Name), zap.String("field", f.Name))
			continue
		}
		foreign, err := s.api.ListRecords(ctx, foreignID, 1000)
		if err != nil {
			return err
		}
		if len(foreign) == 0 {
			s.logger.Warn("foreign table has no records, link left empty",
				zap.String("table", schema.Name), zap.String("field", f.Name))
			continue
		}

		records, err := s.api.ListRecords(ctx, tableID, 1000)
		if err != nil {
			return err
		}
		for _, r := range records {
			if _, linked := r.Fields[f.Name]; linked {
				continue
			}
			var value any
			if f.Relationship == "manyMany" {
				n := s.faker.IntRange(1, 2)
				refs := make([]map[string]any, 0, n)
				for i := 0; i < n; i++ {
					refs = append(refs, map[string]any{"id": fake.Pick(s.faker, foreign).ID})
				}
				value = refs
			} else {
				value = map[string]any{"id": fake.Pick(s.faker, foreign).ID}
			}
			if err := s.api.UpdateRecord(ctx, tableID, r.ID, map[string]any{f.Name: value}); err != nil {
				return fmt.Errorf("link %s.%s: %w", schema.Name, f.Name, err)
			}
		}
	}
	return nil
}

// InsertTableRecords generates rowsPerTable rows per table and immediately
// seeds them.
func (s *Seeder) InsertTableRecords(ctx context.Context, rowsPerTable int) (pipeline.Summary, error) {
	if err := s.GenerateTableRecords(ctx, rowsPerTable); err != nil {
		return pipeline.Summary{Entity: "records"}, err
	}
	return s.SeedTableRecords(ctx)
}
