package teable

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/teable"
	"github.com/fixturelab/platformseed/pkg/llm"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// FieldSpec is one column of a generated table schema. Link fields name
// their foreign table; the real table ID is resolved at seed time.
type FieldSpec struct {
	Name         string   `json:"name"`
	Type         string   `json:"type"`
	Choices      []string `json:"choices,omitempty"`
	LinkTable    string   `json:"link_table,omitempty"`
	Relationship string   `json:"relationship,omitempty"`
}

// TableRecord is a generated table schema fixture.
type TableRecord struct {
	Workspace string      `json:"workspace"`
	Base      string      `json:"base"`
	Name      string      `json:"name"`
	Fields    []FieldSpec `json:"fields"`
}

func (s *Seeder) tableCache() *pipeline.Cache[TableRecord] {
	return pipeline.NewCache[TableRecord](s.dir, "tables")
}

func tablePrompt(baseNames []string) pipeline.PromptFunc {
	return func(n int) llm.Request {
		return llm.Request{
			System: "You design table schemas for a no-code database. Always return the EXACT number of records requested as a JSON array, with no commentary.",
			Prompt: fmt.Sprintf(`Generate EXACTLY %d table schemas as a JSON array. The tables
belong to these bases: %v; spread them across the bases and make the tables
of one base form a coherent little application.

Each element must have:
- "base": one of the base names above, verbatim
- "name": table name, unique within its base
- "fields": 3-6 fields; each field has
  - "name": column name
  - "type": one of "singleLineText", "longText", "number", "date", "singleSelect", "link"
  - "choices": 3-5 option names, only when type is "singleSelect"
  - "link_table": the name of another table IN THE SAME BASE, only when type is "link"
  - "relationship": "manyOne" or "manyMany", only when type is "link"

The FIRST field of every table must be singleLineText: it is the row title.
At most one link field per table, and only to a table you also generate.`, n, baseNames),
		}
	}
}

// GenerateTables asks the LLM for exactly count table schemas across the
// cached bases and caches them.
func (s *Seeder) GenerateTables(ctx context.Context, count int) error {
	if s.llm == nil {
		return fmt.Errorf("generate tables: no LLM client configured")
	}

	bases, err := s.baseCache().Read()
	if err != nil {
		return fmt.Errorf("generate tables: %w", err)
	}
	if len(bases) == 0 {
		return fmt.Errorf("generate tables: bases cache is empty (run generate-bases first)")
	}
	baseNames := make([]string, len(bases))
	baseWorkspace := make(map[string]string, len(bases))
	for i, b := range bases {
		baseNames[i] = b.Name
		baseWorkspace[b.Name] = b.Workspace
	}

	tables, err := pipeline.GenerateRecords[TableRecord](ctx, s.llm, s.logger, tablePrompt(baseNames), count)
	if err != nil {
		return fmt.Errorf("generate tables: %w", err)
	}

	// Pin each table to a known base and drop links to tables the model
	// never generated.
	names := make(map[string]bool, len(tables))
	for i := range tables {
		if _, known := baseWorkspace[tables[i].Base]; !known {
			tables[i].Base = bases[i%len(bases)].Name
		}
		tables[i].Workspace = baseWorkspace[tables[i].Base]
		names[tables[i].Base+"/"+tables[i].Name] = true
	}
	for i := range tables {
		kept := tables[i].Fields[:0]
		for _, f := range tables[i].Fields {
			if f.Type == "link" && !names[tables[i].Base+"/"+f.LinkTable] {
				continue
			}
			kept = append(kept, f)
		}
		tables[i].Fields = kept
	}

	if err := s.tableCache().Write(tables); err != nil {
		return err
	}
	s.logger.Info("generated tables", zap.Int("count", count))
	return nil
}

func toTeableField(f FieldSpec) teable.Field {
	field := teable.Field{Name: f.Name, Type: f.Type}
	if f.Type == "singleSelect" {
		choices := make([]map[string]any, len(f.Choices))
		for i, c := range f.Choices {
			choices[i] = map[string]any{"name": c}
		}
		field.Options = map[string]any{"choices": choices}
	}
	return field
}

// SeedTables creates the cached tables in two passes: every table with its
// non-link fields first, then the link fields once all foreign table IDs are
// known. Table names are the natural key within a base.
func (s *Seeder) SeedTables(ctx context.Context) (pipeline.Summary, error) {
	tables, ok, err := pipeline.Load(s.tableCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "tables"}, err
	}

	baseIDs := make(map[string]string)
	existing := make(map[string]teable.Table)
	createdNow := make(map[string]bool)
	tableIDs := pipeline.NewRefResolver[string, string]()

	summary := pipeline.RunSequential(ctx, s.logger, "tables", tables,
		func(t TableRecord) string { return t.Base + "/" + t.Name },
		func(ctx context.Context, t TableRecord) (pipeline.Status, error) {
			baseID, cached := baseIDs[t.Base]
			if !cached {
				var err error
				baseID, err = s.baseIDByName(ctx, t.Workspace, t.Base)
				if err != nil {
					return pipeline.StatusFailed, err
				}
				baseIDs[t.Base] = baseID
				inBase, err := s.api.ListTables(ctx, baseID)
				if err != nil {
					return pipeline.StatusFailed, err
				}
				for _, et := range inBase {
					existing[t.Base+"/"+et.Name] = et
				}
			}

			if et, dup := existing[t.Base+"/"+t.Name]; dup {
				tableIDs.Register(t.Base+"/"+t.Name, et.ID)
				return pipeline.StatusSkipped, nil
			}

			var fields []teable.Field
			for _, f := range t.Fields {
				if f.Type == "link" {
					continue
				}
				fields = append(fields, toTeableField(f))
			}
			created, err := s.api.CreateTable(ctx, baseID, t.Name, fields)
			if err != nil {
				return pipeline.StatusFailed, err
			}
			tableIDs.Register(t.Base+"/"+t.Name, created.ID)
			createdNow[t.Base+"/"+t.Name] = true
			return pipeline.StatusCreated, nil
		})

	// Link pass: every foreign table the generator allowed is in the same
	// base, so its ID is registered by now unless its creation failed.
	// Skipped tables keep their existing fields untouched.
	for _, t := range tables {
		if !createdNow[t.Base+"/"+t.Name] {
			continue
		}
		tableID, err := tableIDs.Resolve(t.Base + "/" + t.Name)
		if err != nil {
			continue
		}
		for _, f := range t.Fields {
			if f.Type != "link" {
				continue
			}
			foreignID, err := tableIDs.Resolve(t.Base + "/" + f.LinkTable)
			if err != nil {
				s.logger.Warn("link field skipped",
					zap.String("table", t.Name),
					zap.String("field", f.Name),
					zap.Error(err))
				continue
			}
			relationship := f.Relationship
			if relationship == "" {
				relationship = "manyOne"
			}
			_, err = s.api.CreateField(ctx, tableID, teable.Field{
				Name: f.Name,
				Type: "link",
				Options: map[string]any{
					"relationship":   relationship,
					"foreignTableId": foreignID,
				},
			})
			if err != nil {
				s.logger.Warn("link field failed",
					zap.String("table", t.Name),
					zap.String("field", f.Name),
					zap.Error(err))
			}
		}
	}

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertTables generates count tables and immediately seeds them.
func (s *Seeder) InsertTables(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateTables(ctx, count); err != nil {
		return pipeline.Summary{Entity: "tables"}, err
	}
	return s.SeedTables(ctx)
}
