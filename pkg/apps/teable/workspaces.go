package teable

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// WorkspaceRecord is a generated space fixture.
type WorkspaceRecord struct {
	Name string `json:"name"`
}

// BaseRecord is a generated base fixture inside a named workspace.
type BaseRecord struct {
	Workspace string `json:"workspace"`
	Name      string `json:"name"`
}

var baseNamePool = []string{
	"Product Roadmap",
	"Customer Tracker",
	"Hiring Pipeline",
	"Content Calendar",
	"Inventory",
	"Event Planning",
	"Bug Tracker",
	"Vendor Directory",
}

func (s *Seeder) workspaceCache() *pipeline.Cache[WorkspaceRecord] {
	return pipeline.NewCache[WorkspaceRecord](s.dir, "workspaces")
}

func (s *Seeder) baseCache() *pipeline.Cache[BaseRecord] {
	return pipeline.NewCache[BaseRecord](s.dir, "bases")
}

// GenerateWorkspaces fabricates count workspace fixtures with unique names
// and caches them.
func (s *Seeder) GenerateWorkspaces(ctx context.Context, count int) error {
	names := make(map[string]bool, count)
	workspaces := make([]WorkspaceRecord, 0, count)
	for len(workspaces) < count {
		name := s.faker.Raw().Company() + " Workspace"
		if names[name] {
			continue
		}
		names[name] = true
		workspaces = append(workspaces, WorkspaceRecord{Name: name})
	}

	if err := s.workspaceCache().Write(workspaces); err != nil {
		return err
	}
	s.logger.Info("generated workspaces", zap.Int("count", count))
	return nil
}

// SeedWorkspaces creates the cached workspaces as spaces, skipping names
// that already exist.
func (s *Seeder) SeedWorkspaces(ctx context.Context) (pipeline.Summary, error) {
	workspaces, ok, err := pipeline.Load(s.workspaceCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "workspaces"}, err
	}

	spaces, err := s.api.ListSpaces(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "workspaces"}, fmt.Errorf("precheck workspaces: %w", err)
	}
	seen := make(map[string]bool, len(spaces))
	for _, sp := range spaces {
		seen[sp.Name] = true
	}

	summary := pipeline.RunSequential(ctx, s.logger, "workspaces", workspaces,
		func(w WorkspaceRecord) string { return w.Name },
		func(ctx context.Context, w WorkspaceRecord) (pipeline.Status, error) {
			if seen[w.Name] {
				return pipeline.StatusSkipped, nil
			}
			if _, err := s.api.CreateSpace(ctx, w.Name); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertWorkspaces generates count workspaces and immediately seeds them.
func (s *Seeder) InsertWorkspaces(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateWorkspaces(ctx, count); err != nil {
		return pipeline.Summary{Entity: "workspaces"}, err
	}
	return s.SeedWorkspaces(ctx)
}

// GenerateBases fabricates count base fixtures spread round-robin across the
// cached workspaces.
func (s *Seeder) GenerateBases(ctx context.Context, count int) error {
	workspaces, err := s.workspaceCache().Read()
	if err != nil {
		return fmt.Errorf("generate bases: %w", err)
	}
	if len(workspaces) == 0 {
		return fmt.Errorf("generate bases: workspace cache is empty")
	}

	bases := make([]BaseRecord, 0, count)
	for i := 0; i < count; i++ {
		name := baseNamePool[i%len(baseNamePool)]
		if i >= len(baseNamePool) {
			name = fmt.Sprintf("%s %d", name, i/len(baseNamePool)+1)
		}
		bases = append(bases, BaseRecord{
			Workspace: workspaces[i%len(workspaces)].Name,
			Name:      name,
		})
	}

	if err := s.baseCache().Write(bases); err != nil {
		return err
	}
	s.logger.Info("generated bases", zap.Int("count", count))
	return nil
}

// SeedBases creates the cached bases in their workspaces, skipping names
// that already exist in the target space.
func (s *Seeder) SeedBases(ctx context.Context) (pipeline.Summary, error) {
	bases, ok, err := pipeline.Load(s.baseCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "bases"}, err
	}

	existing := make(map[string]bool)
	spaceIDs := make(map[string]string)

	summary := pipeline.RunSequential(ctx, s.logger, "bases", bases,
		func(b BaseRecord) string { return b.Workspace + "/" + b.Name },
		func(ctx context.Context, b BaseRecord) (pipeline.Status, error) {
			spaceID, cached := spaceIDs[b.Workspace]
			if !cached {
				var err error
				spaceID, err = s.spaceIDByName(ctx, b.Workspace)
				if err != nil {
					return pipeline.StatusFailed, err
				}
				spaceIDs[b.Workspace] = spaceID
				inSpace, err := s.api.ListBases(ctx, spaceID)
				if err != nil {
					return pipeline.StatusFailed, err
				}
				for _, eb := range inSpace {
					existing[b.Workspace+"/"+eb.Name] = true
				}
			}
			if existing[b.Workspace+"/"+b.Name] {
				return pipeline.StatusSkipped, nil
			}
			if _, err := s.api.CreateBase(ctx, spaceID, b.Name); err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertBases generates count bases and immediately seeds them.
func (s *Seeder) InsertBases(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateBases(ctx, count); err != nil {
		return pipeline.Summary{Entity: "bases"}, err
	}
	return s.SeedBases(ctx)
}
