package chatwoot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/clients/chatwoot"
	"github.com/fixturelab/platformseed/pkg/fake"
	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// labelColors is Chatwoot's own sidebar palette.
var labelColors = []string{
	"#28AD21", "#A53326", "#8339DA", "#279097",
	"#8D8D8D", "#16A34A", "#2781F6", "#D12F42",
}

// LabelRecord is a generated conversation label fixture.
type LabelRecord struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Color         string `json:"color"`
	ShowOnSidebar bool   `json:"show_on_sidebar"`
}

func (s *Seeder) labelCache() *pipeline.Cache[LabelRecord] {
	return pipeline.NewCache[LabelRecord](s.dir, "labels")
}

// GenerateLabels writes exactly count label fixtures to the cache. Label
// titles are lowercase hyphenated, the only form Chatwoot accepts.
func (s *Seeder) GenerateLabels(ctx context.Context, count int) error {
	labels := make([]LabelRecord, 0, count)
	used := make(map[string]bool, count)
	for len(labels) < count {
		noun := strings.ToLower(s.faker.Raw().BuzzWord())
		title := strings.ReplaceAll(noun, " ", "-")
		if used[title] {
			title = fmt.Sprintf("%s-%d", title, s.faker.IntRange(2, 99))
			if used[title] {
				continue
			}
		}
		used[title] = true

		labels = append(labels, LabelRecord{
			Title:         title,
			Description:   s.faker.Raw().Sentence(8),
			Color:         fake.Pick(s.faker, labelColors),
			ShowOnSidebar: s.faker.Bool(80),
		})
	}

	if err := s.labelCache().Write(labels); err != nil {
		return err
	}
	s.logger.Info("generated labels", zap.Int("count", count))
	return nil
}

// SeedLabels creates the cached labels, skipping titles that already exist.
func (s *Seeder) SeedLabels(ctx context.Context) (pipeline.Summary, error) {
	labels, ok, err := pipeline.Load(s.labelCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "labels"}, err
	}

	existing, err := s.api.ListLabels(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "labels"}, fmt.Errorf("precheck labels: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l.Title] = true
	}

	summary := pipeline.Run(ctx, s.runner, "labels", labels,
		func(l LabelRecord) string { return l.Title },
		func(ctx context.Context, l LabelRecord) (pipeline.Status, error) {
			if seen[l.Title] {
				return pipeline.StatusSkipped, nil
			}
			_, err := s.api.AddLabel(ctx, chatwoot.Label{
				Title:         l.Title,
				Description:   l.Description,
				Color:         l.Color,
				ShowOnSidebar: l.ShowOnSidebar,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertLabels generates count labels and immediately seeds them.
func (s *Seeder) InsertLabels(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateLabels(ctx, count); err != nil {
		return pipeline.Summary{Entity: "labels"}, err
	}
	return s.SeedLabels(ctx)
}
