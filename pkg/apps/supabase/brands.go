package supabase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/pipeline"
)

// BrandRecord is a generated brand fixture for the project's brands table.
type BrandRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	WebsiteURL  string    `json:"website_url,omitempty"`
	Verified    bool      `json:"verified"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// BrandRow is the database shape of one brands row.
type BrandRow struct {
	ID          string
	Name        string
	Description string
	LogoURL     string
	CreatedAt   time.Time
}

func (s *Seeder) brandCache() *pipeline.Cache[BrandRecord] {
	return pipeline.NewCache[BrandRecord](s.dir, "brands")
}

// GenerateBrands fabricates count brand fixtures with unique names and
// caches them.
func (s *Seeder) GenerateBrands(ctx context.Context, count int) error {
	names := make(map[string]bool, count)
	brands := make([]BrandRecord, 0, count)
	for len(brands) < count {
		name := strings.ReplaceAll(s.faker.Raw().Company(), "-", " ")
		if names[name] {
			continue
		}
		names[name] = true

		created := time.Now().AddDate(-2, 0, 0).
			Add(time.Duration(s.faker.Float64Range(0, 1) * float64(2*365*24*time.Hour)))
		brand := BrandRecord{
			ID:        uuid.NewString(),
			Name:      name,
			Verified:  s.faker.Bool(30),
			IsActive:  s.faker.Bool(95),
			CreatedAt: created,
		}
		if s.faker.Bool(70) {
			brand.Description = s.faker.Raw().Sentence(10)
		}
		if s.faker.Bool(60) {
			brand.LogoURL = s.faker.Raw().ImageURL(200, 200)
		}
		if s.faker.Bool(40) {
			brand.WebsiteURL = s.faker.Raw().URL()
		}
		brands = append(brands, brand)
	}

	if err := s.brandCache().Write(brands); err != nil {
		return err
	}
	s.logger.Info("generated brands", zap.Int("count", count))
	return nil
}

// SeedBrands inserts the cached brands into the brands table, skipping
// names that already exist.
func (s *Seeder) SeedBrands(ctx context.Context) (pipeline.Summary, error) {
	brands, ok, err := pipeline.Load(s.brandCache(), s.logger)
	if err != nil || !ok {
		return pipeline.Summary{Entity: "brands"}, err
	}

	seen, err := s.store.ExistingBrandNames(ctx)
	if err != nil {
		return pipeline.Summary{Entity: "brands"}, fmt.Errorf("precheck brands: %w", err)
	}

	summary := pipeline.RunSequential(ctx, s.logger, "brands", brands,
		func(b BrandRecord) string { return b.Name },
		func(ctx context.Context, b BrandRecord) (pipeline.Status, error) {
			if seen[b.Name] {
				return pipeline.StatusSkipped, nil
			}
			err := s.store.InsertBrand(ctx, BrandRow{
				ID:          b.ID,
				Name:        b.Name,
				Description: b.Description,
				LogoURL:     b.LogoURL,
				CreatedAt:   b.CreatedAt,
			})
			if err != nil {
				return pipeline.StatusFailed, err
			}
			return pipeline.StatusCreated, nil
		})

	s.logger.Info(summary.String())
	return summary, nil
}

// InsertBrands generates count brands and immediately seeds them.
func (s *Seeder) InsertBrands(ctx context.Context, count int) (pipeline.Summary, error) {
	if err := s.GenerateBrands(ctx, count); err != nil {
		return pipeline.Summary{Entity: "brands"}, err
	}
	return s.SeedBrands(ctx)
}
