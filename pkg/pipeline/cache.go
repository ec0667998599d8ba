// Package pipeline implements the generate→cache→seed spine shared by every
// platform app: typed JSON cache files, deferred temp-ID reference
// resolution, bounded concurrent seeding, and typed per-record results.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/fixturelab/platformseed/pkg/apperrors"
)

// Cache is a typed JSON cache file: the hand-off boundary between the
// generate phase (expensive, possibly LLM-backed) and the seed phase
// (idempotent, retryable).
type Cache[T any] struct {
	path   string
	entity string
}

type envelope[T any] struct {
	GeneratedAt time.Time `json:"generated_at"`
	Records     []T       `json:"records"`
}

// NewCache returns the cache for one entity under an app's generated-data
// directory; the file is <dir>/<entity>.json.
func NewCache[T any](dir, entity string) *Cache[T] {
	return &Cache[T]{
		path:   filepath.Join(dir, entity+".json"),
		entity: entity,
	}
}

// Path returns the cache file location.
func (c *Cache[T]) Path() string {
	return c.path
}

// Write serializes records to the cache file, creating parent directories
// and overwriting any prior cache.
func (c *Cache[T]) Write(records []T) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(envelope[T]{
		GeneratedAt: time.Now().UTC(),
		Records:     records,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s cache: %w", c.entity, err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s cache: %w", c.entity, err)
	}
	return nil
}

// Read loads the cached records. A missing file returns
// apperrors.ErrCacheMissing wrapped with a remediation hint naming the
// generate command to run; callers log it and return without raising.
func (c *Cache[T]) Read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run generate-%s first)",
				apperrors.ErrCacheMissing, c.path, c.entity)
		}
		return nil, fmt.Errorf("read %s cache: %w", c.entity, err)
	}

	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode %s cache %s: %w", c.entity, c.path, err)
	}
	return env.Records, nil
}

// Load reads the cache for a seeding run. A missing cache is not an error
// for seeders: it logs the remediation hint and returns ok=false so the
// caller can report an empty summary.
func Load[T any](c *Cache[T], logger *zap.Logger) (records []T, ok bool, err error) {
	records, err = c.Read()
	if err != nil {
		if errors.Is(err, apperrors.ErrCacheMissing) {
			logger.Warn("no cached records to seed", zap.Error(err))
			return nil, false, nil
		}
		return nil, false, err
	}
	return records, true, nil
}
