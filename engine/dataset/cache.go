package dataset

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/WessleyAI/ktype-finder/engine/domain"
)

// Snapshot is the loaded dataset. It is never mutated after load and may be
// shared freely between goroutines.
type Snapshot struct {
	Rows        []domain.Fitment
	Catalog     domain.Catalog
	Quality     Quality
	Fingerprint string
	LoadedAt    time.Time
}

// LoadFunc produces the dataset rows and a fingerprint of their source.
type LoadFunc func(ctx context.Context) ([]domain.Fitment, string, error)

// Cache loads the dataset on first use and serves the same Snapshot for the
// rest of the process. A failed load is not cached; the next Get retries it.
type Cache struct {
	load   LoadFunc
	logger *slog.Logger

	mu   sync.Mutex
	snap *Snapshot
}

// NewCache creates a Cache around load.
func NewCache(load LoadFunc, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{load: load, logger: logger}
}

// NewFileCache creates a Cache that reads the reference file at path.
func NewFileCache(path string, opts Options, logger *slog.Logger) *Cache {
	return NewCache(func(context.Context) ([]domain.Fitment, string, error) {
		return LoadFile(path, opts)
	}, logger)
}

// NewStaticCache wraps rows that are already in memory.
func NewStaticCache(rows []domain.Fitment) *Cache {
	return NewCache(func(context.Context) ([]domain.Fitment, string, error) {
		return rows, "static", nil
	}, nil)
}

// Get returns the cached Snapshot, loading it if this is the first call.
func (c *Cache) Get(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snap != nil {
		return c.snap, nil
	}

	start := time.Now()
	rows, fp, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		Rows:        rows,
		Catalog:     BuildCatalog(rows),
		Quality:     Assess(rows),
		Fingerprint: fp,
		LoadedAt:    time.Now(),
	}
	c.logger.Info("dataset loaded",
		"rows", len(rows),
		"makes", len(snap.Catalog.Makes),
		"models", len(snap.Catalog.Models),
		"fingerprint", fp,
		"duration", time.Since(start),
	)
	if !snap.Quality.Clean() {
		c.logger.Warn("dataset has incomplete rows", "quality", snap.Quality)
	}
	c.snap = snap
	return snap, nil
}
