package uwyo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/soundinglab/inversion-etl/internal/domain"
	"github.com/soundinglab/inversion-etl/internal/pipeline"
)

// CachedFetcher wraps a Fetcher with an on-disk page cache so a station-month
// is downloaded at most once. In offline mode it serves from the cache only.
type CachedFetcher struct {
	inner   pipeline.Fetcher
	dir     string
	offline bool
	logger  *slog.Logger
}

// NewCachedFetcher creates a cache decorator writing pages into dir. When
// offline is true, cache misses return domain.ErrNoData instead of reaching
// the network.
func NewCachedFetcher(inner pipeline.Fetcher, dir string, offline bool, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{
		inner:   inner,
		dir:     dir,
		offline: offline,
		logger:  logger,
	}
}

// Fetch returns the cached page when present, otherwise delegates and stores
// the result. Empty months are not cached so they can be retried later.
func (c *CachedFetcher) Fetch(ctx context.Context, year int, month time.Month, station string) (string, error) {
	path := c.path(year, month, station)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		c.logger.Debug("cache hit", "path", path)
		return string(data), nil
	case !errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("read cached page: %w", err)
	}

	if c.offline {
		return "", domain.ErrNoData
	}

	page, err := c.inner.Fetch(ctx, year, month, station)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return "", fmt.Errorf("write cached page: %w", err)
	}
	c.logger.Debug("page cached", "path", path)
	return page, nil
}

func (c *CachedFetcher) path(year int, month time.Month, station string) string {
	return filepath.Join(c.dir, fmt.Sprintf("response_%d_%02d_%s.html", year, int(month), station))
}
