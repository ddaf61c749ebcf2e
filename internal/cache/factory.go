package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"cascadelog/internal/cascade"
	"cascadelog/internal/config"
)

// NewCacheFromConfig creates a Cache implementation based on the cache
// config type.
func NewCacheFromConfig(cfg config.CacheConfig) (cascade.Cache, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite cache")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
		return NewSQLiteCache(filepath.Join(cfg.DataDir, "cache.db"))
	case "memory":
		return NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}
