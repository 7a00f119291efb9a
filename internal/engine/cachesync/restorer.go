// Package cachesync implements the restore and save protocol around a build,
// and the state hand-off between the two job phases.
package cachesync

import (
	"context"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
)

// Restorer seeds the dependency cache directory before the build.
type Restorer struct {
	cache  ports.CacheService
	logger ports.Logger
}

// NewRestorer creates a Restorer.
func NewRestorer(cache ports.CacheService, logger ports.Logger) *Restorer {
	return &Restorer{cache: cache, logger: logger}
}

// Restore tries the exact key and then its fallback prefixes.
//
// It never fails: an unavailable service or a service error is logged and
// reported through the outcome, and the build proceeds cold.
func (r *Restorer) Restore(ctx context.Context, dir string, key domain.CacheKey) domain.RestoreResult {
	if !r.cache.Available(ctx) {
		r.logger.Info("Cache service is not available, skipping restore")
		return domain.RestoreResult{Outcome: domain.RestoreSkipped}
	}

	exact := key.String()
	matched, err := r.cache.Restore(ctx, []string{dir}, exact, key.FallbackPrefixes())
	if err != nil {
		r.logger.Warn("Failed to restore composer cache: " + err.Error())
		return domain.RestoreResult{Outcome: domain.RestoreFailed}
	}

	switch matched {
	case "":
		r.logger.Info("Composer cache not found")
		return domain.RestoreResult{Outcome: domain.RestoreMiss}
	case exact:
		r.logger.Info("Composer cache restored from key: " + matched)
		return domain.RestoreResult{Outcome: domain.RestoreExactHit, MatchedKey: matched}
	default:
		r.logger.Info("Composer cache restored from fallback key: " + matched)
		return domain.RestoreResult{Outcome: domain.RestoreFallbackHit, MatchedKey: matched}
	}
}
