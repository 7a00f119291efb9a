package cachesync

import (
	"context"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
)

// Saver persists the dependency cache directory after the build.
type Saver struct {
	cache  ports.CacheService
	logger ports.Logger
}

// NewSaver creates a Saver.
func NewSaver(cache ports.CacheService, logger ports.Logger) *Saver {
	return &Saver{cache: cache, logger: logger}
}

// Save uploads the directory recorded in state under its key.
//
// An existing blob under the key is a successful no-op. Every other failure
// is logged and reported through the result; Save never returns an error.
func (s *Saver) Save(ctx context.Context, state domain.CacheState) domain.SaveResult {
	if !s.cache.Available(ctx) {
		s.logger.Info("Cache service is not available, skipping save")
		return domain.SaveResultServiceUnavailable
	}

	result, err := s.cache.Save(ctx, []string{state.Dir}, state.Key)
	if err != nil {
		s.logger.Warn("Failed to save composer cache: " + err.Error())
		return domain.SaveResultError
	}

	switch result {
	case domain.SaveResultSaved:
		s.logger.Info("Composer cache saved with key: " + state.Key)
	case domain.SaveResultAlreadyExists:
		s.logger.Info("Composer cache already exists, skipping save")
	case domain.SaveResultServiceUnavailable:
		s.logger.Info("Cache service is not available, skipping save")
	case domain.SaveResultError:
		s.logger.Warn("Failed to save composer cache")
	}
	return result
}
