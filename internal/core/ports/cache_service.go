package ports

import (
	"context"

	"go.trai.ch/buildcache/internal/core/domain"
)

// CacheService defines the remote blob cache holding dependency directories.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache_service.go -destination=mocks/mock_cache_service.go -package=mocks
type CacheService interface {
	// Available reports whether the service can be used in this job.
	Available(ctx context.Context) bool

	// Restore materializes the blob stored under key into paths.
	//
	// When no blob is stored under key, the most recent blob whose key starts
	// with one of fallbackPrefixes, tried in order, is restored instead.
	// It returns the key of the restored blob, or "" when nothing matched.
	Restore(ctx context.Context, paths []string, key string, fallbackPrefixes []string) (string, error)

	// Save uploads the current contents of paths under key.
	//
	// A blob already stored under key is reported as
	// domain.SaveResultAlreadyExists with a nil error.
	Save(ctx context.Context, paths []string, key string) (domain.SaveResult, error)
}
