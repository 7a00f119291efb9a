package ports

import "go.trai.ch/buildcache/internal/core/domain"

// KeyDeriver computes the cache key of a project from its dependency manifest.
//
//go:generate go run go.uber.org/mock/mockgen -source=key_deriver.go -destination=mocks/mock_key_deriver.go -package=mocks
type KeyDeriver interface {
	// Derive fingerprints the manifest of projectDir and builds the cache key
	// with the optional suffix.
	// Returns nil, nil if the project has no manifest.
	Derive(projectDir, suffix string) (*domain.CacheKey, error)
}
