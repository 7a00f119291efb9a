package blobcache

import (
	"context"

	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
)

var _ ports.CacheService = Disabled{}

// Disabled is a cache service that is never available.
type Disabled struct{}

// Available always reports false.
func (Disabled) Available(context.Context) bool { return false }

// Restore never matches.
func (Disabled) Restore(context.Context, []string, string, []string) (string, error) {
	return "", nil
}

// Save reports the service as unavailable.
func (Disabled) Save(context.Context, []string, string) (domain.SaveResult, error) {
	return domain.SaveResultServiceUnavailable, nil
}
