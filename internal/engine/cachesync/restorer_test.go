package cachesync_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports/mocks"
	"go.trai.ch/buildcache/internal/engine/cachesync"
	"go.uber.org/mock/gomock"
)

var testKey = domain.CacheKey{Namespace: "composer", Platform: "linux", Fingerprint: "abc123"}

func TestRestorer_Restore(t *testing.T) {
	tests := []struct {
		name       string
		matched    string
		err        error
		logLevel   string
		logMessage string
		want       domain.RestoreResult
	}{
		{
			name:       "exact hit",
			matched:    "composer-linux-abc123",
			logLevel:   "info",
			logMessage: "Composer cache restored from key: composer-linux-abc123",
			want:       domain.RestoreResult{Outcome: domain.RestoreExactHit, MatchedKey: "composer-linux-abc123"},
		},
		{
			name:       "fallback hit",
			matched:    "composer-linux-old",
			logLevel:   "info",
			logMessage: "Composer cache restored from fallback key: composer-linux-old",
			want:       domain.RestoreResult{Outcome: domain.RestoreFallbackHit, MatchedKey: "composer-linux-old"},
		},
		{
			name:       "miss",
			logLevel:   "info",
			logMessage: "Composer cache not found",
			want:       domain.RestoreResult{Outcome: domain.RestoreMiss},
		},
		{
			name:       "service error is downgraded",
			err:        errors.New("connection reset"),
			logLevel:   "warn",
			logMessage: "Failed to restore composer cache: connection reset",
			want:       domain.RestoreResult{Outcome: domain.RestoreFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			cache := mocks.NewMockCacheService(ctrl)
			log := mocks.NewMockLogger(ctrl)

			cache.EXPECT().Available(gomock.Any()).Return(true)
			cache.EXPECT().
				Restore(gomock.Any(), []string{"/cache"}, "composer-linux-abc123", []string{"composer-linux-"}).
				Return(tt.matched, tt.err)

			switch tt.logLevel {
			case "info":
				log.EXPECT().Info(tt.logMessage)
			case "warn":
				log.EXPECT().Warn(tt.logMessage)
			}

			got := cachesync.NewRestorer(cache, log).Restore(context.Background(), "/cache", testKey)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRestorer_Unavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheService(ctrl)
	log := mocks.NewMockLogger(ctrl)

	cache.EXPECT().Available(gomock.Any()).Return(false)
	log.EXPECT().Info("Cache service is not available, skipping restore")

	got := cachesync.NewRestorer(cache, log).Restore(context.Background(), "/cache", testKey)

	assert.Equal(t, domain.RestoreSkipped, got.Outcome)
	assert.False(t, got.Hit())
}

func TestRestorer_SuffixIsPartOfExactKeyOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := mocks.NewMockCacheService(ctrl)
	log := mocks.NewMockLogger(ctrl)

	key := testKey
	key.Suffix = "php8.3"

	cache.EXPECT().Available(gomock.Any()).Return(true)
	cache.EXPECT().
		Restore(gomock.Any(), []string{"/cache"}, "composer-linux-abc123-php8.3", []string{"composer-linux-"}).
		Return("composer-linux-abc123-php8.3", nil)
	log.EXPECT().Info(gomock.Any())

	got := cachesync.NewRestorer(cache, log).Restore(context.Background(), "/cache", key)
	assert.Equal(t, domain.RestoreExactHit, got.Outcome)
}
