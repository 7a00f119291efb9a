package cachesync

import (
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
)

// Bridge hands the cache directory and key from the pre-build phase to the
// post-build phase through the job state store.
type Bridge struct {
	store ports.StateStore
}

// NewBridge creates a Bridge over store.
func NewBridge(store ports.StateStore) *Bridge {
	return &Bridge{store: store}
}

// Write records state. An empty record is not written.
func (b *Bridge) Write(state domain.CacheState) error {
	if state.Empty() {
		return nil
	}
	if err := b.store.Set(domain.StateCacheDir, state.Dir); err != nil {
		return err
	}
	return b.store.Set(domain.StateCacheKey, state.Key)
}

// Clear drops any record left in the store, so a phase never acts on
// state written by an earlier job.
func (b *Bridge) Clear() error {
	return b.store.Clear()
}

// Read recovers the record written by the pre-build phase.
// A missing record yields an empty state and no error.
func (b *Bridge) Read() (domain.CacheState, error) {
	dir, err := b.store.Get(domain.StateCacheDir)
	if err != nil {
		return domain.CacheState{}, err
	}
	key, err := b.store.Get(domain.StateCacheKey)
	if err != nil {
		return domain.CacheState{}, err
	}
	return domain.CacheState{Dir: dir, Key: key}, nil
}
