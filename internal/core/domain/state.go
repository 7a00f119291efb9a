package domain

const (
	// StateCacheDir is the job state entry holding the dependency cache directory.
	StateCacheDir = "buildcache_cache_dir"

	// StateCacheKey is the job state entry holding the resolved cache key.
	StateCacheKey = "buildcache_cache_key"
)

// CacheState is the record handed from the pre-build phase to the post-build phase.
type CacheState struct {
	Dir string
	Key string
}

// Empty reports whether the record is missing either entry.
// A partial record is treated the same as no record: there is nothing to save.
func (s CacheState) Empty() bool {
	return s.Dir == "" || s.Key == ""
}
