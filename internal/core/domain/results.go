package domain

// SaveResult is the outcome of persisting a dependency cache.
type SaveResult uint8

const (
	// SaveResultSaved indicates the directory was uploaded under the key.
	SaveResultSaved SaveResult = iota
	// SaveResultAlreadyExists indicates a blob was already stored under the exact key.
	// Keys are deterministic, so this counts as success.
	SaveResultAlreadyExists
	// SaveResultServiceUnavailable indicates the cache service could not be used and nothing was attempted.
	SaveResultServiceUnavailable
	// SaveResultError indicates the save was attempted and failed.
	SaveResultError
)

// String returns a human-readable name for the result.
func (r SaveResult) String() string {
	switch r {
	case SaveResultSaved:
		return "saved"
	case SaveResultAlreadyExists:
		return "already-exists"
	case SaveResultServiceUnavailable:
		return "service-unavailable"
	case SaveResultError:
		return "error"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the result leaves a usable blob under the key.
func (r SaveResult) Succeeded() bool {
	return r == SaveResultSaved || r == SaveResultAlreadyExists
}

// RestoreOutcome classifies a restore attempt.
type RestoreOutcome uint8

const (
	// RestoreMiss indicates no blob matched the key or any fallback prefix.
	RestoreMiss RestoreOutcome = iota
	// RestoreExactHit indicates the blob stored under the requested key was restored.
	RestoreExactHit
	// RestoreFallbackHit indicates an older blob matching a fallback prefix was restored.
	RestoreFallbackHit
	// RestoreSkipped indicates the cache service was unavailable.
	RestoreSkipped
	// RestoreFailed indicates the service returned an error; the build continues cold.
	RestoreFailed
)

// String returns a human-readable name for the outcome.
func (o RestoreOutcome) String() string {
	switch o {
	case RestoreMiss:
		return "miss"
	case RestoreExactHit:
		return "hit"
	case RestoreFallbackHit:
		return "fallback-hit"
	case RestoreSkipped:
		return "skipped"
	case RestoreFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RestoreResult is the outcome of a restore attempt.
type RestoreResult struct {
	Outcome RestoreOutcome
	// MatchedKey is the key of the restored blob. Empty unless a hit occurred.
	MatchedKey string
}

// Hit reports whether any blob was restored.
func (r RestoreResult) Hit() bool {
	return r.Outcome == RestoreExactHit || r.Outcome == RestoreFallbackHit
}
