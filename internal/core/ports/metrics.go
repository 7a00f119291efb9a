package ports

import (
	"time"

	"go.trai.ch/buildcache/internal/core/domain"
)

// Metrics records how long each stage of a phase took.
//
//go:generate go run go.uber.org/mock/mockgen -source=metrics.go -destination=mocks/mock_metrics.go -package=mocks
type Metrics interface {
	// Observe records one duration for stage.
	Observe(stage string, d time.Duration)

	// Snapshot returns the aggregated timings in the order stages were first seen.
	Snapshot() []domain.StageTiming
}
