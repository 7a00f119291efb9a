// Package metrics records stage durations of a phase with DDSketch.
package metrics

import (
	"sync"
	"time"

	"github.com/DataDog/sketches-go/ddsketch"
	"go.trai.ch/buildcache/internal/core/domain"
	"go.trai.ch/buildcache/internal/core/ports"
)

var _ ports.Metrics = (*LatencyTracker)(nil)

// DefaultRelativeAccuracy is the quantile accuracy used by the node (1%).
const DefaultRelativeAccuracy = 0.01

// LatencyTracker implements ports.Metrics, keeping one sketch per stage.
type LatencyTracker struct {
	mu               sync.Mutex
	sketches         map[string]*ddsketch.DDSketch
	totals           map[string]time.Duration
	order            []string
	relativeAccuracy float64
}

// NewLatencyTracker creates a tracker.
// relativeAccuracy bounds the error of quantile estimates (0.01 = 1%).
func NewLatencyTracker(relativeAccuracy float64) *LatencyTracker {
	return &LatencyTracker{
		sketches:         make(map[string]*ddsketch.DDSketch),
		totals:           make(map[string]time.Duration),
		relativeAccuracy: relativeAccuracy,
	}
}

// Observe records one duration for stage.
func (lt *LatencyTracker) Observe(stage string, d time.Duration) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	sketch, exists := lt.sketches[stage]
	if !exists {
		var err error
		sketch, err = ddsketch.LogUnboundedDenseDDSketch(lt.relativeAccuracy)
		if err != nil {
			sketch, _ = ddsketch.NewDefaultDDSketch(DefaultRelativeAccuracy)
		}
		lt.sketches[stage] = sketch
		lt.order = append(lt.order, stage)
	}

	// DDSketch only accepts non-negative values; sub-microsecond stages count as zero.
	_ = sketch.Add(float64(max(d, 0).Microseconds()))
	lt.totals[stage] += max(d, 0)
}

// Snapshot returns the aggregated timings in the order stages were first seen.
func (lt *LatencyTracker) Snapshot() []domain.StageTiming {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	timings := make([]domain.StageTiming, 0, len(lt.order))
	for _, stage := range lt.order {
		sketch := lt.sketches[stage]
		p50, _ := sketch.GetValueAtQuantile(0.50)
		p99, _ := sketch.GetValueAtQuantile(0.99)

		timings = append(timings, domain.StageTiming{
			Stage: stage,
			Count: int(sketch.GetCount()),
			Total: lt.totals[stage],
			P50:   micros(p50),
			P99:   micros(p99),
		})
	}
	return timings
}

func micros(v float64) time.Duration {
	return time.Duration(v * float64(time.Microsecond))
}
