package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/buildcache/internal/adapters/metrics"
)

func TestLatencyTracker_Snapshot(t *testing.T) {
	tracker := metrics.NewLatencyTracker(0.01)

	for _, d := range []time.Duration{
		1 * time.Millisecond,
		5 * time.Millisecond,
		10 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
	} {
		tracker.Observe("restore", d)
	}
	tracker.Observe("build", 2*time.Second)

	timings := tracker.Snapshot()
	require.Len(t, timings, 2)

	restore := timings[0]
	assert.Equal(t, "restore", restore.Stage)
	assert.Equal(t, 5, restore.Count)
	assert.Equal(t, 166*time.Millisecond, restore.Total)
	assert.InDelta(t, float64(10*time.Millisecond), float64(restore.P50), float64(time.Millisecond))
	assert.GreaterOrEqual(t, restore.P99, 40*time.Millisecond)
	assert.LessOrEqual(t, restore.P99, 110*time.Millisecond)

	build := timings[1]
	assert.Equal(t, "build", build.Stage)
	assert.Equal(t, 1, build.Count)
	assert.Equal(t, 2*time.Second, build.Total)
	assert.InDelta(t, float64(2*time.Second), float64(build.P50), float64(40*time.Millisecond))
}

func TestLatencyTracker_Empty(t *testing.T) {
	tracker := metrics.NewLatencyTracker(0.01)
	assert.Empty(t, tracker.Snapshot())
}

func TestLatencyTracker_NegativeDuration(t *testing.T) {
	tracker := metrics.NewLatencyTracker(0.01)
	tracker.Observe("clock-skew", -time.Second)

	timings := tracker.Snapshot()
	require.Len(t, timings, 1)
	assert.Equal(t, 1, timings[0].Count)
	assert.Equal(t, time.Duration(0), timings[0].Total)
}
