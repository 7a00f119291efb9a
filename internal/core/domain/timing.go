package domain

import "time"

// StageTiming summarizes the durations observed for one stage of a phase.
type StageTiming struct {
	Stage string
	Count int
	Total time.Duration
	P50   time.Duration
	P99   time.Duration
}
