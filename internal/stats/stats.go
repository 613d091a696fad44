// Package stats keeps rolling-window numbers about outline processing.
package stats

import (
	"sort"
	"sync"
	"time"
)

// Outcome is how a single document finished.
type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCached    Outcome = "cached"
	OutcomeFailed    Outcome = "failed"
)

type sample struct {
	at         time.Time
	durationMs int64
	outcome    Outcome
	category   string
}

// Snapshot is a point-in-time aggregate of processing samples. Latency
// figures cover every outcome except failures.
type Snapshot struct {
	Count     int             `json:"count"`
	Completed int             `json:"completed"`
	Cached    int             `json:"cached"`
	Failed    int             `json:"failed"`
	Failures  map[string]int  `json:"failures,omitempty"`
	Latency   LatencySnapshot `json:"latency"`
	Window    string          `json:"window"`
}

type LatencySnapshot struct {
	MinMs int64   `json:"min_ms"`
	MaxMs int64   `json:"max_ms"`
	AvgMs float64 `json:"avg_ms"`
	P50Ms float64 `json:"p50_ms"`
	P95Ms float64 `json:"p95_ms"`
	P99Ms float64 `json:"p99_ms"`
}

// Tracker records per-document processing time within a rolling window.
type Tracker struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewTracker(maxAge time.Duration) *Tracker {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Tracker{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds a successful or cached document.
func (t *Tracker) Record(outcome Outcome, d time.Duration) {
	t.add(sample{outcome: outcome, durationMs: d.Milliseconds()})
}

// RecordFailure adds a failed document under its error category.
func (t *Tracker) RecordFailure(category string, d time.Duration) {
	t.add(sample{outcome: OutcomeFailed, category: category, durationMs: d.Milliseconds()})
}

func (t *Tracker) add(s sample) {
	if s.durationMs < 0 {
		s.durationMs = 0
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	s.at = t.now()
	t.pruneLocked(s.at)
	t.samples = append(t.samples, s)
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.pruneLocked(t.now())
	snap := Snapshot{Count: len(t.samples), Window: t.maxAge.String()}

	values := make([]int64, 0, len(t.samples))
	var sum int64
	for _, s := range t.samples {
		switch s.outcome {
		case OutcomeFailed:
			snap.Failed++
			if snap.Failures == nil {
				snap.Failures = make(map[string]int)
			}
			snap.Failures[s.category]++
			continue
		case OutcomeCached:
			snap.Cached++
		default:
			snap.Completed++
		}
		values = append(values, s.durationMs)
		sum += s.durationMs
	}
	if len(values) == 0 {
		return snap
	}

	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	snap.Latency = LatencySnapshot{
		MinMs: values[0],
		MaxMs: values[len(values)-1],
		AvgMs: float64(sum) / float64(len(values)),
		P50Ms: percentile(values, 50),
		P95Ms: percentile(values, 95),
		P99Ms: percentile(values, 99),
	}
	return snap
}

func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.maxAge)
	writeIdx := 0
	for _, s := range t.samples {
		if !s.at.Before(cutoff) {
			t.samples[writeIdx] = s
			writeIdx++
		}
	}
	t.samples = t.samples[:writeIdx]
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	if lower+1 >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[lower+1])
	return lo + ((hi - lo) * weight)
}
