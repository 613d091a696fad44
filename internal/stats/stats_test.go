package stats

import (
	"testing"
	"time"
)

func TestTrackerSnapshotPercentiles(t *testing.T) {
	tr := NewTracker(time.Hour)
	for _, ms := range []int64{100, 200, 300, 400, 500} {
		tr.Record(OutcomeCompleted, time.Duration(ms)*time.Millisecond)
	}

	snap := tr.Snapshot()
	if snap.Count != 5 || snap.Completed != 5 {
		t.Fatalf("expected count=5 completed=5, got %d/%d", snap.Count, snap.Completed)
	}
	lat := snap.Latency
	if lat.MinMs != 100 || lat.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got %d/%d", lat.MinMs, lat.MaxMs)
	}
	if lat.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", lat.AvgMs)
	}
	if lat.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", lat.P50Ms)
	}
	if lat.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", lat.P95Ms)
	}
	if lat.P99Ms != 496 {
		t.Fatalf("expected p99=496, got %f", lat.P99Ms)
	}
}

func TestTrackerOutcomes(t *testing.T) {
	tr := NewTracker(time.Hour)
	tr.Record(OutcomeCompleted, 40*time.Millisecond)
	tr.Record(OutcomeCached, 2*time.Millisecond)
	tr.RecordFailure("extraction", 900*time.Millisecond)
	tr.RecordFailure("extraction", 10*time.Millisecond)
	tr.RecordFailure("read", time.Millisecond)

	snap := tr.Snapshot()
	if snap.Count != 5 || snap.Completed != 1 || snap.Cached != 1 || snap.Failed != 3 {
		t.Fatalf("unexpected counts: %+v", snap)
	}
	if snap.Failures["extraction"] != 2 || snap.Failures["read"] != 1 {
		t.Fatalf("unexpected failure breakdown: %v", snap.Failures)
	}
	// Failures stay out of latency.
	if snap.Latency.MaxMs != 40 || snap.Latency.MinMs != 2 {
		t.Fatalf("expected latency over successes only, got %+v", snap.Latency)
	}
}

func TestTrackerPrunesExpiredSamples(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tr := NewTracker(time.Minute)
	tr.now = func() time.Time { return now }

	tr.Record(OutcomeCompleted, 100*time.Millisecond)
	now = now.Add(2 * time.Minute)

	if snap := tr.Snapshot(); snap.Count != 0 {
		t.Fatalf("expected count=0 after prune, got %d", snap.Count)
	}

	tr.Record(OutcomeCompleted, 200*time.Millisecond)
	snap := tr.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1 for fresh sample, got %d", snap.Count)
	}
	if snap.Latency.MinMs != 200 || snap.Latency.MaxMs != 200 {
		t.Fatalf("expected min=max=200, got %+v", snap.Latency)
	}
}

func TestTrackerClampsNegativeDuration(t *testing.T) {
	tr := NewTracker(time.Hour)
	tr.Record(OutcomeCompleted, -10*time.Millisecond)
	snap := tr.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.Latency.MinMs != 0 || snap.Latency.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got %+v", snap.Latency)
	}
}

func TestEmptySnapshot(t *testing.T) {
	snap := NewTracker(0).Snapshot()
	if snap.Count != 0 || snap.Window != "1h0m0s" {
		t.Fatalf("unexpected empty snapshot: %+v", snap)
	}
}
