package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/doctree"
)

func TestNewJob(t *testing.T) {
	job := NewJob("a.pdf", []byte("data"))
	id, err := uuid.Parse(job.ID)
	if err != nil {
		t.Fatalf("job ID is not a UUID: %v", err)
	}
	if id.Version() != 7 {
		t.Errorf("expected UUIDv7, got version %d", id.Version())
	}
	if job.Status != StatusQueued {
		t.Errorf("expected status %q, got %q", StatusQueued, job.Status)
	}
	if string(job.FileData()) != "data" {
		t.Errorf("expected file data to be kept until processed")
	}
}

func TestNewJob_IDsSortByCreation(t *testing.T) {
	a := NewJob("a.pdf", nil)
	time.Sleep(2 * time.Millisecond)
	b := NewJob("b.pdf", nil)
	if !(a.ID < b.ID) {
		t.Errorf("expected %s < %s", a.ID, b.ID)
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := NewJob("doc.md", nil)

	before := job.UpdatedAt
	time.Sleep(time.Millisecond)
	job.SetStatus(StatusParsing, "parsing")
	if job.Status != StatusParsing || job.Phase != "parsing" {
		t.Errorf("unexpected state %q/%q", job.Status, job.Phase)
	}
	if !job.UpdatedAt.After(before) {
		t.Error("expected UpdatedAt to advance after SetStatus")
	}
}

func TestJobStatus_Done(t *testing.T) {
	done := map[JobStatus]bool{
		StatusQueued:    false,
		StatusParsing:   false,
		StatusCompleted: true,
		StatusCached:    true,
		StatusFailed:    true,
	}
	for s, want := range done {
		if s.Done() != want {
			t.Errorf("%s.Done() = %v, want %v", s, s.Done(), want)
		}
	}
}

func TestJob_Fail(t *testing.T) {
	job := NewJob("bad.pdf", []byte("x"))
	job.Fail("parsing", "extraction", errors.New("broken xref"))

	snap := job.Snapshot()
	if snap.Status != StatusFailed {
		t.Errorf("expected status %q, got %q", StatusFailed, snap.Status)
	}
	if snap.ErrorCategory != "extraction" {
		t.Errorf("expected category extraction, got %q", snap.ErrorCategory)
	}
	if len(snap.Errors) != 1 || snap.Errors[0] != "broken xref" {
		t.Errorf("unexpected errors: %v", snap.Errors)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
	if _, ok := job.Result(); ok {
		t.Error("failed job should have no result")
	}
}

func TestJob_Finish(t *testing.T) {
	job := NewJob("doc.md", []byte("# T"))
	res := doctree.Result{Title: "T", Outline: []doctree.Entry{{Level: "H2", Text: "A"}}}
	job.Finish(Outcome{Result: res, ContentHash: "abc", Cached: true, Duration: 15 * time.Millisecond})

	snap := job.Snapshot()
	if snap.Status != StatusCached {
		t.Errorf("expected status %q, got %q", StatusCached, snap.Status)
	}
	if snap.Title != "T" || snap.Entries != 1 || snap.DurationMs != 15 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	got, ok := job.Result()
	if !ok || got.Title != "T" {
		t.Errorf("expected result, got %+v %v", got, ok)
	}
	if job.FileData() != nil {
		t.Error("expected file data to be released")
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	job := NewJob("snap.md", nil)
	snap := job.Snapshot()
	if snap.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := NewJob("a.md", nil)
	store.Put(job)

	got := store.Get(job.ID)
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != job.ID {
		t.Errorf("expected ID %q, got %q", job.ID, got.ID)
	}
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", UpdatedAt: time.Now()}
	store.Put(expired)

	time.Sleep(100 * time.Millisecond)

	fresh := &Job{ID: "new", UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
	if store.Len() != 1 {
		t.Errorf("expected 1 job, got %d", store.Len())
	}
}
