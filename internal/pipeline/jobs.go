package pipeline

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docoutline/internal/doctree"
)

// JobStatus represents the state of an outline job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusCompleted JobStatus = "completed"
	StatusCached    JobStatus = "cached"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the job has reached a final state.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusCached || s == StatusFailed
}

// Job tracks the state of a single document.
type Job struct {
	mu sync.Mutex

	ID       string
	Filename string

	Status JobStatus
	Phase  string

	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Internal: not serialized.
	fileData      []byte
	result        *doctree.Result
	errors        []string
	errorCategory string
	duration      time.Duration
}

// NewJob creates a queued job for a document. Job IDs are UUIDv7, so they
// sort by creation time.
func NewJob(filename string, data []byte) *Job {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	now := time.Now()
	return &Job{
		ID:        id.String(),
		Filename:  filename,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.updatedAt()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

func (j *Job) updatedAt() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail records err and marks the job failed.
func (j *Job) Fail(phase, category string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.errorCategory = category
	j.Status = StatusFailed
	j.Phase = phase
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// Finish stores the outcome and marks the job completed or cached. The
// source bytes are released.
func (j *Job) Finish(out Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	res := out.Result
	j.result = &res
	j.ContentHash = out.ContentHash
	j.duration = out.Duration
	j.fileData = nil
	if out.Cached {
		j.Status = StatusCached
	} else {
		j.Status = StatusCompleted
	}
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Result returns the outline once the job has succeeded.
func (j *Job) Result() (doctree.Result, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return doctree.Result{}, false
	}
	return *j.result, true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID            string    `json:"job_id"`
	Status        JobStatus `json:"status"`
	Phase         string    `json:"phase"`
	Filename      string    `json:"filename"`
	Title         string    `json:"title,omitempty"`
	Entries       int       `json:"entries"`
	ContentHash   string    `json:"content_hash,omitempty"`
	DurationMs    int64     `json:"duration_ms"`
	ErrorCategory string    `json:"error_category,omitempty"`
	Errors        []string  `json:"errors"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:            j.ID,
		Status:        j.Status,
		Phase:         j.Phase,
		Filename:      j.Filename,
		ContentHash:   j.ContentHash,
		DurationMs:    j.duration.Milliseconds(),
		ErrorCategory: j.errorCategory,
		Errors:        append([]string{}, j.errors...),
		CreatedAt:     j.CreatedAt,
		UpdatedAt:     j.UpdatedAt,
	}
	if j.result != nil {
		snap.Title = j.result.Title
		snap.Entries = len(j.result.Outline)
	}
	return snap
}
