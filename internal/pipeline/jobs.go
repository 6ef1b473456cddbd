package pipeline

import (
	"sync"
	"time"

	"github.com/dgallion1/secdiff/internal/compare"
	"github.com/dgallion1/secdiff/internal/filing"
	"github.com/dgallion1/secdiff/internal/quality"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusNormalizing JobStatus = "normalizing"
	StatusExtracting  JobStatus = "extracting"
	StatusComparing   JobStatus = "comparing"
	StatusValidating  JobStatus = "validating"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
)

// FilingInput is one uploaded filing awaiting analysis.
type FilingInput struct {
	Meta     filing.Metadata
	Filename string
	Data     []byte
}

// Result is the full outcome of one filing-pair analysis: the structured
// change records for the summarization consumer, the raw section maps for
// the quality/inspection consumer, and the validation report.
type Result struct {
	Ticker        string                                  `json:"ticker"`
	Older         filing.Metadata                         `json:"older"`
	Newer         filing.Metadata                         `json:"newer"`
	Changes       map[filing.Section]compare.ChangeRecord `json:"changes"`
	Quality       quality.Report                          `json:"quality"`
	OlderSections filing.SectionMap                       `json:"-"`
	NewerSections filing.SectionMap                       `json:"-"`
	CompletedAt   time.Time                               `json:"completed_at"`
}

// Job tracks the state of a single filing-pair analysis.
type Job struct {
	mu sync.Mutex

	ID     string `json:"job_id"`
	Ticker string `json:"ticker"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	older  FilingInput
	newer  FilingInput
	result *Result
	errors []string
}

// Progress tracks analysis progress.
type Progress struct {
	SectionsExtracted int      `json:"sections_extracted"`
	SectionsMissing   int      `json:"sections_missing"`
	SectionsCompared  int      `json:"sections_compared"`
	Errors            []string `json:"errors"`
}

// SetFilings attaches the uploaded filing pair.
func (j *Job) SetFilings(older, newer FilingInput) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.older = older
	j.newer = newer
}

// Filings returns the uploaded filing pair.
func (j *Job) Filings() (older, newer FilingInput) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.older, j.newer
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// AddSections records extraction counts for one filing.
func (j *Job) AddSections(extracted, missing int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsExtracted += extracted
	j.Progress.SectionsMissing += missing
	j.UpdatedAt = time.Now()
}

// SetSectionsCompared records the compared-section count.
func (j *Job) SetSectionsCompared(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.SectionsCompared = n
	j.UpdatedAt = time.Now()
}

// SetResult attaches the analysis result.
func (j *Job) SetResult(r *Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = r
	j.UpdatedAt = time.Now()
}

// Result returns the analysis result, or nil when not finished.
func (j *Job) Result() *Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

// LastUpdated returns the time of the most recent state change.
func (j *Job) LastUpdated() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.UpdatedAt
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Ticker   string    `json:"ticker"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:     j.ID,
		Ticker: j.Ticker,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			SectionsExtracted: j.Progress.SectionsExtracted,
			SectionsMissing:   j.Progress.SectionsMissing,
			SectionsCompared:  j.Progress.SectionsCompared,
			Errors:            errs,
		},
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

// Cleanup removes expired jobs. Timestamps are read through the job's own
// lock; workers update them concurrently.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.LastUpdated()) > s.ttl {
			delete(s.jobs, id)
		}
	}
}
