package sumo

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jmurray2011/sumoknife/internal/logging"
)

// DefaultPollInterval is the wait between two job status checks.
const DefaultPollInterval = time.Second

// JobState is the client-side lifecycle of a search job.
type JobState int

const (
	JobSubmitted JobState = iota
	JobInProgress
	JobDone
	JobErrored
)

// String returns the state name.
func (s JobState) String() string {
	switch s {
	case JobSubmitted:
		return "Submitted"
	case JobInProgress:
		return "InProgress"
	case JobDone:
		return "Done"
	case JobErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

// Bucket is one histogram entry of a job status.
type Bucket struct {
	StartTimestamp int64 `json:"startTimestamp"`
	Count          int64 `json:"count"`
}

// Job is a submitted search query.
type Job struct {
	ID    string
	Query string
	State JobState

	// ServiceState is the literal state reported by the service,
	// e.g. "GATHERING RESULTS" or "DONE GATHERING RESULTS".
	ServiceState string

	From int64 // ms epoch, inclusive
	To   int64 // ms epoch, exclusive

	MessageCount     int64
	RecordCount      int64
	HistogramBuckets []Bucket
	PendingWarnings  []string
	PendingErrors    []string
	Progress         int
	Err              string

	// Polls counts status checks issued for this job.
	Polls int
}

// HasResults reports whether any page of data can be fetched.
func (j *Job) HasResults() bool {
	return j.MessageCount > 0 || j.RecordCount > 0
}

// PreferRecords reports whether records, rather than messages, should be
// offered first. Aggregate queries produce records.
func (j *Job) PreferRecords() bool {
	return j.RecordCount > 0
}

// Terminal reports whether the job will not change anymore.
func (j *Job) Terminal() bool {
	return j.State == JobDone || j.State == JobErrored
}

// Progress computes a completion percentage from histogram buckets.
// Terminal jobs are always at 100. Without buckets the span is zero.
func Progress(buckets []Bucket, from, to int64, terminal bool) int {
	if terminal {
		return 100
	}
	if len(buckets) == 0 || to <= from {
		return 0
	}

	minTS, maxTS := buckets[0].StartTimestamp, buckets[0].StartTimestamp
	for _, b := range buckets[1:] {
		if b.StartTimestamp < minTS {
			minTS = b.StartTimestamp
		}
		if b.StartTimestamp > maxTS {
			maxTS = b.StartTimestamp
		}
	}
	return int(math.Round(100 * float64(maxTS-minTS) / float64(to-from)))
}

// Orchestrator submits search jobs and polls them to completion.
type Orchestrator struct {
	fetcher  Fetcher
	interval time.Duration
	log      logging.Logger
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithPollInterval sets the wait between status checks.
func WithPollInterval(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.interval = d
		}
	}
}

// WithJobLogger sets the logger used while polling.
func WithJobLogger(l logging.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// NewOrchestrator creates an Orchestrator issuing requests through f.
func NewOrchestrator(f Fetcher, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		fetcher:  f,
		interval: DefaultPollInterval,
		log:      logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Submit posts query over [from, to) and returns the new job.
func (o *Orchestrator) Submit(ctx context.Context, query string, from, to int64) (*Job, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("submit search job: empty query")
	}

	resp, err := o.fetcher.Fetch(ctx, Spec{
		Method:   MethodPost,
		Resource: "search/jobs",
		Params:   Params{"query": query, "from": from, "to": to},
	})
	if err != nil {
		return nil, fmt.Errorf("submit search job: %w", err)
	}

	id := resp.String("id")
	if id == "" {
		return nil, fmt.Errorf("submit search job: response carried no job id")
	}

	o.log.WithField("job_id", id).Debug("search job submitted")
	return &Job{ID: id, Query: query, State: JobSubmitted, From: from, To: to}, nil
}

// Check issues a single status request and applies it to job.
func (o *Orchestrator) Check(ctx context.Context, job *Job) error {
	resp, err := o.fetcher.Fetch(ctx, Spec{
		Method:     MethodGet,
		Resource:   "search/jobs",
		ResourceID: job.ID,
	})
	if err != nil {
		return fmt.Errorf("poll search job %s: %w", job.ID, err)
	}
	job.Polls++
	applyStatus(job, resp.Object())
	return nil
}

func applyStatus(job *Job, status Row) {
	job.ServiceState = AsString(status["state"])
	job.MessageCount = AsInt64(status["messageCount"])
	job.RecordCount = AsInt64(status["recordCount"])
	job.PendingWarnings = asStrings(status["pendingWarnings"])
	job.PendingErrors = asStrings(status["pendingErrors"])

	job.HistogramBuckets = job.HistogramBuckets[:0]
	for _, row := range AsRows(status["histogramBuckets"]) {
		job.HistogramBuckets = append(job.HistogramBuckets, Bucket{
			StartTimestamp: AsInt64(row["startTimestamp"]),
			Count:          AsInt64(row["count"]),
		})
	}

	errVal, hasErr := status["error"]
	switch {
	case hasErr:
		job.State = JobErrored
		job.Err = AsString(errVal)
		if job.Err == "" {
			job.Err = fmt.Sprint(errVal)
		}
	case strings.Contains(job.ServiceState, "DONE"):
		job.State = JobDone
	default:
		job.State = JobInProgress
	}

	job.Progress = Progress(job.HistogramBuckets, job.From, job.To, job.Terminal())
}

// Poll checks job status until it is terminal. The first check is issued
// immediately and later ones after each interval. onStatus, when set, sees
// the job after every check. A failed check ends polling with its error.
func (o *Orchestrator) Poll(ctx context.Context, job *Job, onStatus func(*Job)) error {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		if err := o.Check(ctx, job); err != nil {
			return err
		}
		if onStatus != nil {
			onStatus(job)
		}
		o.log.WithFields(map[string]interface{}{
			"job_id":   job.ID,
			"state":    job.ServiceState,
			"progress": job.Progress,
		}).Debug("search job status")

		if job.Terminal() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Run submits query and polls it to completion. On any failure the job
// is dropped and only the error is returned.
func (o *Orchestrator) Run(ctx context.Context, query string, from, to int64, onStatus func(*Job)) (*Job, error) {
	job, err := o.Submit(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	if onStatus != nil {
		onStatus(job)
	}
	if err := o.Poll(ctx, job, onStatus); err != nil {
		return nil, err
	}
	return job, nil
}

// Messages fetches one page of raw messages of a finished job.
func (o *Orchestrator) Messages(ctx context.Context, jobID string, page Page) ([]Row, error) {
	return o.results(ctx, jobID, "messages", page)
}

// Records fetches one page of aggregate records of a finished job.
func (o *Orchestrator) Records(ctx context.Context, jobID string, page Page) ([]Row, error) {
	return o.results(ctx, jobID, "records", page)
}

func (o *Orchestrator) results(ctx context.Context, jobID, kind string, page Page) ([]Row, error) {
	resp, err := o.fetcher.Fetch(ctx, Spec{
		Method:         MethodGet,
		ParentResource: "search/jobs",
		ParentID:       jobID,
		Resource:       kind,
		RootKey:        kind,
		Params:         page.Params(),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s of job %s: %w", kind, jobID, err)
	}
	return resp.Rows(), nil
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		out = append(out, AsString(item))
	}
	return out
}
