package sumo

import (
	"context"
	"fmt"
	"time"

	"github.com/jmurray2011/sumoknife/internal/logging"
)

// ExportStatus is the state of a content export job.
type ExportStatus string

const (
	ExportInProgress ExportStatus = "InProgress"
	ExportSuccess    ExportStatus = "Success"
	ExportFailed     ExportStatus = "Failed"
)

// ExportJob tracks one content export.
type ExportJob struct {
	ContentID string
	JobID     string
	Status    ExportStatus
}

// Exporter retrieves saved content through the v2 export sub-protocol.
type Exporter struct {
	fetcher  Fetcher
	interval time.Duration
	log      logging.Logger
}

// NewExporter creates an Exporter polling export status every interval.
func NewExporter(f Fetcher, interval time.Duration, log logging.Logger) *Exporter {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Exporter{fetcher: f, interval: interval, log: log}
}

// PersonalFolderQueries exports the personal folder and returns the saved
// searches and dashboard panel queries it contains, keyed by name.
func (e *Exporter) PersonalFolderQueries(ctx context.Context) (map[string]string, error) {
	folder, err := e.fetcher.Fetch(ctx, Spec{
		Method:     MethodGet,
		APIVersion: "v2",
		Resource:   "content/folders/personal",
	})
	if err != nil {
		return nil, fmt.Errorf("look up personal folder: %w", err)
	}
	contentID := folder.String("id")
	if contentID == "" {
		return nil, fmt.Errorf("look up personal folder: no folder id")
	}

	job, err := e.Start(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if err := e.Wait(ctx, job); err != nil {
		return nil, err
	}

	tree, err := e.Result(ctx, job)
	if err != nil {
		return nil, err
	}
	return PairQueries(Flatten(tree)), nil
}

// Start begins an export of contentID.
func (e *Exporter) Start(ctx context.Context, contentID string) (*ExportJob, error) {
	resp, err := e.fetcher.Fetch(ctx, Spec{
		Method:         MethodPost,
		APIVersion:     "v2",
		ParentResource: "content",
		ParentID:       contentID,
		Resource:       "export",
	})
	if err != nil {
		return nil, fmt.Errorf("start export of %s: %w", contentID, err)
	}
	jobID := resp.String("id")
	if jobID == "" {
		return nil, fmt.Errorf("start export of %s: no job id", contentID)
	}
	return &ExportJob{ContentID: contentID, JobID: jobID, Status: ExportInProgress}, nil
}

// Wait polls the export status until it leaves InProgress.
func (e *Exporter) Wait(ctx context.Context, job *ExportJob) error {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		resp, err := e.fetcher.Fetch(ctx, e.jobSpec(job, "status"))
		if err != nil {
			return fmt.Errorf("export %s status: %w", job.JobID, err)
		}
		job.Status = ExportStatus(resp.String("status"))
		e.log.WithField("export_job", job.JobID).Debug("export status %s", job.Status)

		switch job.Status {
		case ExportSuccess:
			return nil
		case ExportInProgress:
		default:
			return fmt.Errorf("export %s ended with status %q", job.JobID, job.Status)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Result fetches the exported content tree of a successful job.
func (e *Exporter) Result(ctx context.Context, job *ExportJob) (any, error) {
	resp, err := e.fetcher.Fetch(ctx, e.jobSpec(job, "result"))
	if err != nil {
		return nil, fmt.Errorf("export %s result: %w", job.JobID, err)
	}
	return resp.Raw, nil
}

func (e *Exporter) jobSpec(job *ExportJob, leaf string) Spec {
	return Spec{
		Method:         MethodGet,
		APIVersion:     "v2",
		ParentResource: "content",
		ParentID:       job.ContentID,
		Resource:       "export",
		ResourceID:     job.JobID + "/" + leaf,
	}
}
