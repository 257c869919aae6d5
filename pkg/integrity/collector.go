// Package integrity removes detached records from a project.
//
// A job is detached when one of its input or output file ids names a missing file.
// A file is detached when its job id names a missing job.
// Deleting a detached record can detach others, so the collector repeats
// until nothing is deleted.
package integrity

import (
	"context"

	"github.com/protocaas/protocaas/pkg/domain"
	kfile "github.com/protocaas/protocaas/pkg/domain/file/db"
	kjob "github.com/protocaas/protocaas/pkg/domain/job/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
	"github.com/protocaas/protocaas/pkg/metrics"
)

type Report struct {
	Passes       int
	DeletedJobs  int
	DeletedFiles int
}

func (r Report) Deleted() bool {
	return r.DeletedJobs != 0 || r.DeletedFiles != 0
}

// Collector is a referential integrity collector.
type Collector struct {
	jobs    kjob.Interface
	files   kfile.Interface
	metrics metrics.Metrics
}

func New(jobs kjob.Interface, files kfile.Interface, m metrics.Metrics) *Collector {
	if m == nil {
		m = metrics.Nop{}
	}
	return &Collector{jobs: jobs, files: files, metrics: m}
}

// Run collects detached records in the project until it reaches the fixed point.
//
// Each pass reads the store again.
// Errors from the store abort the run, leaving records deleted so far deleted.
// Cancelling ctx stops the run between passes.
func (c *Collector) Run(ctx context.Context, projectId string) (Report, error) {
	report := Report{}
	defer func() {
		c.metrics.IncCollectorPasses(report.Passes)
		c.metrics.AddCollected(report.DeletedJobs, report.DeletedFiles)
	}()

	for {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Passes += 1

		jobs, err := c.deleteDetachedJobs(ctx, projectId)
		report.DeletedJobs += jobs
		if err != nil {
			return report, err
		}

		files, err := c.deleteDetachedFiles(ctx, projectId)
		report.DeletedFiles += files
		if err != nil {
			return report, err
		}

		if jobs == 0 && files == 0 {
			return report, nil
		}
	}
}

// jobs are read before files.
// A job seen here references files which existed when it was inserted,
// so a file created after the job read cannot be missed as its reference.
func (c *Collector) deleteDetachedJobs(ctx context.Context, projectId string) (int, error) {
	jobs, err := c.jobs.Find(ctx, domain.JobQuery{ProjectId: projectId})
	if err != nil {
		return 0, xe.Wrap(err)
	}
	files, err := c.files.Find(ctx, projectId)
	if err != nil {
		return 0, xe.Wrap(err)
	}

	existing := map[string]struct{}{}
	for _, f := range files {
		existing[f.FileId] = struct{}{}
	}

	detached := []string{}
	for _, j := range jobs {
		if missesAny(existing, j.InputFileIds) || missesAny(existing, j.OutputFileIds()) {
			detached = append(detached, j.JobId)
		}
	}
	if len(detached) == 0 {
		return 0, nil
	}

	n, err := c.jobs.Delete(ctx, detached...)
	if err != nil {
		return n, xe.Wrap(err)
	}
	return n, nil
}

// files are read before jobs, for the same reason as above.
func (c *Collector) deleteDetachedFiles(ctx context.Context, projectId string) (int, error) {
	files, err := c.files.Find(ctx, projectId)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	jobs, err := c.jobs.Find(ctx, domain.JobQuery{ProjectId: projectId})
	if err != nil {
		return 0, xe.Wrap(err)
	}

	existing := map[string]struct{}{}
	for _, j := range jobs {
		existing[j.JobId] = struct{}{}
	}

	detached := []string{}
	for _, f := range files {
		if f.JobId == "" {
			continue
		}
		if _, ok := existing[f.JobId]; !ok {
			detached = append(detached, f.FileId)
		}
	}
	if len(detached) == 0 {
		return 0, nil
	}

	n, err := c.files.Delete(ctx, detached...)
	if err != nil {
		return n, xe.Wrap(err)
	}
	return n, nil
}

func missesAny(existing map[string]struct{}, ids []string) bool {
	for _, id := range ids {
		if _, ok := existing[id]; !ok {
			return true
		}
	}
	return false
}
