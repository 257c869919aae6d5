// Package integrity sweeps every project with the referential integrity collector.
//
// Job and file deletions run the collector on their project already.
// The sweep catches what they left behind when they failed halfway.
package integrity

import (
	"context"
	"log"

	"github.com/protocaas/protocaas/cmd/loops/recurring"
	kintegrity "github.com/protocaas/protocaas/pkg/integrity"
)

// Cursor of a sweep.
type Cursor struct {
	// Projects to be swept in this round.
	Remaining []string
}

func Seed() Cursor {
	return Cursor{}
}

type Projects interface {
	ProjectIds(ctx context.Context) ([]string, error)
}

type Collector interface {
	Run(ctx context.Context, projectId string) (kintegrity.Report, error)
}

// Task sweeps one project per step.
//
// A round starts with listing projects, and ends when all of them are swept.
// The step reports backlog while the round has projects remaining.
func Task(logger *log.Logger, projects Projects, collector Collector) recurring.Task[Cursor] {
	return func(ctx context.Context, cursor Cursor) (Cursor, bool, error) {
		remaining := cursor.Remaining
		if len(remaining) == 0 {
			ids, err := projects.ProjectIds(ctx)
			if err != nil {
				return cursor, false, err
			}
			if len(ids) == 0 {
				return Cursor{}, false, nil
			}
			remaining = ids
		}

		projectId, rest := remaining[0], remaining[1:]
		next := Cursor{Remaining: rest}

		report, err := collector.Run(ctx, projectId)
		if err != nil {
			return next, 0 < len(rest), err
		}
		if report.Deleted() {
			logger.Printf(
				"project %s: %d jobs and %d files are collected in %d passes",
				projectId, report.DeletedJobs, report.DeletedFiles, report.Passes,
			)
		}
		return next, 0 < len(rest), nil
	}
}
