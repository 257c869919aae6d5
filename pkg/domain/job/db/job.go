package db

import (
	"context"

	"github.com/protocaas/protocaas/pkg/domain"
)

// Interface of the job collection.
//
// Each method is atomic for one job, and no more.
type Interface interface {
	// Insert a new job.
	//
	// Returns
	//
	// - error: ErrConflict when the job id is used already.
	Insert(ctx context.Context, job domain.Job) error

	// Get a job.
	//
	// Returns
	//
	// - domain.Job: the job, including its private key.
	//
	// - error: ErrMissing when the job is not found.
	Get(ctx context.Context, jobId string) (domain.Job, error)

	// Find jobs matching the query.
	Find(ctx context.Context, query domain.JobQuery) ([]domain.Job, error)

	// Delete jobs. Ids not found are ignored.
	//
	// Returns
	//
	// - int: the number of jobs which are actually deleted.
	//
	// - error
	Delete(ctx context.Context, jobIds ...string) (int, error)

	// UpdateStatus changes status of the job, if and only if its current status is `from`.
	//
	// Args
	//
	// - context.Context
	//
	// - string: job id
	//
	// - domain.JobStatus: status which the caller has observed.
	//
	// - domain.StatusChange: change to be applied.
	//
	// Returns
	//
	// - error: ErrMissing when the job is not found,
	// ErrConflict when the current status is not `from`.
	UpdateStatus(ctx context.Context, jobId string, from domain.JobStatus, change domain.StatusChange) error

	// SetConsoleOutput replaces the console output of the job.
	//
	// Returns
	//
	// - error: ErrMissing when the job is not found.
	SetConsoleOutput(ctx context.Context, jobId string, consoleOutput string) error
}
