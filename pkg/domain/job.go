package domain

import (
	"fmt"
	"slices"
	"time"

	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
)

type JobStatus string

const (
	// The job is created, and waiting for a compute resource to pick up.
	Pending JobStatus = "pending"

	// A compute resource has accepted the job.
	Queued JobStatus = "queued"

	// The job process is being prepared.
	Starting JobStatus = "starting"

	// The job process is running.
	Running JobStatus = "running"

	// The job has finished successfully and its outputs are materialized.
	Completed JobStatus = "completed"

	// The job has stopped unsuccessfully, or has been aborted before running.
	Failed JobStatus = "failed"
)

func (s JobStatus) String() string {
	return string(s)
}

func AsJobStatus(s string) (JobStatus, error) {
	switch JobStatus(s) {
	case Pending, Queued, Starting, Running, Completed, Failed:
		return JobStatus(s), nil
	default:
		return "", fmt.Errorf("%w: '%s' is not a job status", domerr.ErrInvalidArgument, s)
	}
}

// Statuses in which compute resources should keep an eye on the job.
func UnfinishedStatuses() []JobStatus {
	return []JobStatus{Pending, Queued, Starting, Running}
}

func (s JobStatus) Unfinished() bool {
	return slices.Contains(UnfinishedStatuses(), s)
}

func (s JobStatus) Terminal() bool {
	return s == Completed || s == Failed
}

// CanTransitTo tells the job can move from s to next.
//
// Forward edges are pending -> queued -> starting -> running -> completed|failed.
// Also, failed can be reached from pending, queued and starting.
func (s JobStatus) CanTransitTo(next JobStatus) bool {
	switch s {
	case Pending:
		return next == Queued || next == Failed
	case Queued:
		return next == Starting || next == Failed
	case Starting:
		return next == Running || next == Failed
	case Running:
		return next == Completed || next == Failed
	default:
		return false
	}
}

func NewErrInvalidJobStateChanging(from, to JobStatus) error {
	return fmt.Errorf("%w: %s -> %s", domerr.ErrInvalidJobStateChanging, from, to)
}

type InputFile struct {
	Name     string
	FileId   string
	FileName string
}

type InputParameter struct {
	Name  string
	Value any

	// Secret is copied from the processor spec when the job is created.
	Secret bool
}

type OutputFile struct {
	Name     string
	FileName string

	// FileId is empty until the job is completed.
	FileId string
}

type Job struct {
	JobId         string
	JobPrivateKey string

	WorkspaceId       string
	ProjectId         string
	UserId            string
	ComputeResourceId string
	ProcessorName     string
	BatchId           string

	InputFiles      []InputFile
	InputFileIds    []string
	InputParameters []InputParameter
	OutputFiles     []OutputFile
	ProcessorSpec   ProcessorSpec

	Status JobStatus
	Error  string

	TimestampCreated  time.Time
	TimestampQueued   *time.Time
	TimestampStarting *time.Time
	TimestampStarted  *time.Time
	TimestampFinished *time.Time

	ConsoleOutput string

	ComputeResourceNodeId   string
	ComputeResourceNodeName string
}

// OutputFileIds returns ids of materialized outputs.
func (j *Job) OutputFileIds() []string {
	ids := make([]string, 0, len(j.OutputFiles))
	for _, o := range j.OutputFiles {
		if o.FileId != "" {
			ids = append(ids, o.FileId)
		}
	}
	return ids
}

// OutputFileNames returns file names which this job is responsible to produce.
func (j *Job) OutputFileNames() []string {
	names := make([]string, 0, len(j.OutputFiles))
	for _, o := range j.OutputFiles {
		names = append(names, o.FileName)
	}
	return names
}

// Output returns the output entry named as name.
func (j *Job) Output(name string) (OutputFile, bool) {
	for _, o := range j.OutputFiles {
		if o.Name == name {
			return o, true
		}
	}
	return OutputFile{}, false
}

// Redacted returns a copy of the job which can be shown to ordinary readers.
//
// The private key is cleared, and so are values of parameters
// declared as secret by the processor spec.
// Parameters not found in the processor spec are cleared, too.
func (j Job) Redacted() Job {
	r := j.WithoutPrivateKey()
	r.InputParameters = make([]InputParameter, 0, len(j.InputParameters))
	for _, p := range j.InputParameters {
		if spec, ok := j.ProcessorSpec.Parameter(p.Name); !ok || spec.Secret || p.Secret {
			p.Value = nil
		}
		r.InputParameters = append(r.InputParameters, p)
	}
	return r
}

// WithoutPrivateKey returns a copy of the job with empty private key.
//
// Secret parameters are kept. This is for the job process itself.
func (j Job) WithoutPrivateKey() Job {
	r := j
	r.JobPrivateKey = ""
	r.InputFiles = slices.Clone(j.InputFiles)
	r.InputFileIds = slices.Clone(j.InputFileIds)
	r.InputParameters = slices.Clone(j.InputParameters)
	r.OutputFiles = slices.Clone(j.OutputFiles)
	return r
}

// StatusChange is a set of fields updated on a status transition.
type StatusChange struct {
	Status JobStatus
	Error  string

	// At is the time of the transition.
	// The timestamp field to be set depends on Status.
	At time.Time

	// OutputFiles replaces outputs of the job when it is not nil.
	OutputFiles []OutputFile

	ComputeResourceNodeId   string
	ComputeResourceNodeName string
}

// Apply returns a copy of job with the change.
//
// This does not validate the transition.
func (c StatusChange) Apply(job Job) Job {
	j := job.WithoutPrivateKey()
	j.JobPrivateKey = job.JobPrivateKey
	j.Status = c.Status
	if c.Error != "" {
		j.Error = c.Error
	}
	at := c.At
	switch c.Status {
	case Queued:
		j.TimestampQueued = &at
	case Starting:
		j.TimestampStarting = &at
	case Running:
		j.TimestampStarted = &at
	case Completed, Failed:
		j.TimestampFinished = &at
	}
	if c.OutputFiles != nil {
		j.OutputFiles = slices.Clone(c.OutputFiles)
	}
	if c.ComputeResourceNodeId != "" {
		j.ComputeResourceNodeId = c.ComputeResourceNodeId
	}
	if c.ComputeResourceNodeName != "" {
		j.ComputeResourceNodeName = c.ComputeResourceNodeName
	}
	return j
}

// JobQuery is a filter for finding jobs. Empty fields match everything.
type JobQuery struct {
	ProjectId         string
	ComputeResourceId string
	Statuses          []JobStatus
}

func (q JobQuery) Match(j Job) bool {
	if q.ProjectId != "" && q.ProjectId != j.ProjectId {
		return false
	}
	if q.ComputeResourceId != "" && q.ComputeResourceId != j.ComputeResourceId {
		return false
	}
	if len(q.Statuses) != 0 && !slices.Contains(q.Statuses, j.Status) {
		return false
	}
	return true
}
