// Package lifecycle drives jobs from creation to their terminal status.
//
// Engine is stateless between calls. Every method reads what it needs from the store,
// and the only cross-request coordination is the conditional status update of the store.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/protocaas/protocaas/pkg/domain"
	dbInterface "github.com/protocaas/protocaas/pkg/domain/protocaas/db"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	kfile "github.com/protocaas/protocaas/pkg/domain/file/db"
	kjob "github.com/protocaas/protocaas/pkg/domain/job/db"
	kworkspace "github.com/protocaas/protocaas/pkg/domain/workspace/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
	"github.com/protocaas/protocaas/pkg/integrity"
	"github.com/protocaas/protocaas/pkg/metrics"
	"github.com/protocaas/protocaas/pkg/objectstore"
	"github.com/protocaas/protocaas/pkg/pubsub"
)

// DefaultUploadURLExpiry is the lifetime of presigned upload URLs when not configured.
const DefaultUploadURLExpiry = 30 * time.Minute

// Outputs tells where job outputs are uploaded.
type Outputs struct {
	// BaseURL is the public URL prefix of the bucket.
	// Output of a job is located at {BaseURL}/protocaas-outputs/{jobId}/{name}.
	BaseURL string

	// Bucket issues upload URLs. Nil means uploading is not available.
	Bucket objectstore.Bucket

	// Prober finds out sizes of uploaded outputs.
	Prober objectstore.SizeProber

	// UploadURLExpiry is the lifetime of upload URLs.
	UploadURLExpiry time.Duration
}

// OutputKey is the object key of the output named `name` of the job.
func OutputKey(jobId string, name string) string {
	return "protocaas-outputs/" + jobId + "/" + name
}

// URL of the output named `name` of the job.
func (o Outputs) URL(jobId string, name string) string {
	return strings.TrimSuffix(o.BaseURL, "/") + "/" + OutputKey(jobId, name)
}

type Engine struct {
	jobs       kjob.Interface
	files      kfile.Interface
	workspaces kworkspace.Interface

	collector *integrity.Collector
	notifier  pubsub.Notifier
	metrics   metrics.Metrics

	outputs                  Outputs
	defaultComputeResourceId string

	now   func() time.Time
	newId func() string
}

type Option func(*Engine) *Engine

// WithNotifier sets the destination of job events. By default, events are discarded.
func WithNotifier(n pubsub.Notifier) Option {
	return func(e *Engine) *Engine {
		e.notifier = n
		return e
	}
}

func WithMetrics(m metrics.Metrics) Option {
	return func(e *Engine) *Engine {
		e.metrics = m
		return e
	}
}

func WithOutputs(o Outputs) Option {
	return func(e *Engine) *Engine {
		e.outputs = o
		return e
	}
}

// WithDefaultComputeResource sets the compute resource for workspaces without their own.
func WithDefaultComputeResource(computeResourceId string) Option {
	return func(e *Engine) *Engine {
		e.defaultComputeResourceId = computeResourceId
		return e
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) *Engine {
		e.now = now
		return e
	}
}

func WithIdGenerator(newId func() string) Option {
	return func(e *Engine) *Engine {
		e.newId = newId
		return e
	}
}

func New(db dbInterface.Database, options ...Option) *Engine {
	e := &Engine{
		jobs:       db.Jobs(),
		files:      db.Files(),
		workspaces: db.Workspaces(),
		notifier:   pubsub.Discard{},
		metrics:    metrics.Nop{},
		now:        time.Now,
		newId:      domain.NewId,
	}
	for _, opt := range options {
		e = opt(e)
	}
	if e.outputs.UploadURLExpiry <= 0 {
		e.outputs.UploadURLExpiry = DefaultUploadURLExpiry
	}
	e.collector = integrity.New(e.jobs, e.files, e.metrics)
	return e
}

// Collector returns the integrity collector working on the same store.
func (e *Engine) Collector() *integrity.Collector {
	return e.collector
}

type InputFileRequest struct {
	Name     string
	FileName string
}

type InputParameterRequest struct {
	Name  string
	Value any
}

type OutputFileRequest struct {
	Name     string
	FileName string
}

type CreateJobRequest struct {
	WorkspaceId     string
	ProjectId       string
	ProcessorName   string
	BatchId         string
	InputFiles      []InputFileRequest
	InputParameters []InputParameterRequest
	OutputFiles     []OutputFileRequest
	ProcessorSpec   domain.ProcessorSpec
}

// Create a new pending job.
//
// Outputs of the new job supersede files and jobs of the project which produce same file names.
//
// Returns
//
// - string: id of the new job
//
// - error:
// ErrMissing when the project or workspace is not found.
// ErrInvalidArgument when the project is not in the workspace, the request contradicts the processor spec,
// or an output file name is an input file name or another output's.
// ErrForbidden when the user is not an admin or editor of the workspace.
// ErrNoComputeResource when no compute resource is available for the workspace.
// ErrInputFileMissing when an input file is not found.
func (e *Engine) Create(ctx context.Context, userId string, req CreateJobRequest) (string, error) {
	if req.ProcessorName == "" {
		return "", xe.Wrap(fmt.Errorf("%w: processor name is required", domerr.ErrInvalidArgument))
	}
	if err := req.ProcessorSpec.Validate(); err != nil {
		return "", xe.Wrap(err)
	}

	project, err := e.workspaces.GetProject(ctx, req.ProjectId)
	if err != nil {
		return "", xe.Wrap(err)
	}
	if project.WorkspaceId != req.WorkspaceId {
		return "", xe.Wrap(fmt.Errorf(
			"%w: project %s is not in workspace %s", domerr.ErrInvalidArgument, req.ProjectId, req.WorkspaceId,
		))
	}

	workspace, err := e.workspaces.Get(ctx, req.WorkspaceId)
	if err != nil {
		return "", xe.Wrap(err)
	}
	if !workspace.Role(userId).CanEdit() {
		return "", xe.Wrap(fmt.Errorf("%w: user is not an editor of workspace %s", domerr.ErrForbidden, req.WorkspaceId))
	}

	computeResourceId := workspace.ComputeResourceId
	if computeResourceId == "" {
		computeResourceId = e.defaultComputeResourceId
	}
	if computeResourceId == "" {
		return "", xe.Wrap(domerr.ErrNoComputeResource)
	}

	inputs := make([]domain.InputFile, 0, len(req.InputFiles))
	inputIds := make([]string, 0, len(req.InputFiles))
	for _, in := range req.InputFiles {
		f, err := e.files.GetByName(ctx, req.ProjectId, in.FileName)
		if errors.Is(err, domerr.ErrMissing) {
			return "", xe.Wrap(fmt.Errorf("%w: %s", domerr.ErrInputFileMissing, in.FileName))
		} else if err != nil {
			return "", xe.Wrap(err)
		}
		inputs = append(inputs, domain.InputFile{Name: in.Name, FileId: f.FileId, FileName: f.FileName})
		inputIds = append(inputIds, f.FileId)
	}

	params := make([]domain.InputParameter, 0, len(req.InputParameters))
	for _, p := range req.InputParameters {
		spec, ok := req.ProcessorSpec.Parameter(p.Name)
		if !ok {
			return "", xe.Wrap(fmt.Errorf(
				"%w: parameter %s is not declared by processor %s", domerr.ErrInvalidArgument, p.Name, req.ProcessorSpec.Name,
			))
		}
		params = append(params, domain.InputParameter{Name: p.Name, Value: p.Value, Secret: spec.Secret})
	}

	jobId := e.newId()
	privateKey, err := domain.NewPrivateKey()
	if err != nil {
		return "", xe.Wrap(err)
	}

	inputNames := map[string]struct{}{}
	for _, in := range inputs {
		inputNames[in.FileName] = struct{}{}
	}
	outputNames := map[string]struct{}{}
	outputs := make([]domain.OutputFile, 0, len(req.OutputFiles))
	for _, o := range req.OutputFiles {
		fileName := strings.ReplaceAll(o.FileName, domain.JobIdPlaceholder, jobId)
		if _, ok := inputNames[fileName]; ok {
			return "", xe.Wrap(fmt.Errorf("%w: output %s overwrites input file %s", domerr.ErrInvalidArgument, o.Name, fileName))
		}
		if _, ok := outputNames[fileName]; ok {
			return "", xe.Wrap(fmt.Errorf("%w: file %s is named by more than one output", domerr.ErrInvalidArgument, fileName))
		}
		outputNames[fileName] = struct{}{}
		outputs = append(outputs, domain.OutputFile{Name: o.Name, FileName: fileName})
	}

	job := domain.Job{
		JobId:             jobId,
		JobPrivateKey:     privateKey,
		WorkspaceId:       req.WorkspaceId,
		ProjectId:         req.ProjectId,
		UserId:            userId,
		ComputeResourceId: computeResourceId,
		ProcessorName:     req.ProcessorName,
		BatchId:           req.BatchId,
		InputFiles:        inputs,
		InputFileIds:      inputIds,
		InputParameters:   params,
		OutputFiles:       outputs,
		ProcessorSpec:     req.ProcessorSpec,
		Status:            domain.Pending,
		TimestampCreated:  e.now(),
	}

	if err := e.supersede(ctx, job.ProjectId, job.OutputFileNames()); err != nil {
		return "", err
	}

	if err := e.jobs.Insert(ctx, job); err != nil {
		return "", xe.Wrap(err)
	}
	e.metrics.IncJobsCreated()
	e.notifier.Notify(ctx, domain.NewPendingJobEvent(job))
	return jobId, nil
}

// supersede deletes files named as fileNames and jobs producing them,
// then collects what they leave detached.
func (e *Engine) supersede(ctx context.Context, projectId string, fileNames []string) error {
	if len(fileNames) == 0 {
		return nil
	}
	names := map[string]struct{}{}
	for _, n := range fileNames {
		names[n] = struct{}{}
	}

	files, err := e.files.Find(ctx, projectId)
	if err != nil {
		return xe.Wrap(err)
	}
	fileIds := []string{}
	for _, f := range files {
		if _, ok := names[f.FileName]; ok {
			fileIds = append(fileIds, f.FileId)
		}
	}

	jobs, err := e.jobs.Find(ctx, domain.JobQuery{ProjectId: projectId})
	if err != nil {
		return xe.Wrap(err)
	}
	jobIds := []string{}
	for _, j := range jobs {
		for _, n := range j.OutputFileNames() {
			if _, ok := names[n]; ok {
				jobIds = append(jobIds, j.JobId)
				break
			}
		}
	}

	deleted := 0
	if len(fileIds) != 0 {
		n, err := e.files.Delete(ctx, fileIds...)
		if err != nil {
			return xe.Wrap(err)
		}
		deleted += n
	}
	if len(jobIds) != 0 {
		n, err := e.jobs.Delete(ctx, jobIds...)
		if err != nil {
			return xe.Wrap(err)
		}
		deleted += n
	}
	if deleted == 0 {
		return nil
	}
	if _, err := e.collector.Run(ctx, projectId); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

type StatusUpdate struct {
	Status domain.JobStatus

	// Error message. It is allowed only with Failed.
	Error string

	NodeId   string
	NodeName string
}

// SetStatus moves the job to a new status.
//
// When the new status is Completed, outputs of the job are registered as files.
//
// Returns
//
// - error:
// ErrMissing when the job is not found.
// ErrInvalidArgument when Error is set with a status other than Failed.
// ErrInvalidJobStateChanging when the job can not move to the status.
// ErrSizeUnavailable when an output has not been uploaded.
func (e *Engine) SetStatus(ctx context.Context, jobId string, update StatusUpdate) error {
	if update.Error != "" && update.Status != domain.Failed {
		return xe.Wrap(fmt.Errorf("%w: error is allowed only with status failed", domerr.ErrInvalidArgument))
	}

	job, err := e.jobs.Get(ctx, jobId)
	if err != nil {
		return xe.Wrap(err)
	}
	if !job.Status.CanTransitTo(update.Status) {
		return xe.Wrap(domain.NewErrInvalidJobStateChanging(job.Status, update.Status))
	}

	change := domain.StatusChange{
		Status:                  update.Status,
		Error:                   update.Error,
		At:                      e.now(),
		ComputeResourceNodeId:   update.NodeId,
		ComputeResourceNodeName: update.NodeName,
	}
	if update.Status == domain.Completed {
		outputs, err := e.materializeOutputs(ctx, job)
		if err != nil {
			return err
		}
		change.OutputFiles = outputs
	}

	if err := e.jobs.UpdateStatus(ctx, jobId, job.Status, change); err != nil {
		if len(change.OutputFiles) != 0 {
			// outputs registered above may be owned by a job which is gone now.
			if _, cerr := e.collector.Run(ctx, job.ProjectId); cerr != nil {
				err = errors.Join(err, cerr)
			}
		}
		if !errors.Is(err, domerr.ErrConflict) {
			return xe.Wrap(err)
		}
		return e.invalidTransition(ctx, jobId, update.Status)
	}

	e.metrics.IncJobTransitions(string(update.Status))
	e.notifier.Notify(ctx, domain.JobStatusChangedEvent(change.Apply(job)))
	return nil
}

// invalidTransition tells the job can not move to the status, naming its current status.
func (e *Engine) invalidTransition(ctx context.Context, jobId string, to domain.JobStatus) error {
	current, err := e.jobs.Get(ctx, jobId)
	if err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(domain.NewErrInvalidJobStateChanging(current.Status, to))
}

// SetConsoleOutput replaces the console output of the job.
func (e *Engine) SetConsoleOutput(ctx context.Context, jobId string, consoleOutput string) error {
	return xe.Wrap(e.jobs.SetConsoleOutput(ctx, jobId, consoleOutput))
}

// UploadURL returns a presigned URL to upload the output named `name` of the job.
//
// Returns
//
// - error: ErrMissing when the job or its output is not found.
func (e *Engine) UploadURL(ctx context.Context, jobId string, name string) (string, error) {
	job, err := e.jobs.Get(ctx, jobId)
	if err != nil {
		return "", xe.Wrap(err)
	}
	if _, ok := job.Output(name); !ok {
		return "", xe.Wrap(fmt.Errorf("%w: job %s has no output %s", domerr.ErrMissing, jobId, name))
	}
	if e.outputs.Bucket == nil {
		return "", xe.New("output bucket is not configured")
	}
	u, err := e.outputs.Bucket.PresignPut(ctx, OutputKey(jobId, name), e.outputs.UploadURLExpiry)
	if err != nil {
		return "", xe.Wrap(err)
	}
	return u, nil
}

// ProcessorJob returns the job for its own process.
//
// The private key is cleared, but secret parameters are kept.
func (e *Engine) ProcessorJob(ctx context.Context, jobId string) (domain.Job, error) {
	job, err := e.jobs.Get(ctx, jobId)
	if err != nil {
		return domain.Job{}, xe.Wrap(err)
	}
	return job.WithoutPrivateKey(), nil
}

// GetJob returns the job, redacted, when the user can read its workspace.
func (e *Engine) GetJob(ctx context.Context, userId string, jobId string) (domain.Job, error) {
	job, err := e.jobs.Get(ctx, jobId)
	if err != nil {
		return domain.Job{}, xe.Wrap(err)
	}
	if _, err := e.authorize(ctx, userId, job.ProjectId, domain.Role.CanRead); err != nil {
		return domain.Job{}, err
	}
	return job.Redacted(), nil
}

// FindJobs returns jobs of the project, redacted.
func (e *Engine) FindJobs(ctx context.Context, userId string, projectId string) ([]domain.Job, error) {
	if _, err := e.authorize(ctx, userId, projectId, domain.Role.CanRead); err != nil {
		return nil, err
	}
	jobs, err := e.jobs.Find(ctx, domain.JobQuery{ProjectId: projectId})
	if err != nil {
		return nil, xe.Wrap(err)
	}
	for i := range jobs {
		jobs[i] = jobs[i].Redacted()
	}
	return jobs, nil
}

// DeleteJob deletes the job, and then collects records detached by that.
func (e *Engine) DeleteJob(ctx context.Context, userId string, jobId string) error {
	job, err := e.jobs.Get(ctx, jobId)
	if err != nil {
		return xe.Wrap(err)
	}
	if _, err := e.authorize(ctx, userId, job.ProjectId, domain.Role.CanEdit); err != nil {
		return err
	}
	if _, err := e.jobs.Delete(ctx, jobId); err != nil {
		return xe.Wrap(err)
	}
	if _, err := e.collector.Run(ctx, job.ProjectId); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// authorize checks the role of the user in the workspace owning the project.
func (e *Engine) authorize(ctx context.Context, userId string, projectId string, allowed func(domain.Role) bool) (domain.Project, error) {
	project, err := e.workspaces.GetProject(ctx, projectId)
	if err != nil {
		return domain.Project{}, xe.Wrap(err)
	}
	workspace, err := e.workspaces.Get(ctx, project.WorkspaceId)
	if err != nil {
		return domain.Project{}, xe.Wrap(err)
	}
	if !allowed(workspace.Role(userId)) {
		return domain.Project{}, xe.Wrap(fmt.Errorf(
			"%w: project %s in workspace %s", domerr.ErrForbidden, projectId, workspace.WorkspaceId,
		))
	}
	return project, nil
}
