package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/protocaas/protocaas/pkg/domain"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	xe "github.com/protocaas/protocaas/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// concurrency of size probes for outputs of a job.
const probeConcurrency = 4

type SetFileRequest struct {
	ProjectId string
	FileName  string
	Content   domain.Content
	Size      int64
	Metadata  domain.Document
}

// SetFile puts a file into the project, superseding the file with the same name.
//
// When a file is superseded, records detached by that are collected.
//
// Returns
//
// - string: id of the new file
//
// - error: ErrForbidden when the user is not an editor of the workspace.
func (e *Engine) SetFile(ctx context.Context, userId string, req SetFileRequest) (string, error) {
	if req.FileName == "" {
		return "", xe.Wrap(fmt.Errorf("%w: file name is required", domerr.ErrInvalidArgument))
	}
	if req.Content == nil {
		return "", xe.Wrap(fmt.Errorf("%w: content is required", domerr.ErrInvalidArgument))
	}
	project, err := e.authorize(ctx, userId, req.ProjectId, domain.Role.CanEdit)
	if err != nil {
		return "", err
	}

	file := domain.File{
		FileId:           e.newId(),
		WorkspaceId:      project.WorkspaceId,
		ProjectId:        project.ProjectId,
		FileName:         req.FileName,
		Size:             req.Size,
		Content:          req.Content,
		Metadata:         req.Metadata,
		TimestampCreated: e.now(),
	}
	superseded, err := e.putFile(ctx, file)
	if err != nil {
		return "", err
	}
	if superseded {
		if _, err := e.collector.Run(ctx, file.ProjectId); err != nil {
			return "", xe.Wrap(err)
		}
	}
	return file.FileId, nil
}

// DeleteFile deletes the file named as fileName, and then collects records detached by that.
//
// Returns
//
// - error: ErrMissing when the file is not found.
func (e *Engine) DeleteFile(ctx context.Context, userId string, projectId string, fileName string) error {
	if _, err := e.authorize(ctx, userId, projectId, domain.Role.CanEdit); err != nil {
		return err
	}
	f, err := e.files.GetByName(ctx, projectId, fileName)
	if err != nil {
		return xe.Wrap(err)
	}
	if _, err := e.files.Delete(ctx, f.FileId); err != nil {
		return xe.Wrap(err)
	}
	if _, err := e.collector.Run(ctx, projectId); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// FindFiles returns all files in the project.
func (e *Engine) FindFiles(ctx context.Context, userId string, projectId string) ([]domain.File, error) {
	if _, err := e.authorize(ctx, userId, projectId, domain.Role.CanRead); err != nil {
		return nil, err
	}
	files, err := e.files.Find(ctx, projectId)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return files, nil
}

// GetFile returns the file named as fileName in the project.
func (e *Engine) GetFile(ctx context.Context, userId string, projectId string, fileName string) (domain.File, error) {
	if _, err := e.authorize(ctx, userId, projectId, domain.Role.CanRead); err != nil {
		return domain.File{}, err
	}
	f, err := e.files.GetByName(ctx, projectId, fileName)
	if err != nil {
		return domain.File{}, xe.Wrap(err)
	}
	return f, nil
}

// putFile deletes the file having the same name, and inserts the new one.
//
// Returns
//
// - bool: true if an existing file is deleted.
//
// - error
func (e *Engine) putFile(ctx context.Context, file domain.File) (bool, error) {
	superseded := false
	old, err := e.files.GetByName(ctx, file.ProjectId, file.FileName)
	if err == nil {
		n, err := e.files.Delete(ctx, old.FileId)
		if err != nil {
			return false, xe.Wrap(err)
		}
		superseded = n != 0
	} else if !errors.Is(err, domerr.ErrMissing) {
		return false, xe.Wrap(err)
	}

	if err := e.files.Insert(ctx, file); err != nil {
		return superseded, xe.Wrap(err)
	}
	return superseded, nil
}

// materializeOutputs registers uploaded outputs of the job as files.
//
// Returns
//
// - []domain.OutputFile: outputs of the job with file ids.
//
// - error: ErrSizeUnavailable when some outputs are not uploaded.
func (e *Engine) materializeOutputs(ctx context.Context, job domain.Job) ([]domain.OutputFile, error) {
	if len(job.OutputFiles) == 0 {
		return []domain.OutputFile{}, nil
	}
	if e.outputs.Prober == nil {
		return nil, xe.Wrap(fmt.Errorf("%w: no prober is configured", domerr.ErrSizeUnavailable))
	}

	urls := make([]string, len(job.OutputFiles))
	sizes := make([]int64, len(job.OutputFiles))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(probeConcurrency)
	for i, o := range job.OutputFiles {
		urls[i] = e.outputs.URL(job.JobId, o.Name)
		eg.Go(func() error {
			size, err := e.outputs.Prober.Size(gctx, urls[i])
			if err != nil {
				return fmt.Errorf("output %s: %w", o.Name, err)
			}
			sizes[i] = size
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, xe.Wrap(err)
	}

	// another request may have finished the job while probing. Its outputs must stay.
	current, err := e.jobs.Get(ctx, job.JobId)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if current.Status != job.Status {
		return nil, xe.Wrap(domain.NewErrInvalidJobStateChanging(current.Status, domain.Completed))
	}

	now := e.now()
	outputs := make([]domain.OutputFile, 0, len(job.OutputFiles))
	superseded := false
	for i, o := range job.OutputFiles {
		file := domain.File{
			FileId:           e.newId(),
			WorkspaceId:      job.WorkspaceId,
			ProjectId:        job.ProjectId,
			FileName:         o.FileName,
			Size:             sizes[i],
			Content:          domain.Remote{URL: urls[i]},
			Metadata:         domain.Document{},
			JobId:            job.JobId,
			TimestampCreated: now,
		}
		s, err := e.putFile(ctx, file)
		if err != nil {
			return nil, err
		}
		superseded = superseded || s
		o.FileId = file.FileId
		outputs = append(outputs, o)
	}

	if superseded {
		if _, err := e.collector.Run(ctx, job.ProjectId); err != nil {
			return nil, xe.Wrap(err)
		}
	}
	return outputs, nil
}
