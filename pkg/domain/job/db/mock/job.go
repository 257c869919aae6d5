package mock

import (
	"context"
	"errors"

	"github.com/protocaas/protocaas/pkg/domain"
	dbmock "github.com/protocaas/protocaas/pkg/domain/internal/db/mock"
	kdb "github.com/protocaas/protocaas/pkg/domain/job/db"
)

type JobInterface struct {
	Impl struct {
		Insert           func(ctx context.Context, job domain.Job) error
		Get              func(ctx context.Context, jobId string) (domain.Job, error)
		Find             func(ctx context.Context, query domain.JobQuery) ([]domain.Job, error)
		Delete           func(ctx context.Context, jobIds ...string) (int, error)
		UpdateStatus     func(ctx context.Context, jobId string, from domain.JobStatus, change domain.StatusChange) error
		SetConsoleOutput func(ctx context.Context, jobId string, consoleOutput string) error
	}

	Calls struct {
		Insert       dbmock.CallLog[domain.Job]
		Get          dbmock.CallLog[string]
		Find         dbmock.CallLog[domain.JobQuery]
		Delete       dbmock.CallLog[[]string]
		UpdateStatus dbmock.CallLog[struct {
			JobId  string
			From   domain.JobStatus
			Change domain.StatusChange
		}]
		SetConsoleOutput dbmock.CallLog[struct {
			JobId         string
			ConsoleOutput string
		}]
	}
}

func NewJobInterface() *JobInterface {
	return &JobInterface{}
}

var _ kdb.Interface = &JobInterface{}

func (m *JobInterface) Insert(ctx context.Context, job domain.Job) error {
	m.Calls.Insert = append(m.Calls.Insert, job)
	if m.Impl.Insert != nil {
		return m.Impl.Insert(ctx, job)
	}
	panic(errors.New("it should not be called"))
}

func (m *JobInterface) Get(ctx context.Context, jobId string) (domain.Job, error) {
	m.Calls.Get = append(m.Calls.Get, jobId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, jobId)
	}
	panic(errors.New("it should not be called"))
}

func (m *JobInterface) Find(ctx context.Context, query domain.JobQuery) ([]domain.Job, error) {
	m.Calls.Find = append(m.Calls.Find, query)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, query)
	}
	panic(errors.New("it should not be called"))
}

func (m *JobInterface) Delete(ctx context.Context, jobIds ...string) (int, error) {
	m.Calls.Delete = append(m.Calls.Delete, jobIds)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, jobIds...)
	}
	panic(errors.New("it should not be called"))
}

func (m *JobInterface) UpdateStatus(ctx context.Context, jobId string, from domain.JobStatus, change domain.StatusChange) error {
	m.Calls.UpdateStatus = append(m.Calls.UpdateStatus, struct {
		JobId  string
		From   domain.JobStatus
		Change domain.StatusChange
	}{JobId: jobId, From: from, Change: change})
	if m.Impl.UpdateStatus != nil {
		return m.Impl.UpdateStatus(ctx, jobId, from, change)
	}
	panic(errors.New("it should not be called"))
}

func (m *JobInterface) SetConsoleOutput(ctx context.Context, jobId string, consoleOutput string) error {
	m.Calls.SetConsoleOutput = append(m.Calls.SetConsoleOutput, struct {
		JobId         string
		ConsoleOutput string
	}{JobId: jobId, ConsoleOutput: consoleOutput})
	if m.Impl.SetConsoleOutput != nil {
		return m.Impl.SetConsoleOutput(ctx, jobId, consoleOutput)
	}
	panic(errors.New("it should not be called"))
}
