package mock

import (
	"context"
	"errors"

	"github.com/protocaas/protocaas/pkg/domain"
	dbmock "github.com/protocaas/protocaas/pkg/domain/internal/db/mock"
	kdb "github.com/protocaas/protocaas/pkg/domain/workspace/db"
)

type WorkspaceInterface struct {
	Impl struct {
		Get        func(ctx context.Context, workspaceId string) (domain.Workspace, error)
		GetProject func(ctx context.Context, projectId string) (domain.Project, error)
		ProjectIds func(ctx context.Context) ([]string, error)
	}

	Calls struct {
		Get        dbmock.CallLog[string]
		GetProject dbmock.CallLog[string]
		ProjectIds dbmock.CallLog[struct{}]
	}
}

func NewWorkspaceInterface() *WorkspaceInterface {
	return &WorkspaceInterface{}
}

var _ kdb.Interface = &WorkspaceInterface{}

func (m *WorkspaceInterface) Get(ctx context.Context, workspaceId string) (domain.Workspace, error) {
	m.Calls.Get = append(m.Calls.Get, workspaceId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, workspaceId)
	}
	panic(errors.New("it should not be called"))
}

func (m *WorkspaceInterface) GetProject(ctx context.Context, projectId string) (domain.Project, error) {
	m.Calls.GetProject = append(m.Calls.GetProject, projectId)
	if m.Impl.GetProject != nil {
		return m.Impl.GetProject(ctx, projectId)
	}
	panic(errors.New("it should not be called"))
}

func (m *WorkspaceInterface) ProjectIds(ctx context.Context) ([]string, error) {
	m.Calls.ProjectIds = append(m.Calls.ProjectIds, struct{}{})
	if m.Impl.ProjectIds != nil {
		return m.Impl.ProjectIds(ctx)
	}
	panic(errors.New("it should not be called"))
}
