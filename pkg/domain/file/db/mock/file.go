package mock

import (
	"context"
	"errors"

	"github.com/protocaas/protocaas/pkg/domain"
	kdb "github.com/protocaas/protocaas/pkg/domain/file/db"
	dbmock "github.com/protocaas/protocaas/pkg/domain/internal/db/mock"
)

type FileInterface struct {
	Impl struct {
		Insert    func(ctx context.Context, file domain.File) error
		Get       func(ctx context.Context, fileId string) (domain.File, error)
		GetByName func(ctx context.Context, projectId string, fileName string) (domain.File, error)
		Find      func(ctx context.Context, projectId string) ([]domain.File, error)
		Delete    func(ctx context.Context, fileIds ...string) (int, error)
	}

	Calls struct {
		Insert    dbmock.CallLog[domain.File]
		Get       dbmock.CallLog[string]
		GetByName dbmock.CallLog[struct {
			ProjectId string
			FileName  string
		}]
		Find   dbmock.CallLog[string]
		Delete dbmock.CallLog[[]string]
	}
}

func NewFileInterface() *FileInterface {
	return &FileInterface{}
}

var _ kdb.Interface = &FileInterface{}

func (m *FileInterface) Insert(ctx context.Context, file domain.File) error {
	m.Calls.Insert = append(m.Calls.Insert, file)
	if m.Impl.Insert != nil {
		return m.Impl.Insert(ctx, file)
	}
	panic(errors.New("it should not be called"))
}

func (m *FileInterface) Get(ctx context.Context, fileId string) (domain.File, error) {
	m.Calls.Get = append(m.Calls.Get, fileId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, fileId)
	}
	panic(errors.New("it should not be called"))
}

func (m *FileInterface) GetByName(ctx context.Context, projectId string, fileName string) (domain.File, error) {
	m.Calls.GetByName = append(m.Calls.GetByName, struct {
		ProjectId string
		FileName  string
	}{ProjectId: projectId, FileName: fileName})
	if m.Impl.GetByName != nil {
		return m.Impl.GetByName(ctx, projectId, fileName)
	}
	panic(errors.New("it should not be called"))
}

func (m *FileInterface) Find(ctx context.Context, projectId string) ([]domain.File, error) {
	m.Calls.Find = append(m.Calls.Find, projectId)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, projectId)
	}
	panic(errors.New("it should not be called"))
}

func (m *FileInterface) Delete(ctx context.Context, fileIds ...string) (int, error) {
	m.Calls.Delete = append(m.Calls.Delete, fileIds)
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, fileIds...)
	}
	panic(errors.New("it should not be called"))
}
