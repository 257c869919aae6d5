package mock

import (
	"context"
	"errors"
	"time"

	"github.com/protocaas/protocaas/pkg/domain"
	kdb "github.com/protocaas/protocaas/pkg/domain/computeresource/db"
	dbmock "github.com/protocaas/protocaas/pkg/domain/internal/db/mock"
)

type ComputeResourceInterface struct {
	Impl struct {
		Get        func(ctx context.Context, computeResourceId string) (domain.ComputeResource, error)
		Register   func(ctx context.Context, computeResourceId string, ownerId string, name string, at time.Time) error
		SetApps    func(ctx context.Context, computeResourceId string, apps []domain.App) error
		SetSpec    func(ctx context.Context, computeResourceId string, spec domain.ComputeResourceSpec) error
		Heartbeat  func(ctx context.Context, node domain.ComputeResourceNode) error
		Nodes      func(ctx context.Context, computeResourceId string) ([]domain.ComputeResourceNode, error)
		PruneNodes func(ctx context.Context, before time.Time) (int, error)
	}

	Calls struct {
		Get      dbmock.CallLog[string]
		Register dbmock.CallLog[struct {
			ComputeResourceId string
			OwnerId           string
			Name              string
			At                time.Time
		}]
		SetApps dbmock.CallLog[struct {
			ComputeResourceId string
			Apps              []domain.App
		}]
		SetSpec dbmock.CallLog[struct {
			ComputeResourceId string
			Spec              domain.ComputeResourceSpec
		}]
		Heartbeat  dbmock.CallLog[domain.ComputeResourceNode]
		Nodes      dbmock.CallLog[string]
		PruneNodes dbmock.CallLog[time.Time]
	}
}

func NewComputeResourceInterface() *ComputeResourceInterface {
	return &ComputeResourceInterface{}
}

var _ kdb.Interface = &ComputeResourceInterface{}

func (m *ComputeResourceInterface) Get(ctx context.Context, computeResourceId string) (domain.ComputeResource, error) {
	m.Calls.Get = append(m.Calls.Get, computeResourceId)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, computeResourceId)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComputeResourceInterface) Register(ctx context.Context, computeResourceId string, ownerId string, name string, at time.Time) error {
	m.Calls.Register = append(m.Calls.Register, struct {
		ComputeResourceId string
		OwnerId           string
		Name              string
		At                time.Time
	}{ComputeResourceId: computeResourceId, OwnerId: ownerId, Name: name, At: at})
	if m.Impl.Register != nil {
		return m.Impl.Register(ctx, computeResourceId, ownerId, name, at)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComputeResourceInterface) SetApps(ctx context.Context, computeResourceId string, apps []domain.App) error {
	m.Calls.SetApps = append(m.Calls.SetApps, struct {
		ComputeResourceId string
		Apps              []domain.App
	}{ComputeResourceId: computeResourceId, Apps: apps})
	if m.Impl.SetApps != nil {
		return m.Impl.SetApps(ctx, computeResourceId, apps)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComputeResourceInterface) SetSpec(ctx context.Context, computeResourceId string, spec domain.ComputeResourceSpec) error {
	m.Calls.SetSpec = append(m.Calls.SetSpec, struct {
		ComputeResourceId string
		Spec              domain.ComputeResourceSpec
	}{ComputeResourceId: computeResourceId, Spec: spec})
	if m.Impl.SetSpec != nil {
		return m.Impl.SetSpec(ctx, computeResourceId, spec)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComputeResourceInterface) Heartbeat(ctx context.Context, node domain.ComputeResourceNode) error {
	m.Calls.Heartbeat = append(m.Calls.Heartbeat, node)
	if m.Impl.Heartbeat != nil {
		return m.Impl.Heartbeat(ctx, node)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComputeResourceInterface) Nodes(ctx context.Context, computeResourceId string) ([]domain.ComputeResourceNode, error) {
	m.Calls.Nodes = append(m.Calls.Nodes, computeResourceId)
	if m.Impl.Nodes != nil {
		return m.Impl.Nodes(ctx, computeResourceId)
	}
	panic(errors.New("it should not be called"))
}

func (m *ComputeResourceInterface) PruneNodes(ctx context.Context, before time.Time) (int, error) {
	m.Calls.PruneNodes = append(m.Calls.PruneNodes, before)
	if m.Impl.PruneNodes != nil {
		return m.Impl.PruneNodes(ctx, before)
	}
	panic(errors.New("it should not be called"))
}
