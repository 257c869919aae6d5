package db

import (
	"context"
	"time"

	"github.com/protocaas/protocaas/pkg/domain"
)

type Interface interface {
	// Get a compute resource.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, computeResourceId string) (domain.ComputeResource, error)

	// Register binds the compute resource to the owner.
	//
	// When the compute resource is not registered yet, it is created.
	// When it is registered by the same owner, its name is updated.
	//
	// Returns
	//
	// - error: ErrConflict when it is owned by another user.
	Register(ctx context.Context, computeResourceId string, ownerId string, name string, at time.Time) error

	// SetApps replaces apps of the compute resource.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	SetApps(ctx context.Context, computeResourceId string, apps []domain.App) error

	// SetSpec replaces the spec of the compute resource, wholesale.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	SetSpec(ctx context.Context, computeResourceId string, spec domain.ComputeResourceSpec) error

	// Heartbeat upserts a node record.
	Heartbeat(ctx context.Context, node domain.ComputeResourceNode) error

	// Nodes of the compute resource.
	Nodes(ctx context.Context, computeResourceId string) ([]domain.ComputeResourceNode, error)

	// PruneNodes deletes nodes which are not active since `before`.
	//
	// Returns
	//
	// - int: the number of deleted nodes.
	PruneNodes(ctx context.Context, before time.Time) (int, error)
}
