package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/protocaas/protocaas/pkg/conn/db/postgres/pool"
	"github.com/protocaas/protocaas/pkg/conn/db/postgres/scanner"
	"github.com/protocaas/protocaas/pkg/domain"
	kdb "github.com/protocaas/protocaas/pkg/domain/computeresource/db"
	pgerrors "github.com/protocaas/protocaas/pkg/domain/errors/dberrors/postgres"
	ipg "github.com/protocaas/protocaas/pkg/domain/internal/db/postgres"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

type computeResourcePG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.Interface {
	return &computeResourcePG{pool: pool}
}

func (m *computeResourcePG) Get(ctx context.Context, computeResourceId string) (domain.ComputeResource, error) {
	var cr domain.ComputeResource
	var apps, spec pgtype.JSONB
	err := m.pool.QueryRow(
		ctx,
		`select "compute_resource_id", "owner_id", "name", "apps", "spec", "timestamp_created"
		from "compute_resource" where "compute_resource_id" = $1`,
		computeResourceId,
	).Scan(&cr.ComputeResourceId, &cr.OwnerId, &cr.Name, &apps, &spec, &cr.TimestampCreated)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ComputeResource{}, pgerrors.Missing{Table: "compute_resource", Identity: computeResourceId}
	} else if err != nil {
		return domain.ComputeResource{}, xe.Wrap(err)
	}

	var as []ipg.App
	if err := ipg.FromJSONB(apps, &as); err != nil {
		return domain.ComputeResource{}, xe.Wrap(err)
	}
	cr.Apps = ipg.ToApps(as)

	if spec.Status == pgtype.Present {
		var s ipg.ComputeResourceSpec
		if err := ipg.FromJSONB(spec, &s); err != nil {
			return domain.ComputeResource{}, xe.Wrap(err)
		}
		ds := ipg.ToComputeResourceSpec(s)
		cr.Spec = &ds
	}
	return cr, nil
}

func (m *computeResourcePG) Register(ctx context.Context, computeResourceId string, ownerId string, name string, at time.Time) error {
	// "on conflict ... where" updates only rows owned by the same user.
	ctag, err := m.pool.Exec(
		ctx,
		`insert into "compute_resource" ("compute_resource_id", "owner_id", "name", "timestamp_created")
		values ($1, $2, $3, $4)
		on conflict ("compute_resource_id") do update set "name" = excluded."name"
		where "compute_resource"."owner_id" = excluded."owner_id"`,
		computeResourceId, ownerId, name, at,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return pgerrors.Conflict{
			Table: "compute_resource", Identity: computeResourceId,
			Reason: "registered by another user",
		}
	}
	return nil
}

func (m *computeResourcePG) SetApps(ctx context.Context, computeResourceId string, apps []domain.App) error {
	col, err := ipg.JSONB(ipg.FromApps(apps))
	if err != nil {
		return xe.Wrap(err)
	}
	ctag, err := m.pool.Exec(
		ctx,
		`update "compute_resource" set "apps" = $2 where "compute_resource_id" = $1`,
		computeResourceId, col,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return pgerrors.Missing{Table: "compute_resource", Identity: computeResourceId}
	}
	return nil
}

func (m *computeResourcePG) SetSpec(ctx context.Context, computeResourceId string, spec domain.ComputeResourceSpec) error {
	col, err := ipg.JSONB(ipg.FromComputeResourceSpec(spec))
	if err != nil {
		return xe.Wrap(err)
	}
	ctag, err := m.pool.Exec(
		ctx,
		`update "compute_resource" set "spec" = $2 where "compute_resource_id" = $1`,
		computeResourceId, col,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return pgerrors.Missing{Table: "compute_resource", Identity: computeResourceId}
	}
	return nil
}

func (m *computeResourcePG) Heartbeat(ctx context.Context, node domain.ComputeResourceNode) error {
	_, err := m.pool.Exec(
		ctx,
		`insert into "compute_resource_node"
			("compute_resource_id", "node_id", "node_name", "timestamp_last_active")
		values ($1, $2, $3, $4)
		on conflict ("compute_resource_id", "node_id") do update
		set "node_name" = excluded."node_name",
			"timestamp_last_active" = excluded."timestamp_last_active"`,
		node.ComputeResourceId, node.NodeId, node.NodeName, node.TimestampLastActive,
	)
	return xe.Wrap(err)
}

func (m *computeResourcePG) Nodes(ctx context.Context, computeResourceId string) ([]domain.ComputeResourceNode, error) {
	nodes, err := scanner.New[domain.ComputeResourceNode]().QueryAll(
		ctx, m.pool,
		`select "compute_resource_id", "node_id", "node_name", "timestamp_last_active"
		from "compute_resource_node" where "compute_resource_id" = $1
		order by "node_id"`,
		computeResourceId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return nodes, nil
}

func (m *computeResourcePG) PruneNodes(ctx context.Context, before time.Time) (int, error) {
	ctag, err := m.pool.Exec(
		ctx,
		`delete from "compute_resource_node" where "timestamp_last_active" < $1`,
		before,
	)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	return int(ctag.RowsAffected()), nil
}
