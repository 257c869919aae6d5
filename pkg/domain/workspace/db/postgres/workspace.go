package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/protocaas/protocaas/pkg/conn/db/postgres/pool"
	"github.com/protocaas/protocaas/pkg/conn/db/postgres/scanner"
	"github.com/protocaas/protocaas/pkg/domain"
	pgerrors "github.com/protocaas/protocaas/pkg/domain/errors/dberrors/postgres"
	ipg "github.com/protocaas/protocaas/pkg/domain/internal/db/postgres"
	kdb "github.com/protocaas/protocaas/pkg/domain/workspace/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

type workspacePG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.Interface {
	return &workspacePG{pool: pool}
}

func (m *workspacePG) Get(ctx context.Context, workspaceId string) (domain.Workspace, error) {
	var ws domain.Workspace
	var users pgtype.JSONB
	err := m.pool.QueryRow(
		ctx,
		`select "workspace_id", "name", "owner_id", "users", "publicly_readable", "compute_resource_id"
		from "workspace" where "workspace_id" = $1`,
		workspaceId,
	).Scan(&ws.WorkspaceId, &ws.Name, &ws.OwnerId, &users, &ws.PubliclyReadable, &ws.ComputeResourceId)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Workspace{}, pgerrors.Missing{Table: "workspace", Identity: workspaceId}
	} else if err != nil {
		return domain.Workspace{}, xe.Wrap(err)
	}

	var us []ipg.WorkspaceUser
	if err := ipg.FromJSONB(users, &us); err != nil {
		return domain.Workspace{}, xe.Wrap(err)
	}
	ws.Users = ipg.ToWorkspaceUsers(us)
	return ws, nil
}

func (m *workspacePG) GetProject(ctx context.Context, projectId string) (domain.Project, error) {
	var p domain.Project
	err := m.pool.QueryRow(
		ctx,
		`select "project_id", "workspace_id", "name" from "project" where "project_id" = $1`,
		projectId,
	).Scan(&p.ProjectId, &p.WorkspaceId, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, pgerrors.Missing{Table: "project", Identity: projectId}
	} else if err != nil {
		return domain.Project{}, xe.Wrap(err)
	}
	return p, nil
}

func (m *workspacePG) ProjectIds(ctx context.Context) ([]string, error) {
	ids, err := scanner.New[string]().QueryAll(ctx, m.pool, `select "project_id" from "project" order by "project_id"`)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return ids, nil
}
