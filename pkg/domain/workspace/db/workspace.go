package db

import (
	"context"

	"github.com/protocaas/protocaas/pkg/domain"
)

// Interface to read workspaces and projects.
//
// They are maintained by other components, so this is read only.
type Interface interface {
	// Get a workspace.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, workspaceId string) (domain.Workspace, error)

	// GetProject returns a project.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	GetProject(ctx context.Context, projectId string) (domain.Project, error)

	// ProjectIds lists all project ids.
	ProjectIds(ctx context.Context) ([]string, error)
}
