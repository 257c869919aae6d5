package db

import (
	"context"

	"github.com/protocaas/protocaas/pkg/domain"
)

// Interface of the file collection.
//
// Files are never updated. To overwrite a file, delete it and insert new one.
type Interface interface {
	// Insert a new file.
	//
	// Returns
	//
	// - error: ErrConflict when a file with the same name exists in the project,
	// or the file id is used already.
	Insert(ctx context.Context, file domain.File) error

	// Get a file by id.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, fileId string) (domain.File, error)

	// GetByName returns a file in the project by its name.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	GetByName(ctx context.Context, projectId string, fileName string) (domain.File, error)

	// Find all files in the project.
	Find(ctx context.Context, projectId string) ([]domain.File, error)

	// Delete files. Ids not found are ignored.
	//
	// Returns
	//
	// - int: the number of files which are actually deleted.
	Delete(ctx context.Context, fileIds ...string) (int, error)
}
