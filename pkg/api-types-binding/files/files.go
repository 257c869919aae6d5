package files

import (
	"fmt"

	apifiles "github.com/protocaas/protocaas/pkg/api/types/files"
	"github.com/protocaas/protocaas/pkg/domain"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/utils/unixtime"
)

func Compose(f domain.File) apifiles.File {
	metadata := map[string]any(f.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	return apifiles.File{
		ProjectId:        f.ProjectId,
		WorkspaceId:      f.WorkspaceId,
		FileId:           f.FileId,
		FileName:         f.FileName,
		Size:             f.Size,
		TimestampCreated: unixtime.Seconds(f.TimestampCreated),
		Content:          domain.FormatContent(f.Content),
		Metadata:         metadata,
		JobId:            f.JobId,
	}
}

// ParseSetRequest converts a request to put the file named as fileName into the project.
//
// Returns
//
// - error: ErrInvalidArgument when size is negative.
func ParseSetRequest(projectId string, fileName string, req apifiles.SetFileRequest) (lifecycle.SetFileRequest, error) {
	var size int64
	if req.Size != nil {
		if *req.Size < 0 {
			return lifecycle.SetFileRequest{}, fmt.Errorf("%w: size should not be negative", domerr.ErrInvalidArgument)
		}
		size = *req.Size
	} else if c, ok := domain.ParseContent(req.Content).(domain.Inline); ok {
		size = int64(len(c.Data))
	}
	metadata := domain.Document(req.Metadata)
	if metadata == nil {
		metadata = domain.Document{}
	}
	return lifecycle.SetFileRequest{
		ProjectId: projectId,
		FileName:  fileName,
		Content:   domain.ParseContent(req.Content),
		Size:      size,
		Metadata:  metadata,
	}, nil
}
