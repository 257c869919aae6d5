package files

import (
	"github.com/protocaas/protocaas/pkg/utils/unixtime"
)

// File is a file record in a project.
//
// Content is the data itself, or "url:" followed by the location of the data.
type File struct {
	ProjectId        string           `json:"projectId"`
	WorkspaceId      string           `json:"workspaceId"`
	FileId           string           `json:"fileId"`
	FileName         string           `json:"fileName"`
	Size             int64            `json:"size"`
	TimestampCreated unixtime.Seconds `json:"timestampCreated"`
	Content          string           `json:"content"`
	Metadata         map[string]any   `json:"metadata"`
	JobId            string           `json:"jobId,omitempty"`
}

type GetFileResponse struct {
	File    File `json:"file"`
	Success bool `json:"success"`
}

type GetFilesResponse struct {
	Files   []File `json:"files"`
	Success bool   `json:"success"`
}

type SetFileRequest struct {
	Content  string         `json:"content"`
	Size     *int64         `json:"size,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

type SetFileResponse struct {
	FileId  string `json:"fileId"`
	Success bool   `json:"success"`
}
