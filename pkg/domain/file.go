package domain

import (
	"strings"
	"time"
)

// Content is the body of a File. It is Inline or Remote.
type Content interface {
	content()
}

// Inline content is carried in the record itself.
type Inline struct {
	Data string
}

// Remote content is a pointer to external storage.
type Remote struct {
	URL string
}

func (Inline) content() {}
func (Remote) content() {}

const remotePrefix = "url:"

// ParseContent converts a stored content string into Content.
//
// "url:..." is Remote, and anything else is Inline.
func ParseContent(s string) Content {
	if u, ok := strings.CutPrefix(s, remotePrefix); ok {
		return Remote{URL: u}
	}
	return Inline{Data: s}
}

// FormatContent is the reverse of ParseContent.
func FormatContent(c Content) string {
	switch c := c.(type) {
	case Remote:
		return remotePrefix + c.URL
	case Inline:
		return c.Data
	default:
		return ""
	}
}

type File struct {
	FileId      string
	WorkspaceId string
	ProjectId   string
	FileName    string
	Size        int64
	Content     Content
	Metadata    Document

	// JobId is not empty when the file is an output of the job.
	JobId string

	TimestampCreated time.Time
}
