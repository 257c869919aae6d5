package lifecycle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/protocaas/protocaas/pkg/domain"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

func TestSetFile(t *testing.T) {
	t.Run("it puts a new file", func(t *testing.T) {
		ctx := context.Background()
		db, _, _, engine := fixture(t)

		fileId := try.To(engine.SetFile(ctx, "github|editor", lifecycle.SetFileRequest{
			ProjectId: "pj-1", FileName: "raw.nwb",
			Content:  domain.Remote{URL: "https://example.com/raw.nwb"},
			Size:     100,
			Metadata: domain.Document{"session": "a"},
		})).OrFatal(t)

		f := try.To(db.Files().Get(ctx, fileId)).OrFatal(t)
		if f.WorkspaceId != "ws-1" || f.ProjectId != "pj-1" || f.FileName != "raw.nwb" || f.Size != 100 {
			t.Errorf("unexpected file: %+v", f)
		}
		if c, ok := f.Content.(domain.Remote); !ok || c.URL != "https://example.com/raw.nwb" {
			t.Errorf("content: %+v", f.Content)
		}
		if f.Metadata["session"] != "a" {
			t.Errorf("metadata: %+v", f.Metadata)
		}
		if !f.TimestampCreated.Equal(now) {
			t.Errorf("created at: %s", f.TimestampCreated)
		}
	})

	t.Run("it supersedes the file with the same name and collects its dependents", func(t *testing.T) {
		ctx := context.Background()
		db, _, _, engine := fixture(t)
		putFile(t, db, domain.File{
			FileId: "old", WorkspaceId: "ws-1", ProjectId: "pj-1", FileName: "raw.nwb",
			Content: domain.Inline{Data: "old"},
		})
		try.To(0, db.Jobs().Insert(ctx, domain.Job{
			JobId: "consumer", WorkspaceId: "ws-1", ProjectId: "pj-1", Status: domain.Running,
			InputFileIds: []string{"old"},
		})).OrFatal(t)
		try.To(0, db.Jobs().Insert(ctx, domain.Job{
			JobId: "unrelated", WorkspaceId: "ws-1", ProjectId: "pj-1", Status: domain.Pending,
		})).OrFatal(t)

		fileId := try.To(engine.SetFile(ctx, "github|owner", lifecycle.SetFileRequest{
			ProjectId: "pj-1", FileName: "raw.nwb", Content: domain.Inline{Data: "new"},
		})).OrFatal(t)

		if _, err := db.Files().Get(ctx, "old"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("old file: %v", err)
		}
		current := try.To(db.Files().GetByName(ctx, "pj-1", "raw.nwb")).OrFatal(t)
		if current.FileId != fileId {
			t.Errorf("current file: %+v", current)
		}
		if _, err := db.Jobs().Get(ctx, "consumer"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("consumer job: %v", err)
		}
		try.To(db.Jobs().Get(ctx, "unrelated")).OrFatal(t)
	})

	type when struct {
		userId string
		req    lifecycle.SetFileRequest
	}
	theory := func(when when, wantErr error) func(*testing.T) {
		return func(t *testing.T) {
			ctx := context.Background()
			_, _, _, engine := fixture(t)
			if _, err := engine.SetFile(ctx, when.userId, when.req); !errors.Is(err, wantErr) {
				t.Errorf("unexpected error: %v (want %v)", err, wantErr)
			}
		}
	}

	t.Run("viewer can not put files", theory(when{
		userId: "github|viewer",
		req:    lifecycle.SetFileRequest{ProjectId: "pj-1", FileName: "a", Content: domain.Inline{}},
	}, domerr.ErrForbidden))
	t.Run("file name is required", theory(when{
		userId: "github|owner",
		req:    lifecycle.SetFileRequest{ProjectId: "pj-1", Content: domain.Inline{}},
	}, domerr.ErrInvalidArgument))
	t.Run("content is required", theory(when{
		userId: "github|owner",
		req:    lifecycle.SetFileRequest{ProjectId: "pj-1", FileName: "a"},
	}, domerr.ErrInvalidArgument))
	t.Run("project should exist", theory(when{
		userId: "github|owner",
		req:    lifecycle.SetFileRequest{ProjectId: "pj-unknown", FileName: "a", Content: domain.Inline{}},
	}, domerr.ErrMissing))
}

func TestGetFile(t *testing.T) {
	ctx := context.Background()
	db, _, _, engine := fixture(t)
	putFile(t, db, domain.File{
		FileId: "f", WorkspaceId: "ws-1", ProjectId: "pj-1", FileName: "a/b.txt",
		Content: domain.Inline{Data: "hello"},
	})

	f := try.To(engine.GetFile(ctx, "github|viewer", "pj-1", "a/b.txt")).OrFatal(t)
	if f.FileId != "f" {
		t.Errorf("unexpected file: %+v", f)
	}
	if _, err := engine.GetFile(ctx, "github|viewer", "pj-1", "missing.txt"); !errors.Is(err, domerr.ErrMissing) {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := engine.GetFile(ctx, "github|stranger", "pj-1", "a/b.txt"); !errors.Is(err, domerr.ErrForbidden) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDeleteFile(t *testing.T) {
	t.Run("it deletes the file and jobs using it", func(t *testing.T) {
		ctx := context.Background()
		db, _, _, engine := fixture(t)
		putFile(t, db, domain.File{
			FileId: "f", WorkspaceId: "ws-1", ProjectId: "pj-1", FileName: "in.txt",
			Content: domain.Inline{Data: "x"},
		})
		try.To(0, db.Jobs().Insert(ctx, domain.Job{
			JobId: "consumer", WorkspaceId: "ws-1", ProjectId: "pj-1", Status: domain.Pending,
			InputFileIds: []string{"f"},
		})).OrFatal(t)

		try.To(0, engine.DeleteFile(ctx, "github|editor", "pj-1", "in.txt")).OrFatal(t)

		if files := try.To(engine.FindFiles(ctx, "github|viewer", "pj-1")).OrFatal(t); len(files) != 0 {
			t.Errorf("files remain: %+v", files)
		}
		if _, err := db.Jobs().Get(ctx, "consumer"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("consumer job: %v", err)
		}
	})

	t.Run("missing file is ErrMissing", func(t *testing.T) {
		ctx := context.Background()
		_, _, _, engine := fixture(t)
		if err := engine.DeleteFile(ctx, "github|editor", "pj-1", "nothing"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("viewer can not delete files", func(t *testing.T) {
		ctx := context.Background()
		db, _, _, engine := fixture(t)
		putFile(t, db, domain.File{
			FileId: "f", WorkspaceId: "ws-1", ProjectId: "pj-1", FileName: "in.txt",
			Content: domain.Inline{Data: "x"},
		})
		if err := engine.DeleteFile(ctx, "github|viewer", "pj-1", "in.txt"); !errors.Is(err, domerr.ErrForbidden) {
			t.Errorf("unexpected error: %v", err)
		}
		try.To(db.Files().Get(ctx, "f")).OrFatal(t)
	})
}
