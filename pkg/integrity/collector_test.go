package integrity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/protocaas/protocaas/pkg/cmp"
	"github.com/protocaas/protocaas/pkg/domain"
	filemock "github.com/protocaas/protocaas/pkg/domain/file/db/mock"
	jobmock "github.com/protocaas/protocaas/pkg/domain/job/db/mock"
	"github.com/protocaas/protocaas/pkg/domain/protocaas/db/memory"
	"github.com/protocaas/protocaas/pkg/integrity"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

func seed(t *testing.T, db *memory.Database, jobs []domain.Job, files []domain.File) {
	t.Helper()
	ctx := context.Background()
	for _, j := range jobs {
		if err := db.Jobs().Insert(ctx, j); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		if err := db.Files().Insert(ctx, f); err != nil {
			t.Fatal(err)
		}
	}
}

func remaining(t *testing.T, db *memory.Database, projectId string) ([]string, []string) {
	t.Helper()
	ctx := context.Background()
	jobIds := []string{}
	for _, j := range try.To(db.Jobs().Find(ctx, domain.JobQuery{ProjectId: projectId})).OrFatal(t) {
		jobIds = append(jobIds, j.JobId)
	}
	fileIds := []string{}
	for _, f := range try.To(db.Files().Find(ctx, projectId)).OrFatal(t) {
		fileIds = append(fileIds, f.FileId)
	}
	return jobIds, fileIds
}

func TestCollector_Run(t *testing.T) {
	ctx := context.Background()

	type when struct {
		jobs  []domain.Job
		files []domain.File
	}
	type then struct {
		jobs   []string
		files  []string
		report integrity.Report
	}

	theory := func(when when, then then) func(*testing.T) {
		return func(t *testing.T) {
			db := memory.New()
			seed(t, db, when.jobs, when.files)

			testee := integrity.New(db.Jobs(), db.Files(), nil)
			report := try.To(testee.Run(ctx, "p")).OrFatal(t)

			jobs, files := remaining(t, db, "p")
			if !cmp.SliceContentEq(jobs, then.jobs) {
				t.Errorf("jobs: actual = %v, expected = %v", jobs, then.jobs)
			}
			if !cmp.SliceContentEq(files, then.files) {
				t.Errorf("files: actual = %v, expected = %v", files, then.files)
			}
			if report != then.report {
				t.Errorf("report: actual = %+v, expected = %+v", report, then.report)
			}
		}
	}

	t.Run("consistent project is left as is", theory(
		when{
			jobs: []domain.Job{
				{JobId: "j1", ProjectId: "p", InputFileIds: []string{"in"}, OutputFiles: []domain.OutputFile{{Name: "o", FileName: "out", FileId: "out"}}},
				{JobId: "j2", ProjectId: "p", InputFileIds: []string{"in"}, OutputFiles: []domain.OutputFile{{Name: "o", FileName: "other"}}},
			},
			files: []domain.File{
				{FileId: "in", ProjectId: "p", FileName: "in"},
				{FileId: "out", ProjectId: "p", FileName: "out", JobId: "j1"},
			},
		},
		then{
			jobs:   []string{"j1", "j2"},
			files:  []string{"in", "out"},
			report: integrity.Report{Passes: 1},
		},
	))

	t.Run("a job with a missing input is deleted, and then its outputs", theory(
		when{
			jobs: []domain.Job{
				{JobId: "j1", ProjectId: "p", InputFileIds: []string{"gone"}, OutputFiles: []domain.OutputFile{{Name: "o", FileName: "out", FileId: "out"}}},
			},
			files: []domain.File{
				{FileId: "out", ProjectId: "p", FileName: "out", JobId: "j1"},
				{FileId: "unrelated", ProjectId: "p", FileName: "unrelated"},
			},
		},
		then{
			jobs:   []string{},
			files:  []string{"unrelated"},
			report: integrity.Report{Passes: 2, DeletedJobs: 1, DeletedFiles: 1},
		},
	))

	t.Run("deletion cascades along the chain until the fixed point", theory(
		when{
			// j1 -> f1 -> j2 -> f2 -> j3 -> f3, and j1 lost its input.
			jobs: []domain.Job{
				{JobId: "j1", ProjectId: "p", InputFileIds: []string{"f0"}, OutputFiles: []domain.OutputFile{{Name: "o", FileName: "f1", FileId: "f1"}}},
				{JobId: "j2", ProjectId: "p", InputFileIds: []string{"f1"}, OutputFiles: []domain.OutputFile{{Name: "o", FileName: "f2", FileId: "f2"}}},
				{JobId: "j3", ProjectId: "p", InputFileIds: []string{"f2"}, OutputFiles: []domain.OutputFile{{Name: "o", FileName: "f3", FileId: "f3"}}},
			},
			files: []domain.File{
				{FileId: "f1", ProjectId: "p", FileName: "f1", JobId: "j1"},
				{FileId: "f2", ProjectId: "p", FileName: "f2", JobId: "j2"},
				{FileId: "f3", ProjectId: "p", FileName: "f3", JobId: "j3"},
			},
		},
		then{
			jobs:   []string{},
			files:  []string{},
			report: integrity.Report{Passes: 4, DeletedJobs: 3, DeletedFiles: 3},
		},
	))

	t.Run("a job whose output file has gone is deleted", theory(
		when{
			jobs: []domain.Job{
				{JobId: "j1", ProjectId: "p", OutputFiles: []domain.OutputFile{{Name: "o", FileName: "out", FileId: "gone"}}},
			},
		},
		then{
			jobs:   []string{},
			files:  []string{},
			report: integrity.Report{Passes: 2, DeletedJobs: 1},
		},
	))

	t.Run("a file whose job has gone is deleted", theory(
		when{
			files: []domain.File{{FileId: "f", ProjectId: "p", FileName: "f", JobId: "gone"}},
		},
		then{
			jobs:   []string{},
			files:  []string{},
			report: integrity.Report{Passes: 2, DeletedFiles: 1},
		},
	))

	t.Run("other projects are not touched", func(t *testing.T) {
		db := memory.New()
		seed(t, db,
			[]domain.Job{{JobId: "j", ProjectId: "q", InputFileIds: []string{"gone"}}},
			[]domain.File{{FileId: "f", ProjectId: "q", FileName: "f", JobId: "gone"}},
		)

		report := try.To(integrity.New(db.Jobs(), db.Files(), nil).Run(ctx, "p")).OrFatal(t)
		if report.Deleted() {
			t.Errorf("something is deleted: %+v", report)
		}
		jobs, files := remaining(t, db, "q")
		if len(jobs) != 1 || len(files) != 1 {
			t.Errorf("records in other project are deleted: %v, %v", jobs, files)
		}
	})

	t.Run("running twice is idempotent", func(t *testing.T) {
		db := memory.New()
		seed(t, db,
			[]domain.Job{{JobId: "j", ProjectId: "p", InputFileIds: []string{"gone"}}},
			nil,
		)
		testee := integrity.New(db.Jobs(), db.Files(), nil)
		try.To(testee.Run(ctx, "p")).OrFatal(t)

		second := try.To(testee.Run(ctx, "p")).OrFatal(t)
		if second != (integrity.Report{Passes: 1}) {
			t.Errorf("second run: %+v", second)
		}
	})
}

func TestCollector_ReadOrder(t *testing.T) {
	ctx := context.Background()
	reads := []string{}

	jobs := jobmock.NewJobInterface()
	jobs.Impl.Find = func(ctx context.Context, query domain.JobQuery) ([]domain.Job, error) {
		reads = append(reads, "jobs")
		return []domain.Job{}, nil
	}
	files := filemock.NewFileInterface()
	files.Impl.Find = func(ctx context.Context, projectId string) ([]domain.File, error) {
		reads = append(reads, "files")
		return []domain.File{}, nil
	}

	try.To(integrity.New(jobs, files, nil).Run(ctx, "p")).OrFatal(t)

	expected := []string{"jobs", "files", "files", "jobs"}
	if !cmp.SliceEq(reads, expected) {
		t.Errorf("read order: actual = %v, expected = %v", reads, expected)
	}
}

func TestCollector_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("store error aborts the run", func(t *testing.T) {
		expectedErr := errors.New("fake")
		jobs := jobmock.NewJobInterface()
		jobs.Impl.Find = func(ctx context.Context, query domain.JobQuery) ([]domain.Job, error) {
			return []domain.Job{{JobId: "j", ProjectId: "p", InputFileIds: []string{"gone"}}}, nil
		}
		jobs.Impl.Delete = func(ctx context.Context, jobIds ...string) (int, error) {
			return 0, expectedErr
		}
		files := filemock.NewFileInterface()
		files.Impl.Find = func(ctx context.Context, projectId string) ([]domain.File, error) {
			return []domain.File{}, nil
		}

		_, err := integrity.New(jobs, files, nil).Run(ctx, "p")
		if !errors.Is(err, expectedErr) {
			t.Errorf("unexpected error: %v", err)
		}
		if files.Calls.Delete.Times() != 0 {
			t.Error("it continues after error")
		}
	})

	t.Run("cancelled context stops before a pass", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		jobs := jobmock.NewJobInterface()
		files := filemock.NewFileInterface()
		_, err := integrity.New(jobs, files, nil).Run(cctx, "p")
		if !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
