package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/protocaas/protocaas/pkg/cmp"
	"github.com/protocaas/protocaas/pkg/conn/db/postgres/pool/testenv"
	"github.com/protocaas/protocaas/pkg/domain"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	kpgjob "github.com/protocaas/protocaas/pkg/domain/job/db/postgres"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

func newJob(jobId string, projectId string, cr string, status domain.JobStatus) domain.Job {
	return domain.Job{
		JobId:             jobId,
		JobPrivateKey:     "key-" + jobId,
		WorkspaceId:       "ws-1",
		ProjectId:         projectId,
		UserId:            "github|user",
		ComputeResourceId: cr,
		ProcessorName:     "sorter",
		InputFiles:        []domain.InputFile{{Name: "in", FileId: "file-in", FileName: "in.nwb"}},
		InputFileIds:      []string{"file-in"},
		InputParameters: []domain.InputParameter{
			{Name: "threshold", Value: 3.5},
			{Name: "token", Value: "s3cr3t", Secret: true},
		},
		OutputFiles: []domain.OutputFile{{Name: "out", FileName: "out.txt"}},
		ProcessorSpec: domain.ProcessorSpec{
			Name: "sorter",
			Parameters: []domain.ProcessorParameter{
				{Name: "threshold", Type: "float"},
				{Name: "token", Type: "str", Secret: true},
			},
		},
		Status:           status,
		TimestampCreated: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestJob(t *testing.T) {
	ctx := context.Background()
	poolBroaker := testenv.NewPoolBroaker(ctx, t)

	t.Run("inserted job can be got", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgjob.New(pool)

		job := newJob("job-1", "p1", "cr1", domain.Pending)
		if err := testee.Insert(ctx, job); err != nil {
			t.Fatal(err)
		}

		actual := try.To(testee.Get(ctx, "job-1")).OrFatal(t)
		if actual.JobPrivateKey != job.JobPrivateKey || actual.Status != domain.Pending {
			t.Errorf("unexpected job: %+v", actual)
		}
		if !cmp.SliceEq(actual.InputFileIds, job.InputFileIds) {
			t.Errorf("input file ids: %v", actual.InputFileIds)
		}
		if len(actual.InputParameters) != 2 || !actual.InputParameters[1].Secret {
			t.Errorf("input parameters: %+v", actual.InputParameters)
		}
		if p, ok := actual.ProcessorSpec.Parameter("token"); !ok || !p.Secret {
			t.Errorf("processor spec: %+v", actual.ProcessorSpec)
		}

		t.Run("inserting the same id conflicts", func(t *testing.T) {
			if err := testee.Insert(ctx, job); !errors.Is(err, domerr.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	})

	t.Run("getting missing job causes ErrMissing", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgjob.New(pool)

		if _, err := testee.Get(ctx, "no-such-job"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("Find filters by project, compute resource and status", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgjob.New(pool)

		for _, j := range []domain.Job{
			newJob("job-1", "p1", "cr1", domain.Pending),
			newJob("job-2", "p1", "cr1", domain.Completed),
			newJob("job-3", "p2", "cr1", domain.Running),
			newJob("job-4", "p2", "cr2", domain.Queued),
		} {
			if err := testee.Insert(ctx, j); err != nil {
				t.Fatal(err)
			}
		}

		ids := func(jobs []domain.Job) []string {
			r := []string{}
			for _, j := range jobs {
				r = append(r, j.JobId)
			}
			return r
		}

		theory := func(when domain.JobQuery, then []string) func(*testing.T) {
			return func(t *testing.T) {
				actual := try.To(testee.Find(ctx, when)).OrFatal(t)
				if !cmp.SliceContentEq(ids(actual), then) {
					t.Errorf("actual = %v, expected = %v", ids(actual), then)
				}
			}
		}

		t.Run("by project", theory(domain.JobQuery{ProjectId: "p1"}, []string{"job-1", "job-2"}))
		t.Run("unfinished of a compute resource", theory(
			domain.JobQuery{ComputeResourceId: "cr1", Statuses: domain.UnfinishedStatuses()},
			[]string{"job-1", "job-3"},
		))
		t.Run("everything", theory(domain.JobQuery{}, []string{"job-1", "job-2", "job-3", "job-4"}))
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)

		t.Run("it changes status when the current status is as expected", func(t *testing.T) {
			pool := poolBroaker.GetPool(ctx, t)
			testee := kpgjob.New(pool)
			if err := testee.Insert(ctx, newJob("job-1", "p1", "cr1", domain.Running)); err != nil {
				t.Fatal(err)
			}

			if err := testee.UpdateStatus(ctx, "job-1", domain.Running, domain.StatusChange{
				Status:      domain.Completed,
				At:          at,
				OutputFiles: []domain.OutputFile{{Name: "out", FileName: "out.txt", FileId: "file-out"}},
			}); err != nil {
				t.Fatal(err)
			}

			actual := try.To(testee.Get(ctx, "job-1")).OrFatal(t)
			if actual.Status != domain.Completed {
				t.Errorf("status = %s", actual.Status)
			}
			if actual.TimestampFinished == nil || !actual.TimestampFinished.Equal(at) {
				t.Errorf("timestampFinished = %v", actual.TimestampFinished)
			}
			if !cmp.SliceEq(actual.OutputFileIds(), []string{"file-out"}) {
				t.Errorf("output file ids = %v", actual.OutputFileIds())
			}
		})

		t.Run("it conflicts when the current status differs", func(t *testing.T) {
			pool := poolBroaker.GetPool(ctx, t)
			testee := kpgjob.New(pool)
			if err := testee.Insert(ctx, newJob("job-1", "p1", "cr1", domain.Failed)); err != nil {
				t.Fatal(err)
			}

			err := testee.UpdateStatus(ctx, "job-1", domain.Running, domain.StatusChange{Status: domain.Completed, At: at})
			if !errors.Is(err, domerr.ErrConflict) {
				t.Errorf("unexpected error: %v", err)
			}
			if actual := try.To(testee.Get(ctx, "job-1")).OrFatal(t); actual.Status != domain.Failed {
				t.Errorf("status is changed: %s", actual.Status)
			}
		})

		t.Run("it causes ErrMissing for missing job", func(t *testing.T) {
			pool := poolBroaker.GetPool(ctx, t)
			testee := kpgjob.New(pool)

			err := testee.UpdateStatus(ctx, "job-1", domain.Pending, domain.StatusChange{Status: domain.Queued, At: at})
			if !errors.Is(err, domerr.ErrMissing) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	})

	t.Run("Delete returns the number of deleted jobs", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgjob.New(pool)
		for _, j := range []domain.Job{
			newJob("job-1", "p1", "cr1", domain.Pending),
			newJob("job-2", "p1", "cr1", domain.Pending),
		} {
			if err := testee.Insert(ctx, j); err != nil {
				t.Fatal(err)
			}
		}

		n := try.To(testee.Delete(ctx, "job-1", "no-such-job")).OrFatal(t)
		if n != 1 {
			t.Errorf("deleted = %d", n)
		}
		if _, err := testee.Get(ctx, "job-1"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("job-1 is not deleted: %v", err)
		}
	})

	t.Run("SetConsoleOutput replaces console output", func(t *testing.T) {
		pool := poolBroaker.GetPool(ctx, t)
		testee := kpgjob.New(pool)
		if err := testee.Insert(ctx, newJob("job-1", "p1", "cr1", domain.Running)); err != nil {
			t.Fatal(err)
		}

		if err := testee.SetConsoleOutput(ctx, "job-1", "hello\n"); err != nil {
			t.Fatal(err)
		}
		if actual := try.To(testee.Get(ctx, "job-1")).OrFatal(t); actual.ConsoleOutput != "hello\n" {
			t.Errorf("console output = %q", actual.ConsoleOutput)
		}
		if err := testee.SetConsoleOutput(ctx, "job-2", "x"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
