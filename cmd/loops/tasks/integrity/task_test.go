package integrity_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/protocaas/protocaas/cmd/loops/tasks/integrity"
	"github.com/protocaas/protocaas/pkg/cmp"
	wsmock "github.com/protocaas/protocaas/pkg/domain/workspace/db/mock"
	kintegrity "github.com/protocaas/protocaas/pkg/integrity"
)

type collector struct {
	reports map[string]kintegrity.Report
	errs    map[string]error
	runs    []string
}

func (c *collector) Run(_ context.Context, projectId string) (kintegrity.Report, error) {
	c.runs = append(c.runs, projectId)
	return c.reports[projectId], c.errs[projectId]
}

func TestTask(t *testing.T) {
	ctx := context.Background()

	t.Run("it sweeps projects one by one, and lists projects again after the round", func(t *testing.T) {
		projects := wsmock.NewWorkspaceInterface()
		projects.Impl.ProjectIds = func(ctx context.Context) ([]string, error) {
			return []string{"pj-1", "pj-2"}, nil
		}
		col := &collector{reports: map[string]kintegrity.Report{
			"pj-2": {Passes: 2, DeletedJobs: 1, DeletedFiles: 3},
		}}
		logs := &bytes.Buffer{}
		testee := integrity.Task(log.New(logs, "", 0), projects, col)

		cursor := integrity.Seed()
		cursor, more, err := testee(ctx, cursor)
		if err != nil || !more || !cmp.SliceEq(cursor.Remaining, []string{"pj-2"}) {
			t.Fatalf("step 1: %+v, %v, %v", cursor, more, err)
		}
		cursor, more, err = testee(ctx, cursor)
		if err != nil || more || len(cursor.Remaining) != 0 {
			t.Fatalf("step 2: %+v, %v, %v", cursor, more, err)
		}
		if len(projects.Calls.ProjectIds) != 1 {
			t.Errorf("projects are listed %d times in a round", len(projects.Calls.ProjectIds))
		}

		if _, _, err := testee(ctx, cursor); err != nil {
			t.Fatal(err)
		}
		if len(projects.Calls.ProjectIds) != 2 {
			t.Errorf("projects are not listed for the next round")
		}
		if !cmp.SliceEq(col.runs, []string{"pj-1", "pj-2", "pj-1"}) {
			t.Errorf("runs: %v", col.runs)
		}
		if !strings.Contains(logs.String(), "project pj-2: 1 jobs and 3 files") {
			t.Errorf("logs: %s", logs.String())
		}
		if strings.Contains(logs.String(), "pj-1") {
			t.Errorf("nothing should be logged for clean projects: %s", logs.String())
		}
	})

	t.Run("no projects, no backlog", func(t *testing.T) {
		projects := wsmock.NewWorkspaceInterface()
		projects.Impl.ProjectIds = func(ctx context.Context) ([]string, error) {
			return []string{}, nil
		}
		col := &collector{}
		cursor, more, err := integrity.Task(log.Default(), projects, col)(ctx, integrity.Seed())
		if err != nil || more || len(cursor.Remaining) != 0 || len(col.runs) != 0 {
			t.Errorf("%+v, %v, %v, %v", cursor, more, err, col.runs)
		}
	})

	t.Run("a failed project is skipped with the error", func(t *testing.T) {
		errBroken := errors.New("broken")
		projects := wsmock.NewWorkspaceInterface()
		col := &collector{errs: map[string]error{"pj-1": errBroken}}

		cursor, more, err := integrity.Task(log.Default(), projects, col)(
			ctx, integrity.Cursor{Remaining: []string{"pj-1", "pj-2"}},
		)
		if !errors.Is(err, errBroken) {
			t.Errorf("unexpected error: %v", err)
		}
		if !more || !cmp.SliceEq(cursor.Remaining, []string{"pj-2"}) {
			t.Errorf("%+v, %v", cursor, more)
		}
	})

	t.Run("listing failure keeps the cursor", func(t *testing.T) {
		errBroken := errors.New("broken")
		projects := wsmock.NewWorkspaceInterface()
		projects.Impl.ProjectIds = func(ctx context.Context) ([]string, error) {
			return nil, errBroken
		}
		_, more, err := integrity.Task(log.Default(), projects, &collector{})(ctx, integrity.Seed())
		if !errors.Is(err, errBroken) || more {
			t.Errorf("%v, %v", more, err)
		}
	})
}
