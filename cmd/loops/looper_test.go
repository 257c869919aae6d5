package main

import (
	"bytes"
	"context"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/protocaas/protocaas/cmd/loops/recurring"
	"github.com/protocaas/protocaas/pkg/domain"
	"github.com/protocaas/protocaas/pkg/domain/protocaas/db/memory"
	"github.com/protocaas/protocaas/pkg/metrics"
)

func TestAsLoopType(t *testing.T) {
	for _, s := range []string{"integrity", "housekeeping"} {
		if lt, err := AsLoopType(s); err != nil || lt.String() != s {
			t.Errorf("%s: %v, %v", s, lt, err)
		}
	}
	if _, err := AsLoopType("gc"); err == nil {
		t.Error("unknown loop type should be rejected")
	}
}

func TestStartLoop(t *testing.T) {
	ctx := context.Background()

	t.Run("integrity loop with backlog policy sweeps every project once", func(t *testing.T) {
		db := memory.New()
		db.PutWorkspace(domain.Workspace{WorkspaceId: "ws-1", OwnerId: "github|owner"})
		db.PutProject(domain.Project{ProjectId: "pj-1", WorkspaceId: "ws-1"})
		db.PutProject(domain.Project{ProjectId: "pj-2", WorkspaceId: "ws-1"})
		logs := &bytes.Buffer{}

		err := StartLoop(ctx, log.New(logs, "", 0), db, metrics.Nop{}, LoopManifest{
			Type:   Integrity,
			Policy: recurring.UntilError(recurring.Backlog()),
		})
		if err != nil {
			t.Fatal(err)
		}
		if n := strings.Count(logs.String(), "step start"); n != 2 {
			t.Errorf("steps: %d\n%s", n, logs.String())
		}
	})

	t.Run("housekeeping loop with backlog policy prunes once", func(t *testing.T) {
		db := memory.New()
		logs := &bytes.Buffer{}
		err := StartLoop(ctx, log.New(logs, "", 0), db, metrics.Nop{}, LoopManifest{
			Type:    Housekeeping,
			Policy:  recurring.UntilError(recurring.Backlog()),
			NodeTTL: time.Hour,
		})
		if err != nil {
			t.Fatal(err)
		}
		if n := strings.Count(logs.String(), "step start"); n != 1 {
			t.Errorf("steps: %d\n%s", n, logs.String())
		}
	})
}
