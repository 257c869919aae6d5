package gateway_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/protocaas/protocaas/pkg/cmp"
	"github.com/protocaas/protocaas/pkg/domain"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	"github.com/protocaas/protocaas/pkg/domain/protocaas/db/memory"
	"github.com/protocaas/protocaas/pkg/gateway"
	"github.com/protocaas/protocaas/pkg/pubsub"
	"github.com/protocaas/protocaas/pkg/signature"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

var master = []byte("0123456789abcdef0123456789abcdef")

var now = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newGateway(db *memory.Database, options ...gateway.Option) *gateway.Gateway {
	options = append([]gateway.Option{gateway.WithClock(func() time.Time { return now })}, options...)
	return gateway.New(db, signature.New(signature.StaticKey(master)), options...)
}

func code(t *testing.T, computeResourceId string, at time.Time) string {
	t.Helper()
	key := try.To(signature.Derive(master, computeResourceId)).OrFatal(t)
	return try.To(key.RegistrationCode(computeResourceId, at)).OrFatal(t)
}

func TestUnfinishedJobs(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	for _, j := range []domain.Job{
		{JobId: "pending", ComputeResourceId: "cr-1", Status: domain.Pending, JobPrivateKey: "k1"},
		{JobId: "running", ComputeResourceId: "cr-1", Status: domain.Running, JobPrivateKey: "k2"},
		{JobId: "completed", ComputeResourceId: "cr-1", Status: domain.Completed},
		{JobId: "failed", ComputeResourceId: "cr-1", Status: domain.Failed},
		{JobId: "other", ComputeResourceId: "cr-2", Status: domain.Pending},
	} {
		try.To(0, db.Jobs().Insert(ctx, j)).OrFatal(t)
	}
	testee := newGateway(db)

	t.Run("it returns unfinished jobs with private keys, and records a heartbeat", func(t *testing.T) {
		jobs := try.To(testee.UnfinishedJobs(ctx, "cr-1", gateway.Node{NodeId: "node-1", NodeName: "worker"})).OrFatal(t)

		keys := map[string]string{}
		for _, j := range jobs {
			keys[j.JobId] = j.JobPrivateKey
		}
		if !cmp.MapEq(keys, map[string]string{"pending": "k1", "running": "k2"}) {
			t.Errorf("unexpected jobs: %v", keys)
		}

		nodes := try.To(db.ComputeResources().Nodes(ctx, "cr-1")).OrFatal(t)
		want := []domain.ComputeResourceNode{{
			ComputeResourceId: "cr-1", NodeId: "node-1", NodeName: "worker", TimestampLastActive: now,
		}}
		if !cmp.SliceEqWith(nodes, want, func(a, b domain.ComputeResourceNode) bool {
			return a.ComputeResourceId == b.ComputeResourceId &&
				a.NodeId == b.NodeId && a.NodeName == b.NodeName &&
				a.TimestampLastActive.Equal(b.TimestampLastActive)
		}) {
			t.Errorf("nodes:\n- actual: %+v\n- expected: %+v", nodes, want)
		}
	})

	t.Run("node id is required", func(t *testing.T) {
		_, err := testee.UnfinishedJobs(ctx, "cr-1", gateway.Node{})
		if !errors.Is(err, domerr.ErrInvalidArgument) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("a valid code binds the compute resource to the user", func(t *testing.T) {
		db := memory.New()
		testee := newGateway(db)

		try.To(0, testee.Register(ctx, "github|alice", "cr-1", code(t, "cr-1", now.Add(-300*time.Second)), "lab")).OrFatal(t)

		cr := try.To(db.ComputeResources().Get(ctx, "cr-1")).OrFatal(t)
		if cr.OwnerId != "github|alice" || cr.Name != "lab" || !cr.TimestampCreated.Equal(now) {
			t.Errorf("unexpected compute resource: %+v", cr)
		}

		// renaming by the owner
		try.To(0, testee.Register(ctx, "github|alice", "cr-1", code(t, "cr-1", now), "lab 2")).OrFatal(t)
		if cr := try.To(db.ComputeResources().Get(ctx, "cr-1")).OrFatal(t); cr.Name != "lab 2" {
			t.Errorf("name: %s", cr.Name)
		}
	})

	t.Run("another user gets Conflict", func(t *testing.T) {
		db := memory.New()
		testee := newGateway(db)
		try.To(0, testee.Register(ctx, "github|alice", "cr-1", code(t, "cr-1", now), "lab")).OrFatal(t)

		err := testee.Register(ctx, "github|bob", "cr-1", code(t, "cr-1", now), "mine")
		if !errors.Is(err, domerr.ErrConflict) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	theory := func(userId string, resourceCode string, options ...gateway.Option) func(*testing.T) {
		return func(t *testing.T) {
			db := memory.New()
			testee := newGateway(db, options...)
			err := testee.Register(ctx, userId, "cr-1", resourceCode, "lab")
			if !errors.Is(err, domerr.ErrUnauthorized) {
				t.Errorf("unexpected error: %v", err)
			}
			if _, err := db.ComputeResources().Get(ctx, "cr-1"); !errors.Is(err, domerr.ErrMissing) {
				t.Errorf("compute resource is registered: %v", err)
			}
		}
	}

	t.Run("expired code is Unauthorized", theory("github|alice", code(t, "cr-1", now.Add(-301*time.Second))))
	t.Run("code of other compute resource is Unauthorized", theory("github|alice", code(t, "cr-2", now)))
	t.Run("malformed code is Unauthorized", theory("github|alice", "not-a-code"))
	t.Run("anonymous user is Unauthorized", theory("", code(t, "cr-1", now)))
	t.Run("the window is configurable", theory(
		"github|alice", code(t, "cr-1", now.Add(-time.Minute)),
		gateway.WithRegistrationWindow(30*time.Second),
	))
}

func TestApps(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	try.To(0, db.ComputeResources().Register(ctx, "cr-1", "github|alice", "lab", now)).OrFatal(t)
	testee := newGateway(db)

	apps := []domain.App{
		{Name: "sorter", ExecutablePath: "/app/run", Container: "ghcr.io/lab/sorter:1.0"},
		{
			Name: "batch", ExecutablePath: "/app/run", Container: "ghcr.io/lab/batch:latest",
			AwsBatch: &domain.AwsBatchOpts{JobQueue: "q", JobDefinition: "d"},
		},
	}

	t.Run("the owner sets apps", func(t *testing.T) {
		try.To(0, testee.SetApps(ctx, "github|alice", "cr-1", apps)).OrFatal(t)
		got := try.To(testee.Apps(ctx, "cr-1")).OrFatal(t)
		if len(got) != 2 || got[0].Name != "sorter" || got[1].AwsBatch == nil {
			t.Errorf("unexpected apps: %+v", got)
		}
	})

	t.Run("others are forbidden", func(t *testing.T) {
		if err := testee.SetApps(ctx, "github|bob", "cr-1", apps); !errors.Is(err, domerr.ErrForbidden) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid apps are rejected", func(t *testing.T) {
		for name, invalid := range map[string][]domain.App{
			"broken image reference": {{Name: "a", ExecutablePath: "/run", Container: "Not A Reference!"}},
			"both of backends": {{
				Name: "a", ExecutablePath: "/run", Container: "repo/image",
				AwsBatch: &domain.AwsBatchOpts{}, Slurm: &domain.SlurmOpts{},
			}},
			"duplicated names": {
				{Name: "a", ExecutablePath: "/run"},
				{Name: "a", ExecutablePath: "/run"},
			},
		} {
			if err := testee.SetApps(ctx, "github|alice", "cr-1", invalid); !errors.Is(err, domerr.ErrInvalidArgument) {
				t.Errorf("%s: unexpected error: %v", name, err)
			}
		}
	})

	t.Run("apps of missing compute resources are NotFound", func(t *testing.T) {
		if _, err := testee.Apps(ctx, "cr-unknown"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestSetSpec(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	try.To(0, db.ComputeResources().Register(ctx, "cr-1", "github|alice", "lab", now)).OrFatal(t)
	testee := newGateway(db)

	spec := domain.ComputeResourceSpec{Apps: []domain.AppSpec{{
		Name:       "sorter",
		Processors: []domain.ProcessorSpec{{Name: "mountainsort"}},
	}}}
	try.To(0, testee.SetSpec(ctx, "cr-1", spec)).OrFatal(t)
	try.To(0, testee.SetSpec(ctx, "cr-1", domain.ComputeResourceSpec{})).OrFatal(t)

	cr := try.To(db.ComputeResources().Get(ctx, "cr-1")).OrFatal(t)
	if cr.Spec == nil || len(cr.Spec.Apps) != 0 {
		t.Errorf("spec should be overwritten wholesale: %+v", cr.Spec)
	}

	err := testee.SetSpec(ctx, "cr-1", domain.ComputeResourceSpec{Apps: []domain.AppSpec{{Name: ""}}})
	if !errors.Is(err, domerr.ErrInvalidArgument) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestJobsForOwner(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	try.To(0, db.ComputeResources().Register(ctx, "cr-1", "github|alice", "lab", now)).OrFatal(t)
	try.To(0, db.Jobs().Insert(ctx, domain.Job{
		JobId: "job-1", ComputeResourceId: "cr-1", Status: domain.Completed, JobPrivateKey: "secret",
	})).OrFatal(t)
	testee := newGateway(db)

	jobs := try.To(testee.JobsForOwner(ctx, "github|alice", "cr-1")).OrFatal(t)
	if len(jobs) != 1 || jobs[0].JobPrivateKey != "" {
		t.Errorf("unexpected jobs: %+v", jobs)
	}

	if _, err := testee.JobsForOwner(ctx, "github|bob", "cr-1"); !errors.Is(err, domerr.ErrForbidden) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSubscription(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	try.To(0, db.ComputeResources().Register(ctx, "cr-1", "github|alice", "lab", now)).OrFatal(t)

	t.Run("it tells the channel of the compute resource", func(t *testing.T) {
		testee := newGateway(db, gateway.WithSubscriptions(pubsub.NewPubnub(pubsub.PubnubConfig{
			PublishKey: "pub", SubscribeKey: "sub",
		})))
		s := try.To(testee.Subscription(ctx, "cr-1")).OrFatal(t)
		if s.Channel != "cr-1" || s.PubnubSubscribeKey != "sub" {
			t.Errorf("unexpected subscription: %+v", s)
		}
	})

	t.Run("unknown compute resources are NotFound", func(t *testing.T) {
		testee := newGateway(db, gateway.WithSubscriptions(pubsub.NewMemory(1)))
		if _, err := testee.Subscription(ctx, "cr-unknown"); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	try.To(0, db.ComputeResources().Register(ctx, "cr-1", "github|alice", "lab", now)).OrFatal(t)
	testee := newGateway(db)

	cr := try.To(testee.Get(ctx, "github|alice", "cr-1")).OrFatal(t)
	if cr.ComputeResourceId != "cr-1" || cr.Name != "lab" || cr.OwnerId != "github|alice" {
		t.Errorf("unexpected compute resource: %+v", cr)
	}

	for name, userId := range map[string]string{
		"other user": "github|bob",
		"anonymous":  "",
	} {
		t.Run(name+" is forbidden", func(t *testing.T) {
			if _, err := testee.Get(ctx, userId, "cr-1"); !errors.Is(err, domerr.ErrForbidden) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	if _, err := testee.Get(ctx, "github|alice", "cr-unknown"); !errors.Is(err, domerr.ErrMissing) {
		t.Errorf("unexpected error: %v", err)
	}
}
