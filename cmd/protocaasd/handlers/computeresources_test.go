package handlers_test

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/protocaas/protocaas/cmd/protocaasd/handlers"
	httptestutil "github.com/protocaas/protocaas/internal/testutils/http"
	apicr "github.com/protocaas/protocaas/pkg/api/types/computeresources"
	apijobs "github.com/protocaas/protocaas/pkg/api/types/jobs"
	"github.com/protocaas/protocaas/pkg/auth"
	"github.com/protocaas/protocaas/pkg/signature"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

func TestRegisterComputeResourceHandler(t *testing.T) {
	register := func(t *testing.T, env *env, userName string, code string) error {
		c, _ := httptestutil.Post(
			env.e, "/api/gui/compute_resources/register",
			strings.NewReader(fmt.Sprintf(`{"computeResourceId": "cr-new", "resourceCode": %q, "name": "gpu box"}`, code)),
			httptestutil.ContentType("application/json"), user(userName),
		)
		return env.as(handlers.RegisterComputeResourceHandler(env.gw))(c)
	}
	key := try.To(signature.Derive(master, "cr-new")).OrFatal(t)

	t.Run("it registers with a fresh code", func(t *testing.T) {
		env := setup(t)
		code := try.To(key.RegistrationCode("cr-new", now.Add(-10*time.Second))).OrFatal(t)
		if err := register(t, env, "alice", code); err != nil {
			t.Fatal(err)
		}
		cr := try.To(env.db.ComputeResources().Get(context.Background(), "cr-new")).OrFatal(t)
		if cr.OwnerId != "github|alice" || cr.Name != "gpu box" {
			t.Errorf("compute resource: %+v", cr)
		}
	})

	t.Run("a stale code is unauthorized", func(t *testing.T) {
		env := setup(t)
		code := try.To(key.RegistrationCode("cr-new", now.Add(-time.Hour))).OrFatal(t)
		if actual := statusOf(t, register(t, env, "alice", code)); actual != http.StatusUnauthorized {
			t.Errorf("status: %d", actual)
		}
	})

	t.Run("anonymous is unauthorized", func(t *testing.T) {
		env := setup(t)
		c, _ := httptestutil.Post(
			env.e, "/api/gui/compute_resources/register",
			strings.NewReader(`{"computeResourceId": "cr-new", "resourceCode": "x", "name": "n"}`),
		)
		err := env.as(handlers.RegisterComputeResourceHandler(env.gw))(c)
		if actual := statusOf(t, err); actual != http.StatusUnauthorized {
			t.Errorf("status: %d", actual)
		}
	})
}

func TestGetComputeResourceHandler(t *testing.T) {
	env := setup(t)

	c, resp := httptestutil.Get(env.e, "/api/gui/compute_resources/cr-1", user("owner"))
	params(c, "computeResourceId", "cr-1")
	if err := env.as(handlers.GetComputeResourceHandler(env.gw, "computeResourceId"))(c); err != nil {
		t.Fatal(err)
	}
	got := body[apicr.GetComputeResourceResponse](t, resp)
	if got.ComputeResource.ComputeResourceId != "cr-1" || got.ComputeResource.Name != "lab" || got.ComputeResource.Spec != nil {
		t.Errorf("response: %+v", got)
	}

	c, _ = httptestutil.Get(env.e, "/api/gui/compute_resources/cr-1", user("editor"))
	params(c, "computeResourceId", "cr-1")
	err := env.as(handlers.GetComputeResourceHandler(env.gw, "computeResourceId"))(c)
	if actual := statusOf(t, err); actual != http.StatusForbidden {
		t.Errorf("status: %d", actual)
	}
}

func TestAppsHandlers(t *testing.T) {
	env := setup(t)

	c, _ := httptestutil.Put(
		env.e, "/api/gui/compute_resources/cr-1/apps",
		strings.NewReader(`{"apps": [{"name": "sorter", "executablePath": "/app/sort", "container": "ghcr.io/lab/sorter:1.0"}]}`),
		httptestutil.ContentType("application/json"), user("owner"),
	)
	params(c, "computeResourceId", "cr-1")
	if err := env.as(handlers.SetAppsHandler(env.gw, "computeResourceId"))(c); err != nil {
		t.Fatal(err)
	}

	c, resp := httptestutil.Get(env.e, "/api/compute_resource/compute_resources/cr-1/apps")
	params(c, "computeResourceId", "cr-1")
	if err := handlers.AppsHandler(env.gw, "computeResourceId")(c); err != nil {
		t.Fatal(err)
	}
	got := body[apicr.GetAppsResponse](t, resp)
	if len(got.Apps) != 1 || got.Apps[0].Container != "ghcr.io/lab/sorter:1.0" {
		t.Errorf("apps: %+v", got)
	}

	t.Run("broken container reference is bad request", func(t *testing.T) {
		c, _ := httptestutil.Put(
			env.e, "/api/gui/compute_resources/cr-1/apps",
			strings.NewReader(`{"apps": [{"name": "sorter", "executablePath": "/app/sort", "container": "UPPER CASE:::"}]}`),
			httptestutil.ContentType("application/json"), user("owner"),
		)
		params(c, "computeResourceId", "cr-1")
		err := env.as(handlers.SetAppsHandler(env.gw, "computeResourceId"))(c)
		if actual := statusOf(t, err); actual != http.StatusBadRequest {
			t.Errorf("status: %d", actual)
		}
	})

	t.Run("only the owner can set apps", func(t *testing.T) {
		c, _ := httptestutil.Put(
			env.e, "/api/gui/compute_resources/cr-1/apps", strings.NewReader(`{"apps": []}`),
			httptestutil.ContentType("application/json"), user("editor"),
		)
		params(c, "computeResourceId", "cr-1")
		err := env.as(handlers.SetAppsHandler(env.gw, "computeResourceId"))(c)
		if actual := statusOf(t, err); actual != http.StatusForbidden {
			t.Errorf("status: %d", actual)
		}
	})
}

func TestUnfinishedJobsHandler(t *testing.T) {
	env := setup(t)
	jobId := createJob(t, env, "editor")

	t.Run("it responds unfinished jobs with private keys, and records the node", func(t *testing.T) {
		c, resp := httptestutil.Get(
			env.e, "/api/compute_resource/compute_resources/cr-1/unfinished_jobs",
			httptestutil.WithHeader(auth.HeaderComputeResourceNodeId, "node-1"),
			httptestutil.WithHeader(auth.HeaderComputeResourceNodeName, "worker-1"),
		)
		params(c, "computeResourceId", "cr-1")
		if err := handlers.UnfinishedJobsHandler(env.gw, "computeResourceId")(c); err != nil {
			t.Fatal(err)
		}
		got := body[apijobs.GetJobsResponse](t, resp)
		if len(got.Jobs) != 1 || got.Jobs[0].JobId != jobId || got.Jobs[0].JobPrivateKey == "" {
			t.Errorf("jobs: %+v", got.Jobs)
		}

		nodes := try.To(env.db.ComputeResources().Nodes(context.Background(), "cr-1")).OrFatal(t)
		if len(nodes) != 1 || nodes[0].NodeId != "node-1" || nodes[0].NodeName != "worker-1" || !nodes[0].TimestampLastActive.Equal(now) {
			t.Errorf("nodes: %+v", nodes)
		}
	})

	t.Run("node id is required", func(t *testing.T) {
		c, _ := httptestutil.Get(env.e, "/api/compute_resource/compute_resources/cr-1/unfinished_jobs")
		params(c, "computeResourceId", "cr-1")
		err := handlers.UnfinishedJobsHandler(env.gw, "computeResourceId")(c)
		if actual := statusOf(t, err); actual != http.StatusBadRequest {
			t.Errorf("status: %d", actual)
		}
	})
}

func TestJobsForOwnerHandler(t *testing.T) {
	env := setup(t)
	jobId := createJob(t, env, "editor")

	c, resp := httptestutil.Get(env.e, "/api/gui/compute_resources/cr-1/jobs", user("owner"))
	params(c, "computeResourceId", "cr-1")
	if err := env.as(handlers.JobsForOwnerHandler(env.gw, "computeResourceId"))(c); err != nil {
		t.Fatal(err)
	}
	got := body[apijobs.GetJobsResponse](t, resp)
	if len(got.Jobs) != 1 || got.Jobs[0].JobId != jobId || got.Jobs[0].JobPrivateKey != "" {
		t.Errorf("jobs: %+v", got.Jobs)
	}
}

func TestSubscriptionHandler(t *testing.T) {
	env := setup(t)

	c, resp := httptestutil.Get(env.e, "/api/compute_resource/compute_resources/cr-1/pubsub_subscription")
	params(c, "computeResourceId", "cr-1")
	if err := handlers.SubscriptionHandler(env.gw, "computeResourceId")(c); err != nil {
		t.Fatal(err)
	}
	got := body[apicr.GetSubscriptionResponse](t, resp)
	if !got.Success || got.Subscription.PubnubSubscribeKey != "sub" || got.Subscription.PubnubChannel != "cr-1" {
		t.Errorf("response: %+v", got)
	}
}

func TestSetSpecHandler(t *testing.T) {
	env := setup(t)

	c, _ := httptestutil.Put(
		env.e, "/api/compute_resource/compute_resources/cr-1/spec",
		strings.NewReader(`{"spec": {"apps": [{"name": "sorter", "help": "", "processors": [
			{"name": "spikesort", "help": "", "inputs": [], "outputs": [], "parameters": [], "attributes": [], "tags": [{"tag": "ephys"}]}
		]}]}}`),
		httptestutil.ContentType("application/json"),
	)
	params(c, "computeResourceId", "cr-1")
	if err := handlers.SetSpecHandler(env.gw, "computeResourceId")(c); err != nil {
		t.Fatal(err)
	}
	cr := try.To(env.db.ComputeResources().Get(context.Background(), "cr-1")).OrFatal(t)
	if cr.Spec == nil || len(cr.Spec.Apps) != 1 || cr.Spec.Apps[0].Processors[0].Tags[0] != "ephys" {
		t.Errorf("spec: %+v", cr.Spec)
	}

	c, _ = httptestutil.Put(
		env.e, "/api/compute_resource/compute_resources/cr-1/spec",
		strings.NewReader(`{"spec": {"apps": [{"name": "", "help": "", "processors": []}]}}`),
		httptestutil.ContentType("application/json"),
	)
	params(c, "computeResourceId", "cr-1")
	err := handlers.SetSpecHandler(env.gw, "computeResourceId")(c)
	if actual := statusOf(t, err); actual != http.StatusBadRequest {
		t.Errorf("status: %d", actual)
	}
}
