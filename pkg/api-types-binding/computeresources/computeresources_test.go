package computeresources_test

import (
	"encoding/json"
	"testing"
	"time"

	bindcr "github.com/protocaas/protocaas/pkg/api-types-binding/computeresources"
	apicr "github.com/protocaas/protocaas/pkg/api/types/computeresources"
	"github.com/protocaas/protocaas/pkg/cmp"
	"github.com/protocaas/protocaas/pkg/domain"
	"github.com/protocaas/protocaas/pkg/pubsub"
	"github.com/protocaas/protocaas/pkg/utils/try"
)

func TestApps(t *testing.T) {
	apps := []apicr.App{}
	try.To(0, json.Unmarshal([]byte(`[
		{"name": "sorter", "executablePath": "/app/sort", "container": "ghcr.io/lab/sorter:1.0",
		 "awsBatch": {"jobQueue": "q", "jobDefinition": "d"}},
		{"name": "local", "executablePath": "/app/local", "slurm": {"partition": "gpu", "cpusPerTask": 4}}
	]`), &apps)).OrFatal(t)

	parsed := []domain.App{}
	for _, a := range apps {
		parsed = append(parsed, bindcr.ParseApp(a))
	}
	if b := parsed[0].AwsBatch; b == nil || b.JobQueue != "q" || b.JobDefinition != "d" || parsed[0].Slurm != nil {
		t.Errorf("sorter: %+v", parsed[0])
	}
	if s := parsed[1].Slurm; s == nil || s.Partition != "gpu" || s.CpusPerTask != 4 || parsed[1].AwsBatch != nil {
		t.Errorf("local: %+v", parsed[1])
	}
	for _, a := range parsed {
		if err := a.Validate(); err != nil {
			t.Errorf("%s: %v", a.Name, err)
		}
	}

	composed := bindcr.ComposeApp(parsed[1])
	b := try.To(json.Marshal(composed)).OrFatal(t)
	if string(b) != `{"name":"local","executablePath":"/app/local","slurm":{"partition":"gpu","cpusPerTask":4}}` {
		t.Errorf("composed: %s", b)
	}
}

func TestCompose(t *testing.T) {
	t.Run("spec is null until published", func(t *testing.T) {
		b := try.To(json.Marshal(bindcr.Compose(domain.ComputeResource{
			ComputeResourceId: "cr-1", OwnerId: "github|alice", Name: "lab",
			TimestampCreated: time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		}))).OrFatal(t)
		body := map[string]any{}
		try.To(0, json.Unmarshal(b, &body)).OrFatal(t)
		if v, ok := body["spec"]; !ok || v != nil {
			t.Errorf("spec: %s", b)
		}
		if apps, ok := body["apps"].([]any); !ok || len(apps) != 0 {
			t.Errorf("apps: %s", b)
		}
	})

	t.Run("spec is composed with processors", func(t *testing.T) {
		actual := bindcr.Compose(domain.ComputeResource{
			ComputeResourceId: "cr-1",
			Spec: &domain.ComputeResourceSpec{Apps: []domain.AppSpec{{
				Name: "sorter", Processors: []domain.ProcessorSpec{{Name: "spikesort", Tags: []string{"ephys"}}},
			}}},
		})
		if actual.Spec == nil || len(actual.Spec.Apps) != 1 || actual.Spec.Apps[0].Processors[0].Tags[0].Tag != "ephys" {
			t.Errorf("spec: %+v", actual.Spec)
		}
		roundtrip := bindcr.ParseSpec(*actual.Spec)
		if roundtrip.Apps[0].Processors[0].Name != "spikesort" {
			t.Errorf("parsed spec: %+v", roundtrip)
		}
	})
}

func TestComposeSubscription(t *testing.T) {
	t.Run("pubnub", func(t *testing.T) {
		p := pubsub.NewPubnub(pubsub.PubnubConfig{PublishKey: "pub", SubscribeKey: "sub", UUID: "server"})
		defer p.Close()
		actual := bindcr.ComposeSubscription(p.Subscription("cr-1"))
		if actual.PubnubSubscribeKey != "sub" || actual.PubnubChannel != "cr-1" || actual.Channel != "cr-1" {
			t.Errorf("unexpected subscription: %+v", actual)
		}
	})

	t.Run("kafka", func(t *testing.T) {
		actual := bindcr.ComposeSubscription(pubsub.Subscription{
			Backend: "kafka", Channel: "cr-1", KafkaBrokers: []string{"k:9092"}, KafkaTopic: "jobs",
		})
		if actual.PubnubSubscribeKey != "" || actual.KafkaTopic != "jobs" || !cmp.SliceEq(actual.KafkaBrokers, []string{"k:9092"}) {
			t.Errorf("unexpected subscription: %+v", actual)
		}
	})
}
