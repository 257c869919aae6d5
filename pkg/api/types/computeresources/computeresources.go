package computeresources

import (
	"github.com/protocaas/protocaas/pkg/api/types/jobs"
	"github.com/protocaas/protocaas/pkg/utils/unixtime"
)

type AwsBatchOpts struct {
	JobQueue      string `json:"jobQueue"`
	JobDefinition string `json:"jobDefinition"`
}

type SlurmOpts struct {
	Partition   string `json:"partition,omitempty"`
	Time        string `json:"time,omitempty"`
	CpusPerTask int    `json:"cpusPerTask,omitempty"`
	OtherOpts   string `json:"otherOpts,omitempty"`
}

type App struct {
	Name           string        `json:"name"`
	ExecutablePath string        `json:"executablePath"`
	Container      string        `json:"container,omitempty"`
	AwsBatch       *AwsBatchOpts `json:"awsBatch,omitempty"`
	Slurm          *SlurmOpts    `json:"slurm,omitempty"`
}

type AppSpec struct {
	Name       string               `json:"name"`
	Help       string               `json:"help"`
	Processors []jobs.ProcessorSpec `json:"processors"`
}

type Spec struct {
	Apps []AppSpec `json:"apps"`
}

type ComputeResource struct {
	ComputeResourceId string           `json:"computeResourceId"`
	OwnerId           string           `json:"ownerId"`
	Name              string           `json:"name"`
	TimestampCreated  unixtime.Seconds `json:"timestampCreated"`
	Apps              []App            `json:"apps"`
	Spec              *Spec            `json:"spec"`
}

type GetComputeResourceResponse struct {
	ComputeResource ComputeResource `json:"computeResource"`
	Success         bool            `json:"success"`
}

type RegisterRequest struct {
	ComputeResourceId string `json:"computeResourceId"`
	ResourceCode      string `json:"resourceCode"`
	Name              string `json:"name"`
}

type GetAppsResponse struct {
	Apps    []App `json:"apps"`
	Success bool  `json:"success"`
}

type SetAppsRequest struct {
	Apps []App `json:"apps"`
}

type SetSpecRequest struct {
	Spec Spec `json:"spec"`
}

// Subscription tells the compute resource where to listen to job events.
//
// pubnub* fields are set for the pubnub backend, and kafka* fields are for kafka.
type Subscription struct {
	Backend            string   `json:"backend"`
	PubnubSubscribeKey string   `json:"pubnubSubscribeKey,omitempty"`
	PubnubChannel      string   `json:"pubnubChannel,omitempty"`
	PubnubUser         string   `json:"pubnubUser,omitempty"`
	KafkaBrokers       []string `json:"kafkaBrokers,omitempty"`
	KafkaTopic         string   `json:"kafkaTopic,omitempty"`
	Channel            string   `json:"channel"`
}

type GetSubscriptionResponse struct {
	Subscription Subscription `json:"subscription"`
	Success      bool         `json:"success"`
}
