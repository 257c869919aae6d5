// Package pubsub publishes job events to channels named by compute resource ids.
//
// Delivery is best effort. Compute resources poll unfinished jobs anyway,
// so a lost event delays a job, and never breaks it.
package pubsub

import (
	"context"
	"encoding/json"

	"github.com/protocaas/protocaas/pkg/domain"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

// Publisher sends events to a backend.
type Publisher interface {
	// Name of the backend, used as a metrics label.
	Name() string

	// Publish the event to the channel event.Channel().
	Publish(ctx context.Context, event domain.JobEvent) error

	// Subscription tells a compute resource how to listen to its channel.
	Subscription(computeResourceId string) Subscription
}

// Subscription is connection info for subscribers.
type Subscription struct {
	Backend string
	Channel string

	// User is the identity the subscriber should use, if the backend has such a concept.
	User string

	PubnubSubscribeKey string

	KafkaBrokers []string
	KafkaTopic   string
}

type message struct {
	Type              string `json:"type"`
	WorkspaceId       string `json:"workspaceId"`
	ProjectId         string `json:"projectId"`
	ComputeResourceId string `json:"computeResourceId"`
	JobId             string `json:"jobId"`
	Status            string `json:"status,omitempty"`
}

// Marshal an event into its wire form:
//
//	{"type": ..., "workspaceId": ..., "projectId": ..., "computeResourceId": ..., "jobId": ..., "status": ...}
//
// "status" is omitted when it is empty.
func Marshal(event domain.JobEvent) ([]byte, error) {
	b, err := json.Marshal(newMessage(event))
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return b, nil
}

func newMessage(event domain.JobEvent) message {
	return message{
		Type:              string(event.Type),
		WorkspaceId:       event.WorkspaceId,
		ProjectId:         event.ProjectId,
		ComputeResourceId: event.ComputeResourceId,
		JobId:             event.JobId,
		Status:            string(event.Status),
	}
}

// Unmarshal is the inverse of Marshal.
func Unmarshal(b []byte) (domain.JobEvent, error) {
	m := message{}
	if err := json.Unmarshal(b, &m); err != nil {
		return domain.JobEvent{}, xe.Wrap(err)
	}
	return domain.JobEvent{
		Type:              domain.JobEventType(m.Type),
		WorkspaceId:       m.WorkspaceId,
		ProjectId:         m.ProjectId,
		ComputeResourceId: m.ComputeResourceId,
		JobId:             m.JobId,
		Status:            domain.JobStatus(m.Status),
	}, nil
}
