// Package gateway serves compute resources: polling, registration and their catalogs.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/protocaas/protocaas/pkg/domain"
	kcr "github.com/protocaas/protocaas/pkg/domain/computeresource/db"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	kjob "github.com/protocaas/protocaas/pkg/domain/job/db"
	dbInterface "github.com/protocaas/protocaas/pkg/domain/protocaas/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
	"github.com/protocaas/protocaas/pkg/metrics"
	"github.com/protocaas/protocaas/pkg/pubsub"
	"github.com/protocaas/protocaas/pkg/signature"
)

// DefaultRegistrationWindow is how far a registration code can be from now.
const DefaultRegistrationWindow = 300 * time.Second

// Subscriptions tells connection info of pubsub channels.
//
// pubsub.Publisher implements this.
type Subscriptions interface {
	Subscription(computeResourceId string) pubsub.Subscription
}

// Node identifies a polling daemon of a compute resource.
type Node struct {
	NodeId   string
	NodeName string
}

type Gateway struct {
	computeResources kcr.Interface
	jobs             kjob.Interface
	signer           *signature.Signer
	subscriptions    Subscriptions
	metrics          metrics.Metrics

	registrationWindow time.Duration
	now                func() time.Time
}

type Option func(*Gateway) *Gateway

func WithRegistrationWindow(d time.Duration) Option {
	return func(g *Gateway) *Gateway {
		g.registrationWindow = d
		return g
	}
}

func WithSubscriptions(s Subscriptions) Option {
	return func(g *Gateway) *Gateway {
		g.subscriptions = s
		return g
	}
}

func WithMetrics(m metrics.Metrics) Option {
	return func(g *Gateway) *Gateway {
		g.metrics = m
		return g
	}
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) *Gateway {
		g.now = now
		return g
	}
}

func New(db dbInterface.Database, signer *signature.Signer, options ...Option) *Gateway {
	g := &Gateway{
		computeResources:   db.ComputeResources(),
		jobs:               db.Jobs(),
		signer:             signer,
		metrics:            metrics.Nop{},
		registrationWindow: DefaultRegistrationWindow,
		now:                time.Now,
	}
	for _, opt := range options {
		g = opt(g)
	}
	return g
}

var unfinished = []domain.JobStatus{domain.Pending, domain.Queued, domain.Starting, domain.Running}

// UnfinishedJobs records a heartbeat of the node, and returns jobs to be processed by the compute resource.
//
// Jobs are returned with their private keys.
//
// Returns
//
// - error: ErrInvalidArgument when node id is empty.
func (g *Gateway) UnfinishedJobs(ctx context.Context, computeResourceId string, node Node) ([]domain.Job, error) {
	if err := g.Heartbeat(ctx, computeResourceId, node); err != nil {
		return nil, err
	}
	jobs, err := g.jobs.Find(ctx, domain.JobQuery{
		ComputeResourceId: computeResourceId,
		Statuses:          unfinished,
	})
	if err != nil {
		return nil, xe.Wrap(err)
	}
	return jobs, nil
}

// Heartbeat records the node is active now.
func (g *Gateway) Heartbeat(ctx context.Context, computeResourceId string, node Node) error {
	if node.NodeId == "" {
		return xe.Wrap(fmt.Errorf("%w: node id is required", domerr.ErrInvalidArgument))
	}
	if err := g.computeResources.Heartbeat(ctx, domain.ComputeResourceNode{
		ComputeResourceId:   computeResourceId,
		NodeId:              node.NodeId,
		NodeName:            node.NodeName,
		TimestampLastActive: g.now(),
	}); err != nil {
		return xe.Wrap(err)
	}
	g.metrics.IncHeartbeats()
	return nil
}

// Register binds the compute resource to the user.
//
// The resource code is "{unix time}-{signature of the unix time}", signed by the compute resource.
//
// Returns
//
// - error:
// ErrUnauthorized when the user is anonymous, or the code is not valid now.
// ErrConflict when the compute resource is owned by another user.
func (g *Gateway) Register(ctx context.Context, userId string, computeResourceId string, resourceCode string, name string) error {
	if userId == "" {
		return xe.Wrap(fmt.Errorf("%w: login required", domerr.ErrUnauthorized))
	}
	if computeResourceId == "" {
		return xe.Wrap(fmt.Errorf("%w: compute resource id is required", domerr.ErrInvalidArgument))
	}
	now := g.now()
	if err := g.signer.VerifyRegistrationCode(
		ctx, computeResourceId, resourceCode, now, g.registrationWindow,
	); errors.Is(err, signature.ErrInvalidSignature) {
		return xe.Wrap(fmt.Errorf("%w: %w", domerr.ErrUnauthorized, err))
	} else if err != nil {
		return xe.Wrap(err)
	}
	if err := g.computeResources.Register(ctx, computeResourceId, userId, name, now); err != nil {
		return xe.Wrap(err)
	}
	return nil
}

// SetSpec replaces the spec of the compute resource.
func (g *Gateway) SetSpec(ctx context.Context, computeResourceId string, spec domain.ComputeResourceSpec) error {
	if err := spec.Validate(); err != nil {
		return xe.Wrap(err)
	}
	return xe.Wrap(g.computeResources.SetSpec(ctx, computeResourceId, spec))
}

// Apps of the compute resource.
func (g *Gateway) Apps(ctx context.Context, computeResourceId string) ([]domain.App, error) {
	cr, err := g.computeResources.Get(ctx, computeResourceId)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	if cr.Apps == nil {
		return []domain.App{}, nil
	}
	return cr.Apps, nil
}

// SetApps replaces apps of the compute resource. Only the owner can do this.
func (g *Gateway) SetApps(ctx context.Context, userId string, computeResourceId string, apps []domain.App) error {
	if _, err := g.owned(ctx, userId, computeResourceId); err != nil {
		return err
	}
	names := map[string]struct{}{}
	for _, a := range apps {
		if err := a.Validate(); err != nil {
			return xe.Wrap(err)
		}
		if _, ok := names[a.Name]; ok {
			return xe.Wrap(fmt.Errorf("%w: duplicated app name %s", domerr.ErrInvalidArgument, a.Name))
		}
		names[a.Name] = struct{}{}
	}
	return xe.Wrap(g.computeResources.SetApps(ctx, computeResourceId, apps))
}

// Get returns the compute resource. Only the owner can do this.
func (g *Gateway) Get(ctx context.Context, userId string, computeResourceId string) (domain.ComputeResource, error) {
	return g.owned(ctx, userId, computeResourceId)
}

// JobsForOwner returns all jobs of the compute resource, redacted. Only the owner can do this.
func (g *Gateway) JobsForOwner(ctx context.Context, userId string, computeResourceId string) ([]domain.Job, error) {
	if _, err := g.owned(ctx, userId, computeResourceId); err != nil {
		return nil, err
	}
	jobs, err := g.jobs.Find(ctx, domain.JobQuery{ComputeResourceId: computeResourceId})
	if err != nil {
		return nil, xe.Wrap(err)
	}
	for i := range jobs {
		jobs[i] = jobs[i].Redacted()
	}
	return jobs, nil
}

// Subscription returns how the compute resource listens to its job events.
func (g *Gateway) Subscription(ctx context.Context, computeResourceId string) (pubsub.Subscription, error) {
	if _, err := g.computeResources.Get(ctx, computeResourceId); err != nil {
		return pubsub.Subscription{}, xe.Wrap(err)
	}
	if g.subscriptions == nil {
		return pubsub.Subscription{}, xe.Wrap(fmt.Errorf("%w: pubsub is not configured", domerr.ErrMissing))
	}
	return g.subscriptions.Subscription(computeResourceId), nil
}

func (g *Gateway) owned(ctx context.Context, userId string, computeResourceId string) (domain.ComputeResource, error) {
	cr, err := g.computeResources.Get(ctx, computeResourceId)
	if err != nil {
		return domain.ComputeResource{}, xe.Wrap(err)
	}
	if userId == "" || cr.OwnerId != userId {
		return domain.ComputeResource{}, xe.Wrap(fmt.Errorf(
			"%w: compute resource %s is not owned by the user", domerr.ErrForbidden, computeResourceId,
		))
	}
	return cr, nil
}
