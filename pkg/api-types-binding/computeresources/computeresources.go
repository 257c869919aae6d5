package computeresources

import (
	bindjobs "github.com/protocaas/protocaas/pkg/api-types-binding/jobs"
	apicr "github.com/protocaas/protocaas/pkg/api/types/computeresources"
	"github.com/protocaas/protocaas/pkg/domain"
	"github.com/protocaas/protocaas/pkg/pubsub"
	"github.com/protocaas/protocaas/pkg/utils"
	"github.com/protocaas/protocaas/pkg/utils/unixtime"
)

func ComposeApp(a domain.App) apicr.App {
	app := apicr.App{
		Name:           a.Name,
		ExecutablePath: a.ExecutablePath,
		Container:      a.Container,
	}
	if b := a.AwsBatch; b != nil {
		app.AwsBatch = &apicr.AwsBatchOpts{JobQueue: b.JobQueue, JobDefinition: b.JobDefinition}
	}
	if s := a.Slurm; s != nil {
		app.Slurm = &apicr.SlurmOpts{
			Partition: s.Partition, Time: s.Time, CpusPerTask: s.CpusPerTask, OtherOpts: s.OtherOpts,
		}
	}
	return app
}

func ParseApp(a apicr.App) domain.App {
	app := domain.App{
		Name:           a.Name,
		ExecutablePath: a.ExecutablePath,
		Container:      a.Container,
	}
	if b := a.AwsBatch; b != nil {
		app.AwsBatch = &domain.AwsBatchOpts{JobQueue: b.JobQueue, JobDefinition: b.JobDefinition}
	}
	if s := a.Slurm; s != nil {
		app.Slurm = &domain.SlurmOpts{
			Partition: s.Partition, Time: s.Time, CpusPerTask: s.CpusPerTask, OtherOpts: s.OtherOpts,
		}
	}
	return app
}

func ComposeSpec(s domain.ComputeResourceSpec) apicr.Spec {
	return apicr.Spec{
		Apps: utils.Map(s.Apps, func(a domain.AppSpec) apicr.AppSpec {
			return apicr.AppSpec{
				Name:       a.Name,
				Help:       a.Help,
				Processors: utils.Map(a.Processors, bindjobs.ComposeProcessorSpec),
			}
		}),
	}
}

func ParseSpec(s apicr.Spec) domain.ComputeResourceSpec {
	return domain.ComputeResourceSpec{
		Apps: utils.Map(s.Apps, func(a apicr.AppSpec) domain.AppSpec {
			return domain.AppSpec{
				Name:       a.Name,
				Help:       a.Help,
				Processors: utils.Map(a.Processors, bindjobs.ParseProcessorSpec),
			}
		}),
	}
}

func Compose(cr domain.ComputeResource) apicr.ComputeResource {
	var spec *apicr.Spec
	if cr.Spec != nil {
		s := ComposeSpec(*cr.Spec)
		spec = &s
	}
	return apicr.ComputeResource{
		ComputeResourceId: cr.ComputeResourceId,
		OwnerId:           cr.OwnerId,
		Name:              cr.Name,
		TimestampCreated:  unixtime.Seconds(cr.TimestampCreated),
		Apps:              utils.Map(cr.Apps, ComposeApp),
		Spec:              spec,
	}
}

func ComposeSubscription(s pubsub.Subscription) apicr.Subscription {
	sub := apicr.Subscription{
		Backend:    s.Backend,
		Channel:    s.Channel,
		KafkaTopic: s.KafkaTopic,
	}
	if len(s.KafkaBrokers) != 0 {
		sub.KafkaBrokers = append([]string{}, s.KafkaBrokers...)
	}
	if s.PubnubSubscribeKey != "" {
		sub.PubnubSubscribeKey = s.PubnubSubscribeKey
		sub.PubnubChannel = s.Channel
		sub.PubnubUser = s.User
	}
	return sub
}
