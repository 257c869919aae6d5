package pubsub

import (
	"context"
	"log"

	"github.com/protocaas/protocaas/pkg/domain"
	"github.com/protocaas/protocaas/pkg/metrics"
)

// Notifier publishes events without failing the caller.
type Notifier interface {
	Notify(ctx context.Context, event domain.JobEvent)
}

type bestEffort struct {
	publisher Publisher
	logger    *log.Logger
	metrics   metrics.Metrics
}

// BestEffort wraps the publisher.
// Failures are logged and counted, and never returned.
func BestEffort(publisher Publisher, logger *log.Logger, m metrics.Metrics) Notifier {
	if m == nil {
		m = metrics.Nop{}
	}
	return &bestEffort{publisher: publisher, logger: logger, metrics: m}
}

func (b *bestEffort) Notify(ctx context.Context, event domain.JobEvent) {
	if err := b.publisher.Publish(ctx, event); err != nil {
		b.metrics.IncPublishFailures(b.publisher.Name())
		b.logger.Printf(
			"[WARN] failed to publish %s of job %s to %s via %s: %v",
			event.Type, event.JobId, event.Channel(), b.publisher.Name(), err,
		)
		return
	}
	b.metrics.IncPublished(b.publisher.Name())
}

// Discard is a Notifier doing nothing.
type Discard struct{}

func (Discard) Notify(context.Context, domain.JobEvent) {}
