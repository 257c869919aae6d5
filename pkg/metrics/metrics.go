package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics defines metrics operations protocaas components record.
type Metrics interface {
	// Job lifecycle
	IncJobsCreated()
	IncJobTransitions(status string)

	// Collector
	IncCollectorPasses(passes int)
	AddCollected(jobs int, files int)

	// Fan-out
	IncPublished(backend string)
	IncPublishFailures(backend string)

	// Compute resources
	IncHeartbeats()
	IncAuthFailures(scheme string)
}

// Prometheus implements Metrics.
type Prometheus struct {
	JobsCreated    prometheus.Counter
	JobTransitions *prometheus.CounterVec

	CollectorPasses prometheus.Counter
	CollectedJobs   prometheus.Counter
	CollectedFiles  prometheus.Counter

	Published       *prometheus.CounterVec
	PublishFailures *prometheus.CounterVec

	Heartbeats   prometheus.Counter
	AuthFailures *prometheus.CounterVec
}

const namespace = "protocaas"

// New creates metrics and registers them to reg.
func New(reg prometheus.Registerer) *Prometheus {
	f := promauto.With(reg)
	return &Prometheus{
		JobsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_created_total",
			Help:      "Total number of jobs created",
		}),
		JobTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_transitions_total",
			Help:      "Total number of job status transitions, by the new status",
		}, []string{"status"}),

		CollectorPasses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collector_passes_total",
			Help:      "Total number of referential integrity collector passes",
		}),
		CollectedJobs: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collected_jobs_total",
			Help:      "Total number of detached jobs deleted by the collector",
		}),
		CollectedFiles: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "collected_files_total",
			Help:      "Total number of detached files deleted by the collector",
		}),

		Published: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of job events published, by backend",
		}, []string{"backend"}),
		PublishFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_publish_failures_total",
			Help:      "Total number of job events failed to be published, by backend",
		}, []string{"backend"}),

		Heartbeats: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compute_resource_heartbeats_total",
			Help:      "Total number of heartbeats from compute resource nodes",
		}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total number of rejected requests, by authentication scheme",
		}, []string{"scheme"}),
	}
}

func (p *Prometheus) IncJobsCreated()                 { p.JobsCreated.Inc() }
func (p *Prometheus) IncJobTransitions(status string) { p.JobTransitions.WithLabelValues(status).Inc() }
func (p *Prometheus) IncCollectorPasses(passes int)   { p.CollectorPasses.Add(float64(passes)) }
func (p *Prometheus) IncHeartbeats()                  { p.Heartbeats.Inc() }
func (p *Prometheus) IncPublished(backend string)     { p.Published.WithLabelValues(backend).Inc() }
func (p *Prometheus) IncAuthFailures(scheme string)   { p.AuthFailures.WithLabelValues(scheme).Inc() }

func (p *Prometheus) AddCollected(jobs int, files int) {
	p.CollectedJobs.Add(float64(jobs))
	p.CollectedFiles.Add(float64(files))
}

func (p *Prometheus) IncPublishFailures(backend string) {
	p.PublishFailures.WithLabelValues(backend).Inc()
}

// Nop discards everything.
type Nop struct{}

func (Nop) IncJobsCreated()           {}
func (Nop) IncJobTransitions(string)  {}
func (Nop) IncCollectorPasses(int)    {}
func (Nop) AddCollected(int, int)     {}
func (Nop) IncPublished(string)       {}
func (Nop) IncPublishFailures(string) {}
func (Nop) IncHeartbeats()            {}
func (Nop) IncAuthFailures(string)    {}
