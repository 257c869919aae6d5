package domain

type JobEventType string

const (
	NewPendingJob    JobEventType = "newPendingJob"
	JobStatusChanged JobEventType = "jobStatusChanged"
)

// JobEvent is a notification about a job, sent to the channel of its compute resource.
type JobEvent struct {
	Type              JobEventType
	WorkspaceId       string
	ProjectId         string
	ComputeResourceId string
	JobId             string

	// Status is set for JobStatusChanged.
	Status JobStatus
}

// Channel is the name of the pubsub channel where the event is delivered.
func (e JobEvent) Channel() string {
	return e.ComputeResourceId
}

func NewPendingJobEvent(j Job) JobEvent {
	return JobEvent{
		Type:              NewPendingJob,
		WorkspaceId:       j.WorkspaceId,
		ProjectId:         j.ProjectId,
		ComputeResourceId: j.ComputeResourceId,
		JobId:             j.JobId,
	}
}

func JobStatusChangedEvent(j Job) JobEvent {
	return JobEvent{
		Type:              JobStatusChanged,
		WorkspaceId:       j.WorkspaceId,
		ProjectId:         j.ProjectId,
		ComputeResourceId: j.ComputeResourceId,
		JobId:             j.JobId,
		Status:            j.Status,
	}
}
