package domain

import (
	"fmt"
	"time"

	"github.com/google/go-containerregistry/pkg/name"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
)

type ComputeResource struct {
	ComputeResourceId string
	OwnerId           string
	Name              string
	Apps              []App

	// Spec is nil until the compute resource publishes its spec.
	Spec *ComputeResourceSpec

	TimestampCreated time.Time
}

// App is an executable binding on a compute resource.
type App struct {
	Name           string
	ExecutablePath string

	// container image reference. optional.
	Container string

	AwsBatch *AwsBatchOpts
	Slurm    *SlurmOpts
}

type AwsBatchOpts struct {
	JobQueue      string
	JobDefinition string
}

type SlurmOpts struct {
	Partition   string
	Time        string
	CpusPerTask int
	OtherOpts   string
}

func (a App) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: app name is empty", domerr.ErrInvalidArgument)
	}
	if a.ExecutablePath == "" {
		return fmt.Errorf("%w: app %s has no executable path", domerr.ErrInvalidArgument, a.Name)
	}
	if a.Container != "" {
		if _, err := name.ParseReference(a.Container); err != nil {
			return fmt.Errorf("%w: app %s: container: %w", domerr.ErrInvalidArgument, a.Name, err)
		}
	}
	if a.AwsBatch != nil && a.Slurm != nil {
		return fmt.Errorf("%w: app %s has both of awsBatch and slurm", domerr.ErrInvalidArgument, a.Name)
	}
	if a.AwsBatch != nil && a.Container == "" {
		return fmt.Errorf("%w: app %s: awsBatch requires container", domerr.ErrInvalidArgument, a.Name)
	}
	return nil
}

// ComputeResourceNode is a heartbeat record of a polling daemon.
//
// It is for observation only, and never gates scheduling.
type ComputeResourceNode struct {
	ComputeResourceId   string
	NodeId              string
	NodeName            string
	TimestampLastActive time.Time
}
