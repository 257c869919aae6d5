package postgres

import "github.com/protocaas/protocaas/pkg/domain"

// Types in this file are the stored shapes of nested values in jsonb columns.

type InputFile struct {
	Name     string `json:"name"`
	FileId   string `json:"fileId"`
	FileName string `json:"fileName"`
}

type InputParameter struct {
	Name   string `json:"name"`
	Value  any    `json:"value"`
	Secret bool   `json:"secret,omitempty"`
}

type OutputFile struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
	FileId   string `json:"fileId,omitempty"`
}

type ProcessorSpec struct {
	Name       string               `json:"name"`
	Help       string               `json:"help"`
	Inputs     []ProcessorIO        `json:"inputs"`
	Outputs    []ProcessorIO        `json:"outputs"`
	Parameters []ProcessorParameter `json:"parameters"`
	Attributes []ProcessorAttribute `json:"attributes"`
	Tags       []string             `json:"tags"`
}

type ProcessorIO struct {
	Name string `json:"name"`
	Help string `json:"help"`
}

type ProcessorParameter struct {
	Name    string `json:"name"`
	Help    string `json:"help"`
	Type    string `json:"type"`
	Default any    `json:"default,omitempty"`
	Options []any  `json:"options,omitempty"`
	Secret  bool   `json:"secret,omitempty"`
}

type ProcessorAttribute struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type App struct {
	Name           string        `json:"name"`
	ExecutablePath string        `json:"executablePath"`
	Container      string        `json:"container,omitempty"`
	AwsBatch       *AwsBatchOpts `json:"awsBatch,omitempty"`
	Slurm          *SlurmOpts    `json:"slurm,omitempty"`
}

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

type ComputeResourceSpec struct {
	Apps []AppSpec `json:"apps"`
}

type AppSpec struct {
	Name       string          `json:"name"`
	Help       string          `json:"help"`
	Processors []ProcessorSpec `json:"processors"`
}

type WorkspaceUser struct {
	UserId string `json:"userId"`
	Role   string `json:"role"`
}

func mapSlice[T, R any](s []T, f func(T) R) []R {
	r := make([]R, 0, len(s))
	for _, v := range s {
		r = append(r, f(v))
	}
	return r
}

func FromInputFiles(s []domain.InputFile) []InputFile {
	return mapSlice(s, func(v domain.InputFile) InputFile { return InputFile(v) })
}

func ToInputFiles(s []InputFile) []domain.InputFile {
	return mapSlice(s, func(v InputFile) domain.InputFile { return domain.InputFile(v) })
}

func FromInputParameters(s []domain.InputParameter) []InputParameter {
	return mapSlice(s, func(v domain.InputParameter) InputParameter { return InputParameter(v) })
}

func ToInputParameters(s []InputParameter) []domain.InputParameter {
	return mapSlice(s, func(v InputParameter) domain.InputParameter { return domain.InputParameter(v) })
}

func FromOutputFiles(s []domain.OutputFile) []OutputFile {
	return mapSlice(s, func(v domain.OutputFile) OutputFile { return OutputFile(v) })
}

func ToOutputFiles(s []OutputFile) []domain.OutputFile {
	return mapSlice(s, func(v OutputFile) domain.OutputFile { return domain.OutputFile(v) })
}

func FromProcessorSpec(p domain.ProcessorSpec) ProcessorSpec {
	return ProcessorSpec{
		Name:    p.Name,
		Help:    p.Help,
		Inputs:  mapSlice(p.Inputs, func(v domain.ProcessorIO) ProcessorIO { return ProcessorIO(v) }),
		Outputs: mapSlice(p.Outputs, func(v domain.ProcessorIO) ProcessorIO { return ProcessorIO(v) }),
		Parameters: mapSlice(p.Parameters, func(v domain.ProcessorParameter) ProcessorParameter {
			return ProcessorParameter(v)
		}),
		Attributes: mapSlice(p.Attributes, func(v domain.ProcessorAttribute) ProcessorAttribute {
			return ProcessorAttribute(v)
		}),
		Tags: p.Tags,
	}
}

func ToProcessorSpec(p ProcessorSpec) domain.ProcessorSpec {
	return domain.ProcessorSpec{
		Name:    p.Name,
		Help:    p.Help,
		Inputs:  mapSlice(p.Inputs, func(v ProcessorIO) domain.ProcessorIO { return domain.ProcessorIO(v) }),
		Outputs: mapSlice(p.Outputs, func(v ProcessorIO) domain.ProcessorIO { return domain.ProcessorIO(v) }),
		Parameters: mapSlice(p.Parameters, func(v ProcessorParameter) domain.ProcessorParameter {
			return domain.ProcessorParameter(v)
		}),
		Attributes: mapSlice(p.Attributes, func(v ProcessorAttribute) domain.ProcessorAttribute {
			return domain.ProcessorAttribute(v)
		}),
		Tags: p.Tags,
	}
}

func FromApps(s []domain.App) []App {
	return mapSlice(s, func(a domain.App) App {
		app := App{Name: a.Name, ExecutablePath: a.ExecutablePath, Container: a.Container}
		if a.AwsBatch != nil {
			b := AwsBatchOpts(*a.AwsBatch)
			app.AwsBatch = &b
		}
		if a.Slurm != nil {
			s := SlurmOpts(*a.Slurm)
			app.Slurm = &s
		}
		return app
	})
}

func ToApps(s []App) []domain.App {
	return mapSlice(s, func(a App) domain.App {
		app := domain.App{Name: a.Name, ExecutablePath: a.ExecutablePath, Container: a.Container}
		if a.AwsBatch != nil {
			b := domain.AwsBatchOpts(*a.AwsBatch)
			app.AwsBatch = &b
		}
		if a.Slurm != nil {
			s := domain.SlurmOpts(*a.Slurm)
			app.Slurm = &s
		}
		return app
	})
}

func FromComputeResourceSpec(s domain.ComputeResourceSpec) ComputeResourceSpec {
	return ComputeResourceSpec{
		Apps: mapSlice(s.Apps, func(a domain.AppSpec) AppSpec {
			return AppSpec{Name: a.Name, Help: a.Help, Processors: mapSlice(a.Processors, FromProcessorSpec)}
		}),
	}
}

func ToComputeResourceSpec(s ComputeResourceSpec) domain.ComputeResourceSpec {
	return domain.ComputeResourceSpec{
		Apps: mapSlice(s.Apps, func(a AppSpec) domain.AppSpec {
			return domain.AppSpec{Name: a.Name, Help: a.Help, Processors: mapSlice(a.Processors, ToProcessorSpec)}
		}),
	}
}

func FromWorkspaceUsers(s []domain.WorkspaceUser) []WorkspaceUser {
	return mapSlice(s, func(u domain.WorkspaceUser) WorkspaceUser {
		return WorkspaceUser{UserId: u.UserId, Role: string(u.Role)}
	})
}

func ToWorkspaceUsers(s []WorkspaceUser) []domain.WorkspaceUser {
	return mapSlice(s, func(u WorkspaceUser) domain.WorkspaceUser {
		return domain.WorkspaceUser{UserId: u.UserId, Role: domain.Role(u.Role)}
	})
}
