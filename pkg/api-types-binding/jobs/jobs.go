package jobs

import (
	apijobs "github.com/protocaas/protocaas/pkg/api/types/jobs"
	"github.com/protocaas/protocaas/pkg/domain"
	"github.com/protocaas/protocaas/pkg/lifecycle"
	"github.com/protocaas/protocaas/pkg/utils"
	"github.com/protocaas/protocaas/pkg/utils/unixtime"
)

func ComposeProcessorSpec(p domain.ProcessorSpec) apijobs.ProcessorSpec {
	io := func(i domain.ProcessorIO) apijobs.ProcessorIO {
		return apijobs.ProcessorIO{Name: i.Name, Help: i.Help}
	}
	return apijobs.ProcessorSpec{
		Name:    p.Name,
		Help:    p.Help,
		Inputs:  utils.Map(p.Inputs, io),
		Outputs: utils.Map(p.Outputs, io),
		Parameters: utils.Map(p.Parameters, func(pp domain.ProcessorParameter) apijobs.ProcessorParameter {
			return apijobs.ProcessorParameter{
				Name:    pp.Name,
				Help:    pp.Help,
				Type:    pp.Type,
				Default: pp.Default,
				Options: pp.Options,
				Secret:  pp.Secret,
			}
		}),
		Attributes: utils.Map(p.Attributes, func(a domain.ProcessorAttribute) apijobs.ProcessorAttribute {
			return apijobs.ProcessorAttribute{Name: a.Name, Value: a.Value}
		}),
		Tags: utils.Map(p.Tags, func(t string) apijobs.Tag { return apijobs.Tag{Tag: t} }),
	}
}

func ParseProcessorSpec(p apijobs.ProcessorSpec) domain.ProcessorSpec {
	io := func(i apijobs.ProcessorIO) domain.ProcessorIO {
		return domain.ProcessorIO{Name: i.Name, Help: i.Help}
	}
	return domain.ProcessorSpec{
		Name:    p.Name,
		Help:    p.Help,
		Inputs:  utils.Map(p.Inputs, io),
		Outputs: utils.Map(p.Outputs, io),
		Parameters: utils.Map(p.Parameters, func(pp apijobs.ProcessorParameter) domain.ProcessorParameter {
			return domain.ProcessorParameter{
				Name:    pp.Name,
				Help:    pp.Help,
				Type:    pp.Type,
				Default: pp.Default,
				Options: pp.Options,
				Secret:  pp.Secret,
			}
		}),
		Attributes: utils.Map(p.Attributes, func(a apijobs.ProcessorAttribute) domain.ProcessorAttribute {
			return domain.ProcessorAttribute{Name: a.Name, Value: a.Value}
		}),
		Tags: utils.Map(p.Tags, func(t apijobs.Tag) string { return t.Tag }),
	}
}

// Compose converts a job record into its wire form.
//
// Redaction is not done here. Redact the job before composing, as needed.
func Compose(j domain.Job) apijobs.Job {
	return apijobs.Job{
		ProjectId:         j.ProjectId,
		WorkspaceId:       j.WorkspaceId,
		JobId:             j.JobId,
		JobPrivateKey:     j.JobPrivateKey,
		UserId:            j.UserId,
		ProcessorName:     j.ProcessorName,
		BatchId:           j.BatchId,
		ComputeResourceId: j.ComputeResourceId,

		InputFiles: utils.Map(j.InputFiles, func(f domain.InputFile) apijobs.InputFile {
			return apijobs.InputFile{Name: f.Name, FileId: f.FileId, FileName: f.FileName}
		}),
		InputFileIds: append([]string{}, j.InputFileIds...),
		InputParameters: utils.Map(j.InputParameters, func(p domain.InputParameter) apijobs.InputParameter {
			return apijobs.InputParameter{Name: p.Name, Value: p.Value}
		}),
		OutputFiles: utils.Map(j.OutputFiles, func(o domain.OutputFile) apijobs.OutputFile {
			return apijobs.OutputFile{Name: o.Name, FileName: o.FileName, FileId: o.FileId}
		}),
		OutputFileIds: j.OutputFileIds(),
		ProcessorSpec: ComposeProcessorSpec(j.ProcessorSpec),

		Status: j.Status.String(),
		Error:  j.Error,

		TimestampCreated:  unixtime.Seconds(j.TimestampCreated),
		TimestampQueued:   unixtime.Ref(j.TimestampQueued),
		TimestampStarting: unixtime.Ref(j.TimestampStarting),
		TimestampStarted:  unixtime.Ref(j.TimestampStarted),
		TimestampFinished: unixtime.Ref(j.TimestampFinished),

		ConsoleOutput: j.ConsoleOutput,

		ComputeResourceNodeId:   j.ComputeResourceNodeId,
		ComputeResourceNodeName: j.ComputeResourceNodeName,
	}
}

func ParseCreateRequest(req apijobs.CreateJobRequest) lifecycle.CreateJobRequest {
	return lifecycle.CreateJobRequest{
		WorkspaceId:   req.WorkspaceId,
		ProjectId:     req.ProjectId,
		ProcessorName: req.ProcessorName,
		BatchId:       req.BatchId,
		InputFiles: utils.Map(req.InputFiles, func(f apijobs.InputFileRequest) lifecycle.InputFileRequest {
			return lifecycle.InputFileRequest{Name: f.Name, FileName: f.FileName}
		}),
		InputParameters: utils.Map(req.InputParameters, func(p apijobs.InputParameter) lifecycle.InputParameterRequest {
			return lifecycle.InputParameterRequest{Name: p.Name, Value: p.Value}
		}),
		OutputFiles: utils.Map(req.OutputFiles, func(o apijobs.OutputFileRequest) lifecycle.OutputFileRequest {
			return lifecycle.OutputFileRequest{Name: o.Name, FileName: o.FileName}
		}),
		ProcessorSpec: ParseProcessorSpec(req.ProcessorSpec),
	}
}

// ParseStatusRequest converts a status update request.
//
// Returns
//
// - error: ErrInvalidArgument when the status is unknown.
func ParseStatusRequest(req apijobs.SetStatusRequest) (lifecycle.StatusUpdate, error) {
	status, err := domain.AsJobStatus(req.Status)
	if err != nil {
		return lifecycle.StatusUpdate{}, err
	}
	return lifecycle.StatusUpdate{
		Status:   status,
		Error:    req.Error,
		NodeId:   req.ComputeResourceNodeId,
		NodeName: req.ComputeResourceNodeName,
	}, nil
}
