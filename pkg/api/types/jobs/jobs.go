package jobs

import (
	"github.com/protocaas/protocaas/pkg/utils/unixtime"
)

type Tag struct {
	Tag string `json:"tag"`
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

// ProcessorSpec is the declared interface of a processor, as advertised by compute resources.
type ProcessorSpec struct {
	Name       string               `json:"name"`
	Help       string               `json:"help"`
	Inputs     []ProcessorIO        `json:"inputs"`
	Outputs    []ProcessorIO        `json:"outputs"`
	Parameters []ProcessorParameter `json:"parameters"`
	Attributes []ProcessorAttribute `json:"attributes"`
	Tags       []Tag                `json:"tags"`
}

type InputFile struct {
	Name     string `json:"name"`
	FileId   string `json:"fileId"`
	FileName string `json:"fileName"`
}

type InputParameter struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

type OutputFile struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
	FileId   string `json:"fileId,omitempty"`
}

// Job is a job record.
//
// JobPrivateKey is present only in responses for the job process.
type Job struct {
	ProjectId         string `json:"projectId"`
	WorkspaceId       string `json:"workspaceId"`
	JobId             string `json:"jobId"`
	JobPrivateKey     string `json:"jobPrivateKey,omitempty"`
	UserId            string `json:"userId"`
	ProcessorName     string `json:"processorName"`
	BatchId           string `json:"batchId,omitempty"`
	ComputeResourceId string `json:"computeResourceId"`

	InputFiles      []InputFile      `json:"inputFiles"`
	InputFileIds    []string         `json:"inputFileIds"`
	InputParameters []InputParameter `json:"inputParameters"`
	OutputFiles     []OutputFile     `json:"outputFiles"`
	OutputFileIds   []string         `json:"outputFileIds,omitempty"`
	ProcessorSpec   ProcessorSpec    `json:"processorSpec"`

	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	TimestampCreated  unixtime.Seconds  `json:"timestampCreated"`
	TimestampQueued   *unixtime.Seconds `json:"timestampQueued,omitempty"`
	TimestampStarting *unixtime.Seconds `json:"timestampStarting,omitempty"`
	TimestampStarted  *unixtime.Seconds `json:"timestampStarted,omitempty"`
	TimestampFinished *unixtime.Seconds `json:"timestampFinished,omitempty"`

	ConsoleOutput string `json:"consoleOutput,omitempty"`

	ComputeResourceNodeId   string `json:"computeResourceNodeId,omitempty"`
	ComputeResourceNodeName string `json:"computeResourceNodeName,omitempty"`
}

type InputFileRequest struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
}

type OutputFileRequest struct {
	Name     string `json:"name"`
	FileName string `json:"fileName"`
}

type CreateJobRequest struct {
	WorkspaceId     string              `json:"workspaceId"`
	ProjectId       string              `json:"projectId"`
	ProcessorName   string              `json:"processorName"`
	InputFiles      []InputFileRequest  `json:"inputFiles"`
	OutputFiles     []OutputFileRequest `json:"outputFiles"`
	InputParameters []InputParameter    `json:"inputParameters"`
	ProcessorSpec   ProcessorSpec       `json:"processorSpec"`
	BatchId         string              `json:"batchId,omitempty"`
}

type CreateJobResponse struct {
	JobId   string `json:"jobId"`
	Success bool   `json:"success"`
}

type GetJobResponse struct {
	Job     Job  `json:"job"`
	Success bool `json:"success"`
}

type GetJobsResponse struct {
	Jobs    []Job `json:"jobs"`
	Success bool  `json:"success"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`

	ComputeResourceNodeId   string `json:"computeResourceNodeId,omitempty"`
	ComputeResourceNodeName string `json:"computeResourceNodeName,omitempty"`
}

type SetConsoleOutputRequest struct {
	ConsoleOutput string `json:"consoleOutput"`
}

type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	Success   bool   `json:"success"`
}

// SuccessResponse is the body of responses having nothing to say but success.
type SuccessResponse struct {
	Success bool `json:"success"`
}
