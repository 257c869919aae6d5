package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/protocaas/protocaas/pkg/conn/db/postgres/pool"
	"github.com/protocaas/protocaas/pkg/domain"
	pgerrors "github.com/protocaas/protocaas/pkg/domain/errors/dberrors/postgres"
	ipg "github.com/protocaas/protocaas/pkg/domain/internal/db/postgres"
	kdb "github.com/protocaas/protocaas/pkg/domain/job/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

type jobPG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.Interface {
	return &jobPG{pool: pool}
}

const columns = `
	"job_id", "job_private_key", "workspace_id", "project_id", "user_id",
	"compute_resource_id", "processor_name", "batch_id",
	"input_files", "input_file_ids", "input_parameters", "output_files", "processor_spec",
	"status", "error",
	"timestamp_created", "timestamp_queued", "timestamp_starting", "timestamp_started", "timestamp_finished",
	"console_output", "compute_resource_node_id", "compute_resource_node_name"
`

func (m *jobPG) Insert(ctx context.Context, job domain.Job) error {
	inputFiles, err := ipg.JSONB(ipg.FromInputFiles(job.InputFiles))
	if err != nil {
		return xe.Wrap(err)
	}
	inputParameters, err := ipg.JSONB(ipg.FromInputParameters(job.InputParameters))
	if err != nil {
		return xe.Wrap(err)
	}
	outputFiles, err := ipg.JSONB(ipg.FromOutputFiles(job.OutputFiles))
	if err != nil {
		return xe.Wrap(err)
	}
	spec, err := ipg.JSONB(ipg.FromProcessorSpec(job.ProcessorSpec))
	if err != nil {
		return xe.Wrap(err)
	}
	inputFileIds := job.InputFileIds
	if inputFileIds == nil {
		inputFileIds = []string{}
	}

	if _, err := m.pool.Exec(
		ctx,
		`insert into "job" (`+columns+`)
		values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23)`,
		job.JobId, job.JobPrivateKey, job.WorkspaceId, job.ProjectId, job.UserId,
		job.ComputeResourceId, job.ProcessorName, job.BatchId,
		inputFiles, inputFileIds, inputParameters, outputFiles, spec,
		string(job.Status), job.Error,
		job.TimestampCreated,
		ipg.Timestamptz(job.TimestampQueued),
		ipg.Timestamptz(job.TimestampStarting),
		ipg.Timestamptz(job.TimestampStarted),
		ipg.Timestamptz(job.TimestampFinished),
		job.ConsoleOutput, job.ComputeResourceNodeId, job.ComputeResourceNodeName,
	); err != nil {
		if ipg.IsUniqueViolation(err) {
			return pgerrors.Conflict{Table: "job", Identity: job.JobId}
		}
		return xe.Wrap(err)
	}
	return nil
}

func scanJob(row pgx.Row) (domain.Job, error) {
	var job domain.Job
	var status string
	var inputFiles, inputParameters, outputFiles, spec pgtype.JSONB
	var queued, starting, started, finished pgtype.Timestamptz

	if err := row.Scan(
		&job.JobId, &job.JobPrivateKey, &job.WorkspaceId, &job.ProjectId, &job.UserId,
		&job.ComputeResourceId, &job.ProcessorName, &job.BatchId,
		&inputFiles, &job.InputFileIds, &inputParameters, &outputFiles, &spec,
		&status, &job.Error,
		&job.TimestampCreated, &queued, &starting, &started, &finished,
		&job.ConsoleOutput, &job.ComputeResourceNodeId, &job.ComputeResourceNodeName,
	); err != nil {
		return domain.Job{}, err
	}

	s, err := domain.AsJobStatus(status)
	if err != nil {
		return domain.Job{}, err
	}
	job.Status = s

	var ifs []ipg.InputFile
	if err := ipg.FromJSONB(inputFiles, &ifs); err != nil {
		return domain.Job{}, err
	}
	job.InputFiles = ipg.ToInputFiles(ifs)

	var ips []ipg.InputParameter
	if err := ipg.FromJSONB(inputParameters, &ips); err != nil {
		return domain.Job{}, err
	}
	job.InputParameters = ipg.ToInputParameters(ips)

	var ofs []ipg.OutputFile
	if err := ipg.FromJSONB(outputFiles, &ofs); err != nil {
		return domain.Job{}, err
	}
	job.OutputFiles = ipg.ToOutputFiles(ofs)

	var ps ipg.ProcessorSpec
	if err := ipg.FromJSONB(spec, &ps); err != nil {
		return domain.Job{}, err
	}
	job.ProcessorSpec = ipg.ToProcessorSpec(ps)

	job.TimestampQueued = ipg.TimePtr(queued)
	job.TimestampStarting = ipg.TimePtr(starting)
	job.TimestampStarted = ipg.TimePtr(started)
	job.TimestampFinished = ipg.TimePtr(finished)
	return job, nil
}

func (m *jobPG) Get(ctx context.Context, jobId string) (domain.Job, error) {
	job, err := scanJob(m.pool.QueryRow(
		ctx, `select `+columns+` from "job" where "job_id" = $1`, jobId,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Job{}, pgerrors.Missing{Table: "job", Identity: jobId}
	} else if err != nil {
		return domain.Job{}, xe.Wrap(err)
	}
	return job, nil
}

func (m *jobPG) Find(ctx context.Context, query domain.JobQuery) ([]domain.Job, error) {
	statuses := make([]string, 0, len(query.Statuses))
	for _, s := range query.Statuses {
		statuses = append(statuses, string(s))
	}

	rows, err := m.pool.Query(
		ctx,
		`select `+columns+` from "job"
		where ($1 = '' or "project_id" = $1)
			and ($2 = '' or "compute_resource_id" = $2)
			and (cardinality($3::varchar[]) = 0 or "status" = any($3::varchar[]))
		order by "timestamp_created", "job_id"`,
		query.ProjectId, query.ComputeResourceId, statuses,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	jobs := []domain.Job{}
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return jobs, nil
}

func (m *jobPG) Delete(ctx context.Context, jobIds ...string) (int, error) {
	if len(jobIds) == 0 {
		return 0, nil
	}
	ctag, err := m.pool.Exec(
		ctx, `delete from "job" where "job_id" = any($1::varchar[])`, jobIds,
	)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	return int(ctag.RowsAffected()), nil
}

func (m *jobPG) UpdateStatus(ctx context.Context, jobId string, from domain.JobStatus, change domain.StatusChange) error {
	return kpool.InTx(ctx, m.pool, func(tx kpool.Tx) error {
		job, err := scanJob(tx.QueryRow(
			ctx,
			`select `+columns+` from "job" where "job_id" = $1 for update`,
			jobId,
		))
		if errors.Is(err, pgx.ErrNoRows) {
			return pgerrors.Missing{Table: "job", Identity: jobId}
		} else if err != nil {
			return xe.Wrap(err)
		}
		if job.Status != from {
			return pgerrors.Conflict{
				Table: "job", Identity: jobId,
				Reason: "status is " + job.Status.String() + ", not " + from.String(),
			}
		}

		updated := change.Apply(job)
		outputFiles, err := ipg.JSONB(ipg.FromOutputFiles(updated.OutputFiles))
		if err != nil {
			return xe.Wrap(err)
		}

		_, err = tx.Exec(
			ctx,
			`update "job" set
				"status" = $2, "error" = $3, "output_files" = $4,
				"timestamp_queued" = $5, "timestamp_starting" = $6,
				"timestamp_started" = $7, "timestamp_finished" = $8,
				"compute_resource_node_id" = $9, "compute_resource_node_name" = $10
			where "job_id" = $1`,
			jobId, string(updated.Status), updated.Error, outputFiles,
			ipg.Timestamptz(updated.TimestampQueued),
			ipg.Timestamptz(updated.TimestampStarting),
			ipg.Timestamptz(updated.TimestampStarted),
			ipg.Timestamptz(updated.TimestampFinished),
			updated.ComputeResourceNodeId, updated.ComputeResourceNodeName,
		)
		return xe.Wrap(err)
	})
}

func (m *jobPG) SetConsoleOutput(ctx context.Context, jobId string, consoleOutput string) error {
	ctag, err := m.pool.Exec(
		ctx,
		`update "job" set "console_output" = $2 where "job_id" = $1`,
		jobId, consoleOutput,
	)
	if err != nil {
		return xe.Wrap(err)
	}
	if ctag.RowsAffected() == 0 {
		return pgerrors.Missing{Table: "job", Identity: jobId}
	}
	return nil
}
