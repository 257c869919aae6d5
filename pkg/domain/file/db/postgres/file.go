package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/protocaas/protocaas/pkg/conn/db/postgres/pool"
	"github.com/protocaas/protocaas/pkg/domain"
	pgerrors "github.com/protocaas/protocaas/pkg/domain/errors/dberrors/postgres"
	kdb "github.com/protocaas/protocaas/pkg/domain/file/db"
	ipg "github.com/protocaas/protocaas/pkg/domain/internal/db/postgres"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

type filePG struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) kdb.Interface {
	return &filePG{pool: pool}
}

const columns = `
	"file_id", "workspace_id", "project_id", "file_name", "size",
	"content", "metadata", "job_id", "timestamp_created"
`

func (m *filePG) Insert(ctx context.Context, file domain.File) error {
	metadata, err := file.Metadata.JSON()
	if err != nil {
		return xe.Wrap(err)
	}

	if _, err := m.pool.Exec(
		ctx,
		`insert into "file" (`+columns+`) values ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		file.FileId, file.WorkspaceId, file.ProjectId, file.FileName, file.Size,
		domain.FormatContent(file.Content),
		pgtype.JSONB{Bytes: metadata, Status: pgtype.Present},
		file.JobId, file.TimestampCreated,
	); err != nil {
		if ipg.IsUniqueViolation(err) {
			return pgerrors.Conflict{Table: "file", Identity: file.ProjectId + "/" + file.FileName}
		}
		return xe.Wrap(err)
	}
	return nil
}

func scanFile(row pgx.Row) (domain.File, error) {
	var file domain.File
	var content string
	var metadata pgtype.JSONB
	if err := row.Scan(
		&file.FileId, &file.WorkspaceId, &file.ProjectId, &file.FileName, &file.Size,
		&content, &metadata, &file.JobId, &file.TimestampCreated,
	); err != nil {
		return domain.File{}, err
	}
	file.Content = domain.ParseContent(content)

	doc, err := domain.ParseDocument(metadata.Bytes)
	if err != nil {
		return domain.File{}, err
	}
	file.Metadata = doc
	return file, nil
}

func (m *filePG) Get(ctx context.Context, fileId string) (domain.File, error) {
	file, err := scanFile(m.pool.QueryRow(
		ctx, `select `+columns+` from "file" where "file_id" = $1`, fileId,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.File{}, pgerrors.Missing{Table: "file", Identity: fileId}
	} else if err != nil {
		return domain.File{}, xe.Wrap(err)
	}
	return file, nil
}

func (m *filePG) GetByName(ctx context.Context, projectId string, fileName string) (domain.File, error) {
	file, err := scanFile(m.pool.QueryRow(
		ctx,
		`select `+columns+` from "file" where "project_id" = $1 and "file_name" = $2`,
		projectId, fileName,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.File{}, pgerrors.Missing{Table: "file", Identity: projectId + "/" + fileName}
	} else if err != nil {
		return domain.File{}, xe.Wrap(err)
	}
	return file, nil
}

func (m *filePG) Find(ctx context.Context, projectId string) ([]domain.File, error) {
	rows, err := m.pool.Query(
		ctx,
		`select `+columns+` from "file" where "project_id" = $1 order by "file_name"`,
		projectId,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	files := []domain.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, xe.Wrap(err)
	}
	return files, nil
}

func (m *filePG) Delete(ctx context.Context, fileIds ...string) (int, error) {
	if len(fileIds) == 0 {
		return 0, nil
	}
	ctag, err := m.pool.Exec(
		ctx, `delete from "file" where "file_id" = any($1::varchar[])`, fileIds,
	)
	if err != nil {
		return 0, xe.Wrap(err)
	}
	return int(ctag.RowsAffected()), nil
}
