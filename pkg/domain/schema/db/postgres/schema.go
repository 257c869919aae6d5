package postgres

import (
	"cmp"
	"context"
	"embed"
	"errors"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	kpool "github.com/protocaas/protocaas/pkg/conn/db/postgres/pool"
	kschema "github.com/protocaas/protocaas/pkg/domain/schema/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

//go:embed versions
var embedded embed.FS

// Versions is the schema repository built into the binary.
//
// Each directory named with an integer is a version, and *.sql files in it are applied in name order.
func Versions() fs.FS {
	sub, err := fs.Sub(embedded, "versions")
	if err != nil {
		panic(err) // embedded directory should exist.
	}
	return sub
}

type pgSchema struct {
	pool       kpool.Pool
	repository fs.FS
}

type Option func(*pgSchema) *pgSchema

// WithRepository replaces the schema repository.
func WithRepository(repository fs.FS) Option {
	return func(s *pgSchema) *pgSchema {
		s.repository = repository
		return s
	}
}

// New creates a new Schema.
func New(pool kpool.Pool, options ...Option) kschema.SchemaInterface {
	s := &pgSchema{pool: pool, repository: Versions()}
	for _, o := range options {
		s = o(s)
	}
	return s
}

type version struct {
	Version int
	Root    string
}

func (s *pgSchema) apply(ctx context.Context, conn kpool.Queryer, v version) error {
	return fs.WalkDir(s.repository, v.Root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".sql") {
			return nil
		}

		query, err := fs.ReadFile(s.repository, p)
		if err != nil {
			return err
		}
		if _, err := conn.Exec(ctx, string(query)); err != nil {
			return xe.WrapWithNote(p, err)
		}
		return nil
	})
}

func (s *pgSchema) Version(ctx context.Context) (int, error) {
	return queryVersion(ctx, s.pool)
}

func queryVersion(ctx context.Context, conn kpool.Queryer) (int, error) {
	var v *int
	if err := conn.QueryRow(
		ctx, `select max("version") from "schema_version"`,
	).Scan(&v); err != nil {
		if pgerr := new(pgconn.PgError); errors.As(err, &pgerr) {
			if pgerr.Code == pgerrcode.UndefinedTable {
				return 0, nil
			}
		}
		return -1, xe.Wrap(err)
	}
	if v == nil {
		return 0, nil
	}
	return *v, nil
}

func (s *pgSchema) Latest() (int, error) {
	vs, err := s.versions()
	if err != nil {
		return -1, err
	}
	if len(vs) == 0 {
		return 0, nil
	}
	return vs[len(vs)-1].Version, nil
}

func (s *pgSchema) Upgrade(ctx context.Context) error {
	schemaVersions, err := s.versions()
	if err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback(ctx)

	// serialize concurrent upgraders.
	if _, err := tx.Exec(ctx, `select pg_advisory_xact_lock(4649)`); err != nil {
		return xe.Wrap(err)
	}

	currentVersion, err := queryVersion(ctx, tx)
	if err != nil {
		return err
	}

	for _, v := range schemaVersions {
		if v.Version <= currentVersion {
			continue
		}
		if err := s.apply(ctx, tx, v); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `delete from "schema_version"`); err != nil {
			return xe.Wrap(err)
		}
		if _, err := tx.Exec(
			ctx, `insert into "schema_version" ("version") values ($1)`, v.Version,
		); err != nil {
			return xe.Wrap(err)
		}
	}

	return xe.Wrap(tx.Commit(ctx))
}

// versions lookup the schema from the schema repository, sorted by version number.
func (s *pgSchema) versions() ([]version, error) {
	dir, err := fs.ReadDir(s.repository, ".")
	if err != nil {
		return nil, err
	}

	schemaVersions := make([]version, 0, len(dir))
	for _, entry := range dir {
		if !entry.IsDir() {
			continue
		}
		v, err := strconv.Atoi(entry.Name())
		if err != nil {
			continue
		}
		schemaVersions = append(schemaVersions, version{Version: v, Root: path.Clean(entry.Name())})
	}
	slices.SortFunc(
		schemaVersions,
		func(i, j version) int { return cmp.Compare(i.Version, j.Version) },
	)
	return schemaVersions, nil
}
