package postgres

import (
	"context"
	"io/fs"

	kpool "github.com/protocaas/protocaas/pkg/conn/db/postgres/pool"
	kcr "github.com/protocaas/protocaas/pkg/domain/computeresource/db"
	kpgcr "github.com/protocaas/protocaas/pkg/domain/computeresource/db/postgres"
	kfile "github.com/protocaas/protocaas/pkg/domain/file/db"
	kpgfile "github.com/protocaas/protocaas/pkg/domain/file/db/postgres"
	kjob "github.com/protocaas/protocaas/pkg/domain/job/db"
	kpgjob "github.com/protocaas/protocaas/pkg/domain/job/db/postgres"
	dbInterface "github.com/protocaas/protocaas/pkg/domain/protocaas/db"
	kschema "github.com/protocaas/protocaas/pkg/domain/schema/db"
	kpgschema "github.com/protocaas/protocaas/pkg/domain/schema/db/postgres"
	kworkspace "github.com/protocaas/protocaas/pkg/domain/workspace/db"
	kpgworkspace "github.com/protocaas/protocaas/pkg/domain/workspace/db/postgres"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

type protocaasPostgres struct {
	pool             kpool.Pool
	jobs             kjob.Interface
	files            kfile.Interface
	computeResources kcr.Interface
	workspaces       kworkspace.Interface
	schema           kschema.SchemaInterface
}

type Config struct {
	SchemaRepository fs.FS
}

type Option func(*Config) *Config

// WithSchemaRepository replaces the embedded schema repository.
func WithSchemaRepository(repository fs.FS) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

// New connects to the database at url.
func New(ctx context.Context, url string, options ...Option) (dbInterface.Database, error) {
	pool, err := kpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := Config{}
	for _, option := range options {
		c = *option(&c)
	}

	return Wrap(pool, c), nil
}

// Wrap builds a Database on the pool.
func Wrap(pool kpool.Pool, c Config) dbInterface.Database {
	schemaOpts := []kpgschema.Option{}
	if c.SchemaRepository != nil {
		schemaOpts = append(schemaOpts, kpgschema.WithRepository(c.SchemaRepository))
	}

	return &protocaasPostgres{
		pool:             pool,
		jobs:             kpgjob.New(pool),
		files:            kpgfile.New(pool),
		computeResources: kpgcr.New(pool),
		workspaces:       kpgworkspace.New(pool),
		schema:           kpgschema.New(pool, schemaOpts...),
	}
}

func (p *protocaasPostgres) Jobs() kjob.Interface {
	return p.jobs
}

func (p *protocaasPostgres) Files() kfile.Interface {
	return p.files
}

func (p *protocaasPostgres) ComputeResources() kcr.Interface {
	return p.computeResources
}

func (p *protocaasPostgres) Workspaces() kworkspace.Interface {
	return p.workspaces
}

func (p *protocaasPostgres) Schema() kschema.SchemaInterface {
	return p.schema
}

func (p *protocaasPostgres) Close() error {
	p.pool.Close()
	return nil
}
