package testenv

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v4/pgxpool"
	kpool "github.com/protocaas/protocaas/pkg/conn/db/postgres/pool"
	kpgschema "github.com/protocaas/protocaas/pkg/domain/schema/db/postgres"
)

// EnvDatabaseURL names the environment variable which points the database for tests.
const EnvDatabaseURL = "PROTOCAAS_TEST_DATABASE_URL"

// PoolBroaker is a interface to get a pool.
type PoolBroaker interface {
	// GetPool returns a pool.
	//
	// Tables are cleaned up before returning and after t.
	GetPool(ctx context.Context, t *testing.T) kpool.Pool
}

type pg struct {
	pool *pgxpool.Pool
}

func (p *pg) GetPool(ctx context.Context, t *testing.T) kpool.Pool {
	t.Helper()
	t.Cleanup(func() {
		ClearTables(context.Background(), p.pool, t)
	})

	ClearTables(ctx, p.pool, t)
	return kpool.Wrap(p.pool)
}

// NewPoolBroaker returns a PoolBroaker connected to the database
// pointed by PROTOCAAS_TEST_DATABASE_URL.
//
// If the variable is not set, the test is skipped.
//
// The schema is upgraded to the latest before returning.
func NewPoolBroaker(ctx context.Context, t *testing.T) PoolBroaker {
	t.Helper()

	uri := os.Getenv(EnvDatabaseURL)
	if uri == "" {
		t.Skipf("%s is not set. skip tests with postgres.", EnvDatabaseURL)
	}

	pool, err := pgxpool.Connect(ctx, uri)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(pool.Close)

	if err := kpgschema.New(kpool.Wrap(pool)).Upgrade(ctx); err != nil {
		t.Fatal(err)
	}

	return &pg{pool: pool}
}

// ClearTables truncates all tables except schema_version.
func ClearTables(ctx context.Context, pool *pgxpool.Pool, t *testing.T) {
	t.Helper()
	if _, err := pool.Exec(ctx, `
		truncate table "job", "file", "compute_resource", "compute_resource_node",
			"workspace", "project"
		cascade
	`); err != nil {
		t.Fatal(err)
	}
}
