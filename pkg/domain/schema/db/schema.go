package db

import "context"

// SchemaInterface represents a database schema.
type SchemaInterface interface {
	// Upgrade upgrades the schema to the latest version.
	Upgrade(ctx context.Context) error

	// Version returns the current version of the schema.
	//
	// It is 0 when no schema is applied.
	Version(ctx context.Context) (int, error)

	// Latest returns the newest version this binary knows.
	Latest() (int, error)
}
