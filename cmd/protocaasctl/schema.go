package main

import (
	"context"
	"fmt"

	dbInterface "github.com/protocaas/protocaas/pkg/domain/protocaas/db"
	kpg "github.com/protocaas/protocaas/pkg/domain/protocaas/db/postgres"
	"github.com/spf13/cobra"
)

func (c *commandContext) database(ctx context.Context) (dbInterface.Database, error) {
	url := c.databaseURL
	if url == "" {
		conf, err := c.config()
		if err != nil {
			return nil, fmt.Errorf("database is not given: %w", err)
		}
		if conf.Database().InMemory() {
			return nil, fmt.Errorf("config has no database.url")
		}
		url = conf.Database().URL()
	}
	return kpg.New(ctx, url)
}

func newSchemaCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Database schema utilities",
	}
	cmd.PersistentFlags().StringVar(&ctx.databaseURL, "database-url", "", "postgres url. overrides --config")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the schema version of the database and the latest one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			return printVersion(cmd, db)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the schema of the database to the latest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := ctx.database(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Schema().Upgrade(cmd.Context()); err != nil {
				return err
			}
			return printVersion(cmd, db)
		},
	})
	return cmd
}

func printVersion(cmd *cobra.Command, db dbInterface.Database) error {
	current, err := db.Schema().Version(cmd.Context())
	if err != nil {
		return err
	}
	latest, err := db.Schema().Latest()
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "current: %d\nlatest: %d\n", current, latest)
	return nil
}
