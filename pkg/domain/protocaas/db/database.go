package db

import (
	kcr "github.com/protocaas/protocaas/pkg/domain/computeresource/db"
	kfile "github.com/protocaas/protocaas/pkg/domain/file/db"
	kjob "github.com/protocaas/protocaas/pkg/domain/job/db"
	kschema "github.com/protocaas/protocaas/pkg/domain/schema/db"
	kworkspace "github.com/protocaas/protocaas/pkg/domain/workspace/db"
)

// Database is the set of collections protocaas uses.
type Database interface {
	Jobs() kjob.Interface
	Files() kfile.Interface
	ComputeResources() kcr.Interface
	Workspaces() kworkspace.Interface
	Schema() kschema.SchemaInterface
	Close() error
}
