package domain

// domain package contains the Domain Models of protocaas.
//
// `domain/ENTITY.go` has high-level entities and functions on them.
// For example, `domain/job.go` contains the `Job` entity and its lifecycle.
//
// `domain/ENTITY/db` directory contains the interface to persist the entity,
// and its implementations (`postgres`, and `mock` for tests).
// The in-memory record store is placed at `pkg/domain/protocaas/db/memory`.
//
// # Entities
//
// - `job`: an execution of a processor on a compute resource.
// Jobs are created by users, found by compute resources via polling,
// and moved along their lifecycle by the job process holding the private key.
//
// - `file`: a named artifact in a project. It is either inline content or a pointer to external storage.
// A file can be an output of a job. Files are never updated in place; they are superseded.
//
// - `computeresource`: a registered execution backend which polls jobs for itself.
// Each polling daemon leaves a node record as heartbeat.
//
// - `workspace`: owner of projects, and of roles of users.
// This is maintained by other components. Protocaas reads it to authorize users.
