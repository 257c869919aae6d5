// Package memory is an in-process Database.
//
// It keeps records in maps guarded by a mutex.
// Each operation is atomic, and values are copied on the way in and out.
// It is used by protocaasd when no database url is configured, and by tests.
package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/protocaas/protocaas/pkg/domain"
	kcr "github.com/protocaas/protocaas/pkg/domain/computeresource/db"
	domerr "github.com/protocaas/protocaas/pkg/domain/errors"
	kfile "github.com/protocaas/protocaas/pkg/domain/file/db"
	kjob "github.com/protocaas/protocaas/pkg/domain/job/db"
	kschema "github.com/protocaas/protocaas/pkg/domain/schema/db"
	kworkspace "github.com/protocaas/protocaas/pkg/domain/workspace/db"
	xe "github.com/protocaas/protocaas/pkg/errors"
)

type store struct {
	mu sync.Mutex

	jobs             map[string]domain.Job
	files            map[string]domain.File
	computeResources map[string]domain.ComputeResource
	nodes            map[nodeKey]domain.ComputeResourceNode
	workspaces       map[string]domain.Workspace
	projects         map[string]domain.Project
}

type nodeKey struct {
	computeResourceId string
	nodeId            string
}

// Database is an in-memory database.
//
// Workspaces and projects are maintained by other components in production.
// Use PutWorkspace and PutProject to seed them.
type Database struct {
	s *store
}

func New() *Database {
	return &Database{
		s: &store{
			jobs:             map[string]domain.Job{},
			files:            map[string]domain.File{},
			computeResources: map[string]domain.ComputeResource{},
			nodes:            map[nodeKey]domain.ComputeResourceNode{},
			workspaces:       map[string]domain.Workspace{},
			projects:         map[string]domain.Project{},
		},
	}
}

func (d *Database) Jobs() kjob.Interface {
	return (*jobs)(d.s)
}

func (d *Database) Files() kfile.Interface {
	return (*files)(d.s)
}

func (d *Database) ComputeResources() kcr.Interface {
	return (*computeResources)(d.s)
}

func (d *Database) Workspaces() kworkspace.Interface {
	return (*workspaces)(d.s)
}

func (d *Database) Schema() kschema.SchemaInterface {
	return nullSchema{}
}

func (d *Database) Close() error {
	return nil
}

// PutWorkspace creates or replaces a workspace.
func (d *Database) PutWorkspace(w domain.Workspace) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	w.Users = slices.Clone(w.Users)
	d.s.workspaces[w.WorkspaceId] = w
}

// PutProject creates or replaces a project.
func (d *Database) PutProject(p domain.Project) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	d.s.projects[p.ProjectId] = p
}

func missing(kind string, id string) error {
	return fmt.Errorf("%w: %s %s", domerr.ErrMissing, kind, id)
}

func conflict(kind string, id string, reason string) error {
	return fmt.Errorf("%w: %s %s: %s", domerr.ErrConflict, kind, id, reason)
}

func cloneJob(j domain.Job) domain.Job {
	c := j.WithoutPrivateKey()
	c.JobPrivateKey = j.JobPrivateKey
	return c
}

func cloneFile(f domain.File) domain.File {
	f.Metadata = maps.Clone(f.Metadata)
	return f
}

func cloneComputeResource(c domain.ComputeResource) domain.ComputeResource {
	c.Apps = slices.Clone(c.Apps)
	if c.Spec != nil {
		s := *c.Spec
		s.Apps = slices.Clone(s.Apps)
		c.Spec = &s
	}
	return c
}

type jobs store

func (s *jobs) Insert(ctx context.Context, job domain.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[job.JobId]; ok {
		return xe.Wrap(conflict("job", job.JobId, "already exists"))
	}
	s.jobs[job.JobId] = cloneJob(job)
	return nil
}

func (s *jobs) Get(ctx context.Context, jobId string) (domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobId]
	if !ok {
		return domain.Job{}, xe.Wrap(missing("job", jobId))
	}
	return cloneJob(j), nil
}

func (s *jobs) Find(ctx context.Context, query domain.JobQuery) ([]domain.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []domain.Job{}
	for _, j := range s.jobs {
		if query.Match(j) {
			found = append(found, cloneJob(j))
		}
	}
	sort.Slice(found, func(i, k int) bool {
		a, b := found[i], found[k]
		if !a.TimestampCreated.Equal(b.TimestampCreated) {
			return a.TimestampCreated.Before(b.TimestampCreated)
		}
		return a.JobId < b.JobId
	})
	return found, nil
}

func (s *jobs) Delete(ctx context.Context, jobIds ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range jobIds {
		if _, ok := s.jobs[id]; ok {
			delete(s.jobs, id)
			n += 1
		}
	}
	return n, nil
}

func (s *jobs) UpdateStatus(ctx context.Context, jobId string, from domain.JobStatus, change domain.StatusChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobId]
	if !ok {
		return xe.Wrap(missing("job", jobId))
	}
	if j.Status != from {
		return xe.Wrap(conflict("job", jobId, fmt.Sprintf("status is %s, not %s", j.Status, from)))
	}
	s.jobs[jobId] = change.Apply(j)
	return nil
}

func (s *jobs) SetConsoleOutput(ctx context.Context, jobId string, consoleOutput string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[jobId]
	if !ok {
		return xe.Wrap(missing("job", jobId))
	}
	j.ConsoleOutput = consoleOutput
	s.jobs[jobId] = j
	return nil
}

type files store

func (s *files) Insert(ctx context.Context, file domain.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[file.FileId]; ok {
		return xe.Wrap(conflict("file", file.FileId, "already exists"))
	}
	for _, f := range s.files {
		if f.ProjectId == file.ProjectId && f.FileName == file.FileName {
			return xe.Wrap(conflict("file", file.FileName, "name is used in the project"))
		}
	}
	s.files[file.FileId] = cloneFile(file)
	return nil
}

func (s *files) Get(ctx context.Context, fileId string) (domain.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[fileId]
	if !ok {
		return domain.File{}, xe.Wrap(missing("file", fileId))
	}
	return cloneFile(f), nil
}

func (s *files) GetByName(ctx context.Context, projectId string, fileName string) (domain.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.ProjectId == projectId && f.FileName == fileName {
			return cloneFile(f), nil
		}
	}
	return domain.File{}, xe.Wrap(missing("file", projectId+"/"+fileName))
}

func (s *files) Find(ctx context.Context, projectId string) ([]domain.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []domain.File{}
	for _, f := range s.files {
		if f.ProjectId == projectId {
			found = append(found, cloneFile(f))
		}
	}
	sort.Slice(found, func(i, k int) bool { return found[i].FileName < found[k].FileName })
	return found, nil
}

func (s *files) Delete(ctx context.Context, fileIds ...string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, id := range fileIds {
		if _, ok := s.files[id]; ok {
			delete(s.files, id)
			n += 1
		}
	}
	return n, nil
}

type computeResources store

func (s *computeResources) Get(ctx context.Context, computeResourceId string) (domain.ComputeResource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.computeResources[computeResourceId]
	if !ok {
		return domain.ComputeResource{}, xe.Wrap(missing("compute resource", computeResourceId))
	}
	return cloneComputeResource(c), nil
}

func (s *computeResources) Register(ctx context.Context, computeResourceId string, ownerId string, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.computeResources[computeResourceId]
	if !ok {
		s.computeResources[computeResourceId] = domain.ComputeResource{
			ComputeResourceId: computeResourceId,
			OwnerId:           ownerId,
			Name:              name,
			TimestampCreated:  at,
		}
		return nil
	}
	if c.OwnerId != ownerId {
		return xe.Wrap(conflict("compute resource", computeResourceId, "registered by another user"))
	}
	c.Name = name
	s.computeResources[computeResourceId] = c
	return nil
}

func (s *computeResources) SetApps(ctx context.Context, computeResourceId string, apps []domain.App) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.computeResources[computeResourceId]
	if !ok {
		return xe.Wrap(missing("compute resource", computeResourceId))
	}
	c.Apps = slices.Clone(apps)
	s.computeResources[computeResourceId] = c
	return nil
}

func (s *computeResources) SetSpec(ctx context.Context, computeResourceId string, spec domain.ComputeResourceSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.computeResources[computeResourceId]
	if !ok {
		return xe.Wrap(missing("compute resource", computeResourceId))
	}
	spec.Apps = slices.Clone(spec.Apps)
	c.Spec = &spec
	s.computeResources[computeResourceId] = c
	return nil
}

func (s *computeResources) Heartbeat(ctx context.Context, node domain.ComputeResourceNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[nodeKey{node.ComputeResourceId, node.NodeId}] = node
	return nil
}

func (s *computeResources) Nodes(ctx context.Context, computeResourceId string) ([]domain.ComputeResourceNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	found := []domain.ComputeResourceNode{}
	for k, n := range s.nodes {
		if k.computeResourceId == computeResourceId {
			found = append(found, n)
		}
	}
	sort.Slice(found, func(i, k int) bool { return found[i].NodeId < found[k].NodeId })
	return found, nil
}

func (s *computeResources) PruneNodes(ctx context.Context, before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, node := range s.nodes {
		if node.TimestampLastActive.Before(before) {
			delete(s.nodes, k)
			n += 1
		}
	}
	return n, nil
}

type workspaces store

func (s *workspaces) Get(ctx context.Context, workspaceId string) (domain.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workspaces[workspaceId]
	if !ok {
		return domain.Workspace{}, xe.Wrap(missing("workspace", workspaceId))
	}
	w.Users = slices.Clone(w.Users)
	return w, nil
}

func (s *workspaces) GetProject(ctx context.Context, projectId string) (domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[projectId]
	if !ok {
		return domain.Project{}, xe.Wrap(missing("project", projectId))
	}
	return p, nil
}

func (s *workspaces) ProjectIds(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := slices.Collect(maps.Keys(s.projects))
	slices.Sort(ids)
	return ids, nil
}

type nullSchema struct{}

func (nullSchema) Upgrade(context.Context) error {
	return nil
}

func (nullSchema) Version(context.Context) (int, error) {
	return 0, nil
}

func (nullSchema) Latest() (int, error) {
	return 0, nil
}
