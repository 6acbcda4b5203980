package report

import (
	"context"
	"sync"

	"github.com/j-veylop/backlog-workflow-dashboard/internal/logger"
	"github.com/j-veylop/backlog-workflow-dashboard/internal/models"
)

// ProjectDirectory resolves project ids to projects.
type ProjectDirectory struct {
	byID     map[int64]models.Project
	projects []models.Project
}

// NewProjectDirectory indexes projects by id.
func NewProjectDirectory(projects []models.Project) ProjectDirectory {
	dir := ProjectDirectory{
		byID:     make(map[int64]models.Project, len(projects)),
		projects: append([]models.Project(nil), projects...),
	}
	for _, p := range projects {
		dir.byID[p.ID] = p
	}
	return dir
}

// Lookup returns the project with id.
func (d ProjectDirectory) Lookup(id int64) (models.Project, bool) {
	p, ok := d.byID[id]
	return p, ok
}

// Projects returns the indexed projects in their original order.
func (d ProjectDirectory) Projects() []models.Project {
	return append([]models.Project(nil), d.projects...)
}

// Len returns the number of known projects.
func (d ProjectDirectory) Len() int {
	return len(d.projects)
}

// ProjectLister lists the projects visible to the user.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
}

// ProjectCache loads the project list once and keeps it until invalidated.
type ProjectCache struct {
	lister ProjectLister
	dir    *ProjectDirectory
	mu     sync.Mutex
}

// NewProjectCache creates an empty cache over lister.
func NewProjectCache(lister ProjectLister) *ProjectCache {
	return &ProjectCache{lister: lister}
}

// Directory returns the cached directory, loading it on first use. A failed
// load yields an empty directory and is retried on the next call.
func (c *ProjectCache) Directory(ctx context.Context) ProjectDirectory {
	dir, err := c.Load(ctx)
	if err != nil {
		logger.Warn("Project list unavailable; using raw project ids", "error", err)
	}
	return dir
}

// Load is Directory with the load error exposed.
func (c *ProjectCache) Load(ctx context.Context) (ProjectDirectory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dir != nil {
		return *c.dir, nil
	}

	projects, err := c.lister.ListProjects(ctx)
	if err != nil {
		return NewProjectDirectory(nil), err
	}
	dir := NewProjectDirectory(projects)
	c.dir = &dir
	return dir, nil
}

// Invalidate drops the cached list, e.g. after the credentials change.
func (c *ProjectCache) Invalidate() {
	c.mu.Lock()
	c.dir = nil
	c.mu.Unlock()
}
