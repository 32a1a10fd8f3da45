package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediagen/internal/domain"
)

// JobRepositoryMemory implements domain.JobRepository in process memory.
type JobRepositoryMemory struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
	now  func() time.Time
}

// NewJobRepositoryMemory creates an empty in-memory job store.
func NewJobRepositoryMemory() *JobRepositoryMemory {
	return &JobRepositoryMemory{jobs: make(map[string]*domain.Job), now: time.Now}
}

// Create stores a new pending job and returns its id.
func (r *JobRepositoryMemory) Create(ctx context.Context, job *domain.Job) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	stored, err := prepareNewJob(job, r.now())
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[stored.ID]; exists {
		return "", fmt.Errorf("job %s already exists", stored.ID)
	}
	r.jobs[stored.ID] = stored
	job.ID = stored.ID
	job.Status = stored.Status
	job.CreatedAt = stored.CreatedAt
	job.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

// Update applies upd atomically with respect to other updates of the same job.
func (r *JobRepositoryMemory) Update(ctx context.Context, jobID string, upd domain.JobUpdate) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	next := job.Clone()
	if err := domain.ApplyJobUpdate(next, upd, r.now()); err != nil {
		return nil, err
	}
	r.jobs[jobID] = next
	return next.Clone(), nil
}

// Get returns a copy of the job.
func (r *JobRepositoryMemory) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return job.Clone(), nil
}

// ListActive returns every non-terminal job, oldest first.
func (r *JobRepositoryMemory) ListActive(ctx context.Context) ([]domain.Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Job
	for _, job := range r.jobs {
		if !job.Status.IsTerminal() {
			out = append(out, *job.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// prepareNewJob validates a job handed to Create and fills defaults.
func prepareNewJob(job *domain.Job, now time.Time) (*domain.Job, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}
	stored := job.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = domain.JobStatusPending
	}
	if stored.Status != domain.JobStatusPending {
		return nil, fmt.Errorf("%w: new job must be pending, got %s", domain.ErrInvalidTransition, stored.Status)
	}
	if stored.Result != nil || stored.Error != nil {
		return nil, fmt.Errorf("%w: new job cannot carry a result or error", domain.ErrInvalidTransition)
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt
	return stored, nil
}

var _ domain.JobRepository = (*JobRepositoryMemory)(nil)
