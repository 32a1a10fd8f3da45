package repo

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mediagen/internal/domain"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func TestJobRepositoryMemoryLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepositoryMemory()

	job := &domain.Job{Capability: domain.CapabilityVideo, ExternalID: "pred-1", CorrelationID: "corr"}
	id, err := repo.Create(ctx, job)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" || job.ID != id {
		t.Fatalf("id = %q, job.ID = %q", id, job.ID)
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.JobStatusPending || got.ExternalID != "pred-1" {
		t.Fatalf("job = %+v", got)
	}

	if _, err := repo.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusRunning, Attempts: intPtr(1), ProviderStatus: strPtr("starting")}); err != nil {
		t.Fatalf("running: %v", err)
	}
	done, err := repo.Update(ctx, id, domain.JobUpdate{
		Status:   domain.JobStatusSucceeded,
		Attempts: intPtr(2),
		Result:   &domain.ArtifactRef{FileName: "video.mp4", LocalPath: "/tmp/video.mp4"},
	})
	if err != nil {
		t.Fatalf("succeeded: %v", err)
	}
	if done.Result == nil || done.Error != nil || done.Attempts != 2 {
		t.Fatalf("job = %+v", done)
	}

	if _, err := repo.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusFailed, Error: strPtr("late")}); !errors.Is(err, domain.ErrJobTerminal) {
		t.Fatalf("update after terminal = %v, want ErrJobTerminal", err)
	}
	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active = %d, want 0", len(active))
	}
}

func TestJobRepositoryMemoryGetUnknown(t *testing.T) {
	repo := NewJobRepositoryMemory()
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if _, err := repo.Update(context.Background(), "missing", domain.JobUpdate{}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestJobRepositoryMemoryRejectsNonPendingCreate(t *testing.T) {
	repo := NewJobRepositoryMemory()
	_, err := repo.Create(context.Background(), &domain.Job{Capability: domain.CapabilityVideo, Status: domain.JobStatusRunning})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("error = %v, want ErrInvalidTransition", err)
	}
}

func TestJobRepositoryMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepositoryMemory()
	id, _ := repo.Create(ctx, &domain.Job{Capability: domain.CapabilityVideo, Request: map[string]any{"prompt": "a"}})

	got, _ := repo.Get(ctx, id)
	got.Status = domain.JobStatusFailed
	got.Request["prompt"] = "mutated"

	again, _ := repo.Get(ctx, id)
	if again.Status != domain.JobStatusPending || again.Request["prompt"] != "a" {
		t.Fatalf("store leaked internal state: %+v", again)
	}
}

func TestJobRepositoryMemoryConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepositoryMemory()
	id, _ := repo.Create(ctx, &domain.Job{Capability: domain.CapabilityVideo})
	if _, err := repo.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusRunning}); err != nil {
		t.Fatalf("running: %v", err)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var upd domain.JobUpdate
			if i%2 == 0 {
				upd = domain.JobUpdate{Status: domain.JobStatusSucceeded, Result: &domain.ArtifactRef{FileName: "v.mp4"}}
			} else {
				upd = domain.JobUpdate{Status: domain.JobStatusFailed, Error: strPtr("boom")}
			}
			if _, err := repo.Update(ctx, id, upd); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("terminal transitions = %d, want exactly 1", successes)
	}
	job, _ := repo.Get(ctx, id)
	if (job.Result == nil) == (job.Error == nil) {
		t.Fatalf("terminal job must carry exactly one of result or error: %+v", job)
	}
}

func TestJobRepositoryMemoryListActiveOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepositoryMemory()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	second, _ := repo.Create(ctx, &domain.Job{Capability: domain.CapabilityVideo, CreatedAt: base.Add(time.Minute)})
	first, _ := repo.Create(ctx, &domain.Job{Capability: domain.CapabilityVideo, CreatedAt: base})

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 || active[0].ID != first || active[1].ID != second {
		t.Fatalf("active order = %+v", active)
	}
}
