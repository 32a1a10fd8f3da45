package repo

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"mediagen/internal/domain"
)

func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}

func TestJobRepositoryPGLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(newTestPool(t))
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}

	id, err := repo.Create(ctx, &domain.Job{
		Capability: domain.CapabilityVideo,
		ExternalID: "pred-pg",
		Request:    map[string]any{"prompt": "waves", "duration": float64(3)},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusRunning, Attempts: intPtr(1), ProviderStatus: strPtr("processing")}); err != nil {
		t.Fatalf("running: %v", err)
	}
	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	found := false
	for _, job := range active {
		if job.ID == id {
			found = true
		}
	}
	if !found {
		t.Fatalf("running job %s not listed as active", id)
	}

	if _, err := repo.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusTimedOut, Attempts: intPtr(60), Error: strPtr("timed out after 60 attempts (last status: processing)")}); err != nil {
		t.Fatalf("timed out: %v", err)
	}
	job, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if job.Status != domain.JobStatusTimedOut || job.Result != nil || job.Error == nil || job.Attempts != 60 {
		t.Fatalf("job = %+v", job)
	}
	if job.Request["prompt"] != "waves" {
		t.Fatalf("request = %+v", job.Request)
	}
	if _, err := repo.Update(ctx, id, domain.JobUpdate{Status: domain.JobStatusSucceeded, Result: &domain.ArtifactRef{FileName: "x"}}); !errors.Is(err, domain.ErrJobTerminal) {
		t.Fatalf("update after terminal = %v, want ErrJobTerminal", err)
	}
	if _, err := repo.Get(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("get unknown = %v, want ErrNotFound", err)
	}
}
