package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"mediagen/internal/domain"
)

const jobSchema = `
CREATE TABLE IF NOT EXISTS media_jobs (
    id              TEXT PRIMARY KEY,
    capability      TEXT NOT NULL,
    status          TEXT NOT NULL,
    external_id     TEXT NOT NULL DEFAULT '',
    result_json     JSONB,
    error_message   TEXT,
    provider_status TEXT NOT NULL DEFAULT '',
    attempts        INTEGER NOT NULL DEFAULT 0,
    correlation_id  TEXT NOT NULL DEFAULT '',
    request_json    JSONB,
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS media_jobs_active_idx ON media_jobs (created_at)
    WHERE status IN ('pending', 'running');
`

const jobColumns = `id, capability, status, external_id, result_json, error_message, provider_status, attempts, correlation_id, request_json, created_at, updated_at`

// JobRepositoryPG implements domain.JobRepository.
type JobRepositoryPG struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewJobRepository creates a new job repository backed by PostgreSQL.
func NewJobRepository(pool *pgxpool.Pool) *JobRepositoryPG {
	return &JobRepositoryPG{pool: pool, now: time.Now}
}

// EnsureSchema creates the jobs table when it does not exist.
func (r *JobRepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, jobSchema); err != nil {
		return fmt.Errorf("job repo: ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new job record.
func (r *JobRepositoryPG) Create(ctx context.Context, job *domain.Job) (string, error) {
	stored, err := prepareNewJob(job, r.now().UTC())
	if err != nil {
		return "", err
	}
	requestJSON, err := marshalNullable(stored.Request)
	if err != nil {
		return "", fmt.Errorf("job repo: encode request: %w", err)
	}
	query := `
INSERT INTO media_jobs (id, capability, status, external_id, provider_status, attempts, correlation_id, request_json, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`
	_, err = r.pool.Exec(ctx, query,
		stored.ID,
		string(stored.Capability),
		string(stored.Status),
		stored.ExternalID,
		stored.ProviderStatus,
		stored.Attempts,
		stored.CorrelationID,
		requestJSON,
		stored.CreatedAt,
		stored.UpdatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("job repo: insert: %w", err)
	}
	job.ID = stored.ID
	job.Status = stored.Status
	job.CreatedAt = stored.CreatedAt
	job.UpdatedAt = stored.UpdatedAt
	return stored.ID, nil
}

// Update locks the row, validates the transition and writes it back in one transaction.
func (r *JobRepositoryPG) Update(ctx context.Context, jobID string, upd domain.JobUpdate) (*domain.Job, error) {
	var updated *domain.Job
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		job, err := scanJob(tx.QueryRow(ctx, `SELECT `+jobColumns+` FROM media_jobs WHERE id = $1 FOR UPDATE;`, jobID))
		if err != nil {
			return err
		}
		if err := domain.ApplyJobUpdate(job, upd, r.now().UTC()); err != nil {
			return err
		}
		resultJSON, err := marshalNullable(job.Result)
		if err != nil {
			return fmt.Errorf("job repo: encode result: %w", err)
		}
		_, err = tx.Exec(ctx, `
UPDATE media_jobs
SET status = $2,
    attempts = $3,
    provider_status = $4,
    result_json = $5,
    error_message = $6,
    updated_at = $7
WHERE id = $1;
`, job.ID, string(job.Status), job.Attempts, job.ProviderStatus, resultJSON, job.Error, job.UpdatedAt)
		if err != nil {
			return fmt.Errorf("job repo: update: %w", err)
		}
		updated = job
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get fetches a job by its identifier.
func (r *JobRepositoryPG) Get(ctx context.Context, jobID string) (*domain.Job, error) {
	return scanJob(r.pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM media_jobs WHERE id = $1;`, jobID))
}

// ListActive returns pending and running jobs, oldest first.
func (r *JobRepositoryPG) ListActive(ctx context.Context) ([]domain.Job, error) {
	rows, err := r.pool.Query(ctx, `
SELECT `+jobColumns+`
FROM media_jobs
WHERE status IN ('pending', 'running')
ORDER BY created_at ASC;
`)
	if err != nil {
		return nil, fmt.Errorf("job repo: list active: %w", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func scanJob(row pgx.Row) (*domain.Job, error) {
	var (
		job         domain.Job
		capability  string
		status      string
		resultJSON  []byte
		requestJSON []byte
	)
	if err := row.Scan(
		&job.ID,
		&capability,
		&status,
		&job.ExternalID,
		&resultJSON,
		&job.Error,
		&job.ProviderStatus,
		&job.Attempts,
		&job.CorrelationID,
		&requestJSON,
		&job.CreatedAt,
		&job.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	parsed, err := domain.ParseJobStatus(status)
	if err != nil {
		return nil, err
	}
	job.Status = parsed
	job.Capability = domain.Capability(capability)
	if len(resultJSON) > 0 {
		var ref domain.ArtifactRef
		if err := json.Unmarshal(resultJSON, &ref); err != nil {
			return nil, fmt.Errorf("job repo: decode result: %w", err)
		}
		job.Result = &ref
	}
	if len(requestJSON) > 0 {
		if err := json.Unmarshal(requestJSON, &job.Request); err != nil {
			return nil, fmt.Errorf("job repo: decode request: %w", err)
		}
	}
	return &job, nil
}

func marshalNullable(v any) ([]byte, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *domain.ArtifactRef:
		if t == nil {
			return nil, nil
		}
	case map[string]any:
		if len(t) == 0 {
			return nil, nil
		}
	}
	return json.Marshal(v)
}

var _ domain.JobRepository = (*JobRepositoryPG)(nil)
