// Package events publishes job lifecycle notifications.
package events

import (
	"context"
	"time"

	"mediagen/internal/domain"
)

// JobEvent is emitted when a job reaches a terminal status.
type JobEvent struct {
	JobID          string              `json:"jobId"`
	Capability     domain.Capability   `json:"capability"`
	Status         domain.JobStatus    `json:"status"`
	ExternalID     string              `json:"externalId,omitempty"`
	ProviderStatus string              `json:"providerStatus,omitempty"`
	Attempts       int                 `json:"attempts"`
	Result         *domain.ArtifactRef `json:"result,omitempty"`
	Error          string              `json:"error,omitempty"`
	CorrelationID  string              `json:"correlationId,omitempty"`
	OccurredAt     time.Time           `json:"occurredAt"`
}

// NewJobEvent snapshots job.
func NewJobEvent(job *domain.Job) JobEvent {
	ev := JobEvent{
		JobID:          job.ID,
		Capability:     job.Capability,
		Status:         job.Status,
		ExternalID:     job.ExternalID,
		ProviderStatus: job.ProviderStatus,
		Attempts:       job.Attempts,
		Result:         job.Result,
		CorrelationID:  job.CorrelationID,
		OccurredAt:     job.UpdatedAt,
	}
	if job.Error != nil {
		ev.Error = *job.Error
	}
	return ev
}

// Publisher delivers job events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, ev JobEvent) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, JobEvent) error { return nil }

func (Noop) Close() error { return nil }
