package domain

import (
	"fmt"
	"strings"
	"time"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusSucceeded JobStatus = "succeeded"
	JobStatusFailed    JobStatus = "failed"
	JobStatusTimedOut  JobStatus = "timed_out"
)

// IsTerminal reports whether no further transition may occur from s.
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusSucceeded, JobStatusFailed, JobStatusTimedOut:
		return true
	default:
		return false
	}
}

func (s JobStatus) rank() int {
	switch s {
	case JobStatusPending:
		return 0
	case JobStatusRunning:
		return 1
	case JobStatusSucceeded, JobStatusFailed, JobStatusTimedOut:
		return 2
	default:
		return -1
	}
}

// ParseJobStatus validates a stored status string.
func ParseJobStatus(raw string) (JobStatus, error) {
	s := JobStatus(strings.TrimSpace(raw))
	if s.rank() < 0 {
		return "", fmt.Errorf("unknown job status %q", raw)
	}
	return s, nil
}

// Job encapsulates the lifecycle of an asynchronous generation request.
type Job struct {
	ID             string
	Capability     Capability
	Status         JobStatus
	ExternalID     string
	Result         *ArtifactRef
	Error          *string
	ProviderStatus string
	Attempts       int
	CorrelationID  string
	Request        map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Clone returns a deep-enough copy for handing out of a store.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	out := *j
	if j.Result != nil {
		ref := *j.Result
		out.Result = &ref
	}
	if j.Error != nil {
		msg := *j.Error
		out.Error = &msg
	}
	if j.Request != nil {
		out.Request = make(map[string]any, len(j.Request))
		for k, v := range j.Request {
			out.Request[k] = v
		}
	}
	return &out
}

// JobUpdate carries a requested mutation. Nil fields are left untouched.
type JobUpdate struct {
	Status         JobStatus
	Attempts       *int
	ProviderStatus *string
	Result         *ArtifactRef
	Error          *string
}

// ApplyJobUpdate validates upd against job and applies it in place. Status may
// only move forward (pending, running, terminal) and a terminal job never
// changes again. Terminal jobs carry exactly one of Result or Error.
func ApplyJobUpdate(job *Job, upd JobUpdate, now time.Time) error {
	if job == nil {
		return ErrNotFound
	}
	if job.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrJobTerminal, job.ID, job.Status)
	}
	next := upd.Status
	if next == "" {
		next = job.Status
	}
	if next.rank() < 0 {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}
	if next.rank() < job.Status.rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, next)
	}
	if job.Status == JobStatusPending && next.IsTerminal() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, job.Status, next)
	}
	if upd.Attempts != nil && *upd.Attempts < job.Attempts {
		return fmt.Errorf("%w: attempts %d -> %d", ErrInvalidTransition, job.Attempts, *upd.Attempts)
	}
	switch next {
	case JobStatusSucceeded:
		if upd.Result == nil || upd.Error != nil {
			return fmt.Errorf("%w: succeeded requires a result and no error", ErrInvalidTransition)
		}
	case JobStatusFailed, JobStatusTimedOut:
		if upd.Error == nil || strings.TrimSpace(*upd.Error) == "" || upd.Result != nil {
			return fmt.Errorf("%w: %s requires an error and no result", ErrInvalidTransition, next)
		}
	default:
		if upd.Result != nil || upd.Error != nil {
			return fmt.Errorf("%w: %s cannot carry a result or error", ErrInvalidTransition, next)
		}
	}

	job.Status = next
	if upd.Attempts != nil {
		job.Attempts = *upd.Attempts
	}
	if upd.ProviderStatus != nil {
		job.ProviderStatus = *upd.ProviderStatus
	}
	if upd.Result != nil {
		ref := *upd.Result
		job.Result = &ref
	}
	if upd.Error != nil {
		msg := *upd.Error
		job.Error = &msg
	}
	job.UpdatedAt = now
	return nil
}
