// Package poller drives asynchronous video jobs to a terminal status.
package poller

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"mediagen/internal/domain"
	"mediagen/internal/events"
	"mediagen/internal/infra"
	"mediagen/internal/providers"
	"mediagen/internal/storage"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultMaxAttempts = 60
)

// ArtifactPersister stores a finished video.
type ArtifactPersister interface {
	Persist(ctx context.Context, in storage.ArtifactInput) (*domain.Artifact, error)
}

// Options configures a Poller.
type Options struct {
	Jobs        domain.JobRepository
	Video       providers.VideoGenerator
	Persister   ArtifactPersister
	Events      events.Publisher
	Clock       Clock
	Interval    time.Duration
	MaxAttempts int
	Logger      *infra.Logger
}

// Poller checks remote video jobs at a fixed interval until they finish or
// exhaust their attempt budget.
type Poller struct {
	jobs        domain.JobRepository
	video       providers.VideoGenerator
	persister   ArtifactPersister
	events      events.Publisher
	clock       Clock
	interval    time.Duration
	maxAttempts int
	logger      *infra.Logger

	group  singleflight.Group
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// New validates opts and builds a Poller.
func New(opts Options) (*Poller, error) {
	if opts.Jobs == nil {
		return nil, errors.New("poller: job repository is required")
	}
	if opts.Persister == nil {
		return nil, errors.New("poller: persister is required")
	}
	p := &Poller{
		jobs:        opts.Jobs,
		video:       opts.Video,
		persister:   opts.Persister,
		events:      opts.Events,
		clock:       opts.Clock,
		interval:    opts.Interval,
		maxAttempts: opts.MaxAttempts,
		logger:      infra.LoggerOrDiscard(opts.Logger),
	}
	if p.events == nil {
		p.events = events.Noop{}
	}
	if p.clock == nil {
		p.clock = RealClock()
	}
	if p.interval <= 0 {
		p.interval = DefaultInterval
	}
	if p.maxAttempts <= 0 {
		p.maxAttempts = DefaultMaxAttempts
	}
	p.ctx, p.cancel = context.WithCancel(context.Background())
	return p, nil
}

// Start polls jobID in the background. A job that already has an active loop
// is not polled twice.
func (p *Poller) Start(jobID string) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		_, _, _ = p.group.Do(jobID, func() (any, error) {
			err := p.Run(p.ctx, jobID)
			if err != nil && !errors.Is(err, context.Canceled) {
				p.logger.Error().Err(err).Str("job_id", jobID).Msg("poll loop ended with error")
			}
			return nil, err
		})
	}()
}

// Resume restarts polling for every non-terminal job in the store.
func (p *Poller) Resume(ctx context.Context) (int, error) {
	active, err := p.jobs.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("poller: list active jobs: %w", err)
	}
	n := 0
	for _, job := range active {
		if job.Capability != domain.CapabilityVideo || job.ExternalID == "" {
			continue
		}
		p.Start(job.ID)
		n++
	}
	return n, nil
}

// Stop cancels running loops and waits for them to return.
func (p *Poller) Stop() {
	p.cancel()
	p.wg.Wait()
}

// Wait blocks until every started loop has returned.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// Run polls jobID in the calling goroutine until the job is terminal.
func (p *Poller) Run(ctx context.Context, jobID string) error {
	if p.video == nil {
		return &domain.ProviderUnavailableError{Capability: domain.CapabilityVideo}
	}
	job, err := p.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("poller: load job %s: %w", jobID, err)
	}
	if job.Status.IsTerminal() {
		return nil
	}
	log := p.logger.With().
		Str("job_id", job.ID).
		Str("external_id", job.ExternalID).
		Str("correlation_id", job.CorrelationID).
		Logger()

	attempts := job.Attempts
	lastStatus := job.ProviderStatus
	for attempts < p.maxAttempts {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(p.interval):
		}
		attempts++

		status, err := p.video.VideoStatus(ctx, job.ExternalID)
		if err != nil {
			if !domain.IsTransient(err) {
				return p.finishFailed(ctx, job, attempts, fmt.Sprintf("status check failed (last provider status: %s): %v", orUnknown(lastStatus), err))
			}
			log.Warn().Err(err).Int("attempt", attempts).Msg("video status check failed; will retry")
			if job, err = p.progress(ctx, job.ID, attempts, nil); err != nil {
				return err
			}
			continue
		}

		lastStatus = status.ProviderStatus
		if job, err = p.progress(ctx, job.ID, attempts, &lastStatus); err != nil {
			return err
		}
		log.Debug().Int("attempt", attempts).Str("provider_status", lastStatus).Msg("video status checked")

		switch status.State {
		case providers.VideoStateSucceeded:
			return p.finishSucceeded(ctx, job, attempts, status)
		case providers.VideoStateFailed:
			detail := status.Error
			if detail == "" {
				detail = "no detail"
			}
			return p.finishFailed(ctx, job, attempts, fmt.Sprintf("video generation failed (provider status: %s): %s", orUnknown(lastStatus), detail))
		}
	}

	msg := fmt.Sprintf("video generation timed out after %d status checks (last provider status: %s)", attempts, orUnknown(lastStatus))
	return p.finish(ctx, job, domain.JobUpdate{Status: domain.JobStatusTimedOut, Attempts: &attempts, Error: &msg})
}

func (p *Poller) progress(ctx context.Context, jobID string, attempts int, providerStatus *string) (*domain.Job, error) {
	job, err := p.jobs.Update(ctx, jobID, domain.JobUpdate{
		Status:         domain.JobStatusRunning,
		Attempts:       &attempts,
		ProviderStatus: providerStatus,
	})
	if err != nil {
		return nil, fmt.Errorf("poller: update job %s: %w", jobID, err)
	}
	return job, nil
}

func (p *Poller) finishSucceeded(ctx context.Context, job *domain.Job, attempts int, status *providers.VideoStatus) error {
	data, contentType, err := p.video.Download(ctx, status.OutputURL)
	if err != nil {
		return p.finishFailed(ctx, job, attempts, fmt.Sprintf("download video output: %v", err))
	}
	if !strings.HasPrefix(contentType, "video/") {
		contentType = "video/mp4"
	}
	prompt, _ := job.Request["prompt"].(string)
	artifact, err := p.persister.Persist(ctx, storage.ArtifactInput{
		Capability:  domain.CapabilityVideo,
		Data:        data,
		ContentType: contentType,
		Ext:         "mp4",
		Hint:        prompt,
		Metadata: map[string]string{
			"prompt": prompt,
			"jobId":  job.ID,
		},
	})
	if err != nil {
		return p.finishFailed(ctx, job, attempts, fmt.Sprintf("persist video output: %v", err))
	}
	return p.finish(ctx, job, domain.JobUpdate{Status: domain.JobStatusSucceeded, Attempts: &attempts, Result: artifact.Ref()})
}

func (p *Poller) finishFailed(ctx context.Context, job *domain.Job, attempts int, msg string) error {
	return p.finish(ctx, job, domain.JobUpdate{Status: domain.JobStatusFailed, Attempts: &attempts, Error: &msg})
}

// finish moves job to a terminal status, passing through running when the
// job never got that far.
func (p *Poller) finish(ctx context.Context, job *domain.Job, upd domain.JobUpdate) error {
	if job.Status == domain.JobStatusPending {
		var err error
		if job, err = p.progress(ctx, job.ID, *upd.Attempts, nil); err != nil {
			return err
		}
	}
	updated, err := p.jobs.Update(ctx, job.ID, upd)
	if err != nil {
		return fmt.Errorf("poller: finish job %s: %w", job.ID, err)
	}
	evt := p.logger.Info()
	if updated.Status != domain.JobStatusSucceeded {
		evt = p.logger.Warn()
		if updated.Error != nil {
			evt = evt.Str("error", *updated.Error)
		}
	}
	evt.Str("job_id", updated.ID).
		Str("correlation_id", updated.CorrelationID).
		Str("status", string(updated.Status)).
		Int("attempts", updated.Attempts).
		Msg("video job finished")
	if err := p.events.Publish(ctx, events.NewJobEvent(updated)); err != nil {
		p.logger.Warn().Err(err).Str("job_id", updated.ID).Msg("publish job event failed")
	}
	return nil
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
