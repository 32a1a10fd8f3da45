package orchestrator

import (
	"context"
	"fmt"

	"mediagen/internal/domain"
	"mediagen/internal/providers"
)

const defaultVideoDuration = 3

// VideoJob is the handle returned when a video job is accepted.
type VideoJob struct {
	JobID  string
	Status domain.JobStatus
}

// StartVideo creates a remote prediction, records a pending job and hands it
// to the poller.
func (s *Service) StartVideo(ctx context.Context, in VideoInput) (*VideoJob, error) {
	in.normalize()
	log := s.opLogger(domain.CapabilityVideo, in.CorrelationID)
	if err := validateInput(&in); err != nil {
		return nil, fail(log, err, "video request rejected")
	}
	if in.Duration == 0 {
		in.Duration = defaultVideoDuration
	}
	gen, err := s.registry.Video()
	if err != nil {
		return nil, fail(log, err, "video provider unavailable")
	}
	params := map[string]any{"prompt": in.Prompt, "duration": in.Duration}
	if in.Width > 0 {
		params["width"] = in.Width
	}
	if in.Height > 0 {
		params["height"] = in.Height
	}
	req := domain.NewGenerationRequest(domain.CapabilityVideo, in.CorrelationID, params)

	externalID, err := withRetry(ctx, s.retry, func(ctx context.Context) (string, error) {
		return gen.CreateVideo(ctx, providers.VideoRequest{
			Prompt:        in.Prompt,
			Duration:      in.Duration,
			Width:         in.Width,
			Height:        in.Height,
			CorrelationID: req.CorrelationID,
		})
	})
	if err != nil {
		return nil, fail(log, err, "video creation failed")
	}

	job := &domain.Job{
		Capability:    domain.CapabilityVideo,
		Status:        domain.JobStatusPending,
		ExternalID:    externalID,
		CorrelationID: req.CorrelationID,
		Request:       req.Params,
	}
	jobID, err := s.jobs.Create(ctx, job)
	if err != nil {
		return nil, fail(log, fmt.Errorf("orchestrator: create video job: %w", err), "video job not recorded")
	}
	s.poller.Start(jobID)
	log.Info().Str("job_id", jobID).Str("external_id", externalID).Msg("video job started")
	return &VideoJob{JobID: jobID, Status: domain.JobStatusPending}, nil
}

// VideoStatus returns the stored job. Unknown ids yield domain.ErrNotFound.
func (s *Service) VideoStatus(ctx context.Context, jobID string) (*domain.Job, error) {
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.Capability != domain.CapabilityVideo {
		return nil, domain.ErrNotFound
	}
	return job, nil
}
