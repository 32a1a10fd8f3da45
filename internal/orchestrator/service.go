// Package orchestrator validates generation requests, dispatches them to the
// configured providers and persists what they produce.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediagen/internal/domain"
	"mediagen/internal/infra"
	"mediagen/internal/providers"
	"mediagen/internal/storage"
)

// ArtifactPersister stores generated payloads.
type ArtifactPersister interface {
	Persist(ctx context.Context, in storage.ArtifactInput) (*domain.Artifact, error)
}

// JobStarter begins background polling of a video job.
type JobStarter interface {
	Start(jobID string)
}

// Options configures a Service.
type Options struct {
	Registry      *providers.Registry
	Jobs          domain.JobRepository
	Conversations domain.ConversationRepository
	Persister     ArtifactPersister
	Poller        JobStarter
	Scripts       *ScriptStore
	Retry         RetryPolicy
	Logger        *infra.Logger
	Now           func() time.Time
	NewID         func() string
	// PublicBaseURL is the externally reachable origin used in call script URLs.
	PublicBaseURL string
	// ScriptPath is the route serving call scripts, e.g. /api/media/call/twiml.
	ScriptPath string
}

// Service is the orchestration entry point used by the HTTP handlers.
type Service struct {
	registry      *providers.Registry
	jobs          domain.JobRepository
	conversations domain.ConversationRepository
	persister     ArtifactPersister
	poller        JobStarter
	scripts       *ScriptStore
	retry         RetryPolicy
	logger        *infra.Logger
	now           func() time.Time
	newID         func() string
	publicBaseURL string
	scriptPath    string
}

// New validates opts and builds a Service.
func New(opts Options) (*Service, error) {
	if opts.Registry == nil {
		return nil, errors.New("orchestrator: registry is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("orchestrator: job repository is required")
	}
	if opts.Conversations == nil {
		return nil, errors.New("orchestrator: conversation repository is required")
	}
	if opts.Persister == nil {
		return nil, errors.New("orchestrator: persister is required")
	}
	if opts.Poller == nil {
		return nil, errors.New("orchestrator: poller is required")
	}
	s := &Service{
		registry:      opts.Registry,
		jobs:          opts.Jobs,
		conversations: opts.Conversations,
		persister:     opts.Persister,
		poller:        opts.Poller,
		scripts:       opts.Scripts,
		retry:         opts.Retry,
		logger:        infra.LoggerOrDiscard(opts.Logger),
		now:           opts.Now,
		newID:         opts.NewID,
		publicBaseURL: strings.TrimRight(opts.PublicBaseURL, "/"),
		scriptPath:    "/" + strings.Trim(opts.ScriptPath, "/"),
	}
	if s.scripts == nil {
		s.scripts = NewScriptStore(DefaultScriptTTL)
	}
	if s.retry.Attempts <= 0 {
		s.retry = DefaultRetryPolicy()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if opts.ScriptPath == "" {
		s.scriptPath = "/call/twiml"
	}
	return s, nil
}

// opLogger returns a logger carrying the request's capability and correlation id.
func (s *Service) opLogger(c domain.Capability, correlationID string) infra.Logger {
	return s.logger.With().
		Str("capability", string(c)).
		Str("correlation_id", correlationID).
		Logger()
}

// fail logs err at error level and returns it unchanged. Validation errors are
// logged at warn level since the caller is at fault.
func fail(log infra.Logger, err error, msg string) error {
	if errors.Is(err, domain.ErrValidation) {
		log.Warn().Err(err).Msg(msg)
		return err
	}
	log.Error().Err(err).Msg(msg)
	return err
}
