package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"mediagen/internal/domain"
	"mediagen/internal/infra"
)

const maxNameAttempts = 100

// ArtifactInput is a generated payload waiting to be persisted.
type ArtifactInput struct {
	Capability  domain.Capability
	Data        []byte
	ContentType string
	// Ext is used when ContentType does not map to a known extension.
	Ext      string
	Hint     string
	Metadata map[string]string
}

// PersisterOptions configures a Persister.
type PersisterOptions struct {
	Files   *FileStore
	Mirror  Mirror
	BaseURL string
	Logger  *infra.Logger
	Now     func() time.Time
}

// Persister writes artifacts locally, mirrors them when configured and
// renders an HTML snippet next to each one.
type Persister struct {
	files   *FileStore
	mirror  Mirror
	baseURL string
	logger  *infra.Logger
	now     func() time.Time
}

// NewPersister validates opts and builds a Persister.
func NewPersister(opts PersisterOptions) (*Persister, error) {
	if opts.Files == nil {
		return nil, errors.New("storage: file store is required")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	baseURL := "/" + strings.Trim(opts.BaseURL, "/")
	return &Persister{
		files:   opts.Files,
		mirror:  opts.Mirror,
		baseURL: baseURL,
		logger:  infra.LoggerOrDiscard(opts.Logger),
		now:     now,
	}, nil
}

// MirrorEnabled reports whether durable copies are uploaded.
func (p *Persister) MirrorEnabled() bool { return p.mirror != nil }

// Persist stores in.Data and returns the resulting Artifact. A mirror failure
// is logged and leaves DurableURL empty.
func (p *Persister) Persist(ctx context.Context, in ArtifactInput) (*domain.Artifact, error) {
	if len(in.Data) == 0 {
		return nil, errors.New("storage: artifact is empty")
	}
	capability := string(in.Capability)
	if capability == "" {
		return nil, errors.New("storage: capability is required")
	}
	createdAt := p.now()
	base := FileName(capability, createdAt, in.Hint, ExtensionFor(in.ContentType, in.Ext))

	var (
		key      string
		fileName string
		err      error
	)
	for n := 0; n < maxNameAttempts; n++ {
		fileName = withSuffix(base, n)
		key, err = p.files.Create(ctx, path.Join(capability, fileName), in.Data)
		if !errors.Is(err, ErrExists) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("storage: persist %s artifact: %w", capability, err)
	}

	artifact := &domain.Artifact{
		Capability:  in.Capability,
		FileName:    fileName,
		LocalPath:   p.files.Path(key),
		URL:         p.baseURL + "/" + key,
		ContentType: in.ContentType,
		Bytes:       int64(len(in.Data)),
		CreatedAt:   createdAt,
	}

	if p.mirror != nil {
		durable, err := p.mirror.Upload(ctx, fileName, in.Data, in.ContentType)
		if err != nil {
			p.logger.Warn().Err(err).
				Str("capability", capability).
				Str("file", fileName).
				Msg("artifact mirror failed; keeping local copy only")
		} else {
			artifact.DurableURL = durable
		}
	}

	p.writeSnippet(ctx, artifact, in)
	return artifact, nil
}

func (p *Persister) writeSnippet(ctx context.Context, artifact *domain.Artifact, in ArtifactInput) {
	src := artifact.DurableURL
	if src == "" {
		src = artifact.URL
	}
	html, err := RenderSnippet(ctx, Snippet{
		Capability: string(in.Capability),
		URL:        src,
		Title:      in.Hint,
		Metadata:   in.Metadata,
	})
	if err == nil {
		name := strings.TrimSuffix(artifact.FileName, path.Ext(artifact.FileName)) + ".html"
		var key string
		key, err = p.files.Write(ctx, path.Join(string(in.Capability), name), html)
		if err == nil {
			artifact.SnippetPath = p.baseURL + "/" + key
			return
		}
	}
	p.logger.Warn().Err(err).
		Str("capability", string(in.Capability)).
		Str("file", artifact.FileName).
		Msg("artifact snippet not written")
}
