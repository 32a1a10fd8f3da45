package domain

import "time"

// Artifact is a generated payload after it has been persisted.
type Artifact struct {
	Capability  Capability
	FileName    string
	LocalPath   string
	URL         string
	DurableURL  string
	ContentType string
	Bytes       int64
	SnippetPath string
	CreatedAt   time.Time
}

// Ref returns the locator stored on a job.
func (a *Artifact) Ref() *ArtifactRef {
	if a == nil {
		return nil
	}
	return &ArtifactRef{
		FileName:    a.FileName,
		LocalPath:   a.LocalPath,
		URL:         a.URL,
		DurableURL:  a.DurableURL,
		ContentType: a.ContentType,
		SnippetPath: a.SnippetPath,
	}
}

// ArtifactRef locates a persisted artifact.
type ArtifactRef struct {
	FileName    string `json:"fileName"`
	LocalPath   string `json:"localPath"`
	URL         string `json:"url,omitempty"`
	DurableURL  string `json:"durableUrl,omitempty"`
	ContentType string `json:"contentType,omitempty"`
	SnippetPath string `json:"snippetPath,omitempty"`
}
