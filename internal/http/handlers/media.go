package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mediagen/internal/domain"
	"mediagen/internal/middleware"
	"mediagen/internal/orchestrator"
)

type artifactResponse struct {
	Success     bool   `json:"success"`
	FileName    string `json:"fileName"`
	LocalPath   string `json:"localPath"`
	URL         string `json:"url"`
	DurableURL  string `json:"durableUrl,omitempty"`
	SnippetPath string `json:"snippetPath,omitempty"`
}

func newArtifactResponse(a *domain.Artifact) artifactResponse {
	return artifactResponse{
		Success:     true,
		FileName:    a.FileName,
		LocalPath:   a.LocalPath,
		URL:         a.URL,
		DurableURL:  a.DurableURL,
		SnippetPath: a.SnippetPath,
	}
}

type videoJobResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
	Status  string `json:"status"`
}

type videoStatusResponse struct {
	Success        bool   `json:"success"`
	JobID          string `json:"jobId"`
	Status         string `json:"status"`
	Attempts       int    `json:"attempts"`
	ProviderStatus string `json:"providerStatus,omitempty"`
	LocalPath      string `json:"localPath,omitempty"`
	URL            string `json:"url,omitempty"`
	DurableURL     string `json:"durableUrl,omitempty"`
	SnippetPath    string `json:"snippetPath,omitempty"`
	Error          string `json:"error,omitempty"`
}

type chatResponse struct {
	Success        bool   `json:"success"`
	Response       string `json:"response"`
	ConversationID string `json:"conversationId"`
	MessageCount   int    `json:"messageCount"`
}

func (a *App) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.ImageInput
	if !a.decode(w, r, &in) {
		return
	}
	in.CorrelationID = middleware.RequestIDFromContext(r.Context())
	artifact, err := a.Service.GenerateImage(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, newArtifactResponse(artifact))
}

func (a *App) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.VideoInput
	if !a.decode(w, r, &in) {
		return
	}
	in.CorrelationID = middleware.RequestIDFromContext(r.Context())
	job, err := a.Service.StartVideo(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, videoJobResponse{Success: true, JobID: job.JobID, Status: string(job.Status)})
}

// VideoStatus reports success:true for any known job, including failed and
// timed out ones.
func (a *App) VideoStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		a.error(w, http.StatusBadRequest, "jobId required")
		return
	}
	job, err := a.Service.VideoStatus(r.Context(), jobID)
	if err != nil {
		a.fail(w, err)
		return
	}
	resp := videoStatusResponse{
		Success:        true,
		JobID:          job.ID,
		Status:         string(job.Status),
		Attempts:       job.Attempts,
		ProviderStatus: job.ProviderStatus,
	}
	if job.Result != nil {
		resp.LocalPath = job.Result.LocalPath
		resp.URL = job.Result.URL
		resp.DurableURL = job.Result.DurableURL
		resp.SnippetPath = job.Result.SnippetPath
	}
	if job.Error != nil {
		resp.Error = *job.Error
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) TextToSpeech(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.SpeechInput
	if !a.decode(w, r, &in) {
		return
	}
	in.CorrelationID = middleware.RequestIDFromContext(r.Context())
	artifact, err := a.Service.Synthesize(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, newArtifactResponse(artifact))
}

func (a *App) Chat(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.ChatInput
	if !a.decode(w, r, &in) {
		return
	}
	in.CorrelationID = middleware.RequestIDFromContext(r.Context())
	res, err := a.Service.Chat(r.Context(), in)
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, chatResponse{
		Success:        true,
		Response:       res.Reply,
		ConversationID: res.ConversationID,
		MessageCount:   res.MessageCount,
	})
}
