package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mediagen/internal/domain"
	"mediagen/internal/infra"
	"mediagen/internal/orchestrator"
)

// App exposes the orchestration service over HTTP.
type App struct {
	Service *orchestrator.Service
	Logger  *infra.Logger
}

func NewApp(svc *orchestrator.Service, logger *infra.Logger) *App {
	return &App{Service: svc, Logger: infra.LoggerOrDiscard(logger)}
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, errorResponse{Success: false, Error: msg})
}

// fail maps err onto an HTTP status. Provider details are passed through so
// callers see what the upstream service said.
func (a *App) fail(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "job not found")
	default:
		a.error(w, http.StatusInternalServerError, err.Error())
	}
}

// decode reads a JSON body into dst. A malformed body is a validation failure.
func (a *App) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.error(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
