package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"mediagen/internal/http/handlers"
	"mediagen/internal/infra"
	"mediagen/internal/middleware"
)

// RouterConfig carries the route layout.
type RouterConfig struct {
	MediaPathPrefix string
	ArtifactBaseURL string
	ArtifactDir     string
	CORSOrigins     []string
	RateLimitPerMin int
}

// RouterConfigFrom maps application config onto the router layout.
func RouterConfigFrom(cfg *infra.Config) RouterConfig {
	return RouterConfig{
		MediaPathPrefix: cfg.MediaPathPrefix,
		ArtifactBaseURL: cfg.ArtifactBaseURL,
		ArtifactDir:     cfg.ArtifactDir,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}
}

func NewRouter(app *handlers.App, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Recoverer(*app.Logger),
		middleware.Logger(*app.Logger),
		middleware.CORS(cfg.CORSOrigins),
	)

	prefix := "/" + strings.Trim(cfg.MediaPathPrefix, "/")
	r.Route(prefix, func(r chi.Router) {
		r.Get("/health", app.Health)
		r.Get("/video/status/{jobId}", app.VideoStatus)
		r.Get("/call/twiml", app.CallTwiML)
		r.Post("/call/twiml", app.CallTwiML)

		// Generation routes reach paid providers.
		r.Group(func(r chi.Router) {
			if cfg.RateLimitPerMin > 0 {
				r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
			}
			r.Post("/image", app.GenerateImage)
			r.Post("/video", app.GenerateVideo)
			r.Post("/tts", app.TextToSpeech)
			r.Post("/chat", app.Chat)
			r.Post("/call/place", app.PlaceCall)
		})
	})

	if cfg.ArtifactDir != "" {
		base := "/" + strings.Trim(cfg.ArtifactBaseURL, "/")
		fs := http.StripPrefix(base, http.FileServer(http.Dir(cfg.ArtifactDir)))
		r.Get(base+"/*", fs.ServeHTTP)
	}

	return r
}
