package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/goayasushi/zaiko-be/internal/auth"
	"github.com/goayasushi/zaiko-be/internal/masterdata"
	"github.com/goayasushi/zaiko-be/internal/observability"
	"github.com/goayasushi/zaiko-be/internal/platform/httpx"
	"github.com/goayasushi/zaiko-be/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthMiddleware    *auth.Middleware
	AuthHandler       *auth.Handler
	MasterDataHandler *masterdata.Handler
	JobHandler        *jobs.Handler
	Readiness         http.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with zaiko defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Readiness != nil {
		r.Method(http.MethodGet, "/health/ready", params.Readiness)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(params.AuthMiddleware.Identify, params.AuthMiddleware.Refresh)
		r.Route("/api/auth", params.AuthHandler.MountRoutes)
		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireUser)
			if params.MasterDataHandler != nil {
				r.Route("/api/masters", params.MasterDataHandler.MountRoutes)
			}
			if params.JobHandler != nil {
				r.Route("/api/jobs", params.JobHandler.MountRoutes)
			}
		})
	})

	if params.Config != nil && params.Config.MediaRoot != "" && params.Config.MediaPrefix() != "" {
		prefix := params.Config.MediaPrefix()
		files := http.StripPrefix(prefix, http.FileServer(mediaDir(params.Config.MediaRoot)))
		r.Handle(strings.TrimSuffix(prefix, "/")+"/*", mediaCacheHandler(files))
	}

	return r
}

// mediaDir serves files but never directory listings.
type mediaDir string

func (d mediaDir) Open(name string) (http.File, error) {
	f, err := http.Dir(d).Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fs.ErrNotExist
	}
	return f, nil
}

// mediaCacheHandler marks stored images as immutable; keys are never reused.
func mediaCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		next.ServeHTTP(w, r)
	})
}
