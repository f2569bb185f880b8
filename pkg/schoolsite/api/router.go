package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// RouterConfig holds everything the HTTP surface needs
type RouterConfig struct {
	Service schoolsite.Service
	Logger  *slog.Logger

	CORS            CORSConfig
	NormalizeOrigin func(string) string

	// AdminSecret guards /admin/api with HS256 bearer tokens when set
	AdminSecret string

	// MediaURL and MediaRoot serve locally stored media when MediaURL is a
	// path such as "/media/"
	MediaURL  string
	MediaRoot string

	// Debug exposes /api/debug-config
	Debug bool
}

// DebugConfigResponse shows the effective CORS setup without secrets
type DebugConfigResponse struct {
	CORSAllowedOrigins []string `json:"cors_allowed_origins"`
	CORSAllowAll       bool     `json:"cors_allow_all"`
	Debug              bool     `json:"debug"`
}

// NewRouter mounts the public API, the admin API and local media
func NewRouter(cfg RouterConfig) http.Handler {
	public := NewPublicHandler(cfg.Service)
	adminHandler := NewAdminHandler(cfg.Service)

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(RecoveryMiddleware)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(CORSMiddleware(cfg.CORS, cfg.NormalizeOrigin))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Get("/health", public.Health)
		r.Mount("/content", public.ContentRoutes())
		r.Mount("/achievements", public.AchievementRoutes())
		if cfg.Debug {
			r.Get("/debug-config", func(w http.ResponseWriter, r *http.Request) {
				render.JSON(w, r, DebugConfigResponse{
					CORSAllowedOrigins: cfg.CORS.AllowedOrigins,
					CORSAllowAll:       cfg.CORS.AllowAll,
					Debug:              cfg.Debug,
				})
			})
		}
	})

	r.With(AdminAuth(cfg.AdminSecret)).Mount("/admin/api", adminHandler.Routes())

	if prefix, ok := mediaPrefix(cfg.MediaURL); ok && cfg.MediaRoot != "" {
		fs := http.StripPrefix(prefix, http.FileServer(http.Dir(cfg.MediaRoot)))
		r.Get(prefix+"*", fs.ServeHTTP)
	}

	return r
}

// mediaPrefix returns "/media/" for relative media URLs; absolute URLs are
// served elsewhere
func mediaPrefix(mediaURL string) (string, bool) {
	trimmed := strings.Trim(mediaURL, "/")
	if trimmed == "" || strings.Contains(mediaURL, "://") {
		return "", false
	}
	return "/" + trimmed + "/", true
}
