package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// Resources maps URL segments to record kinds. Certificates are served
// separately under /api/achievements.
var Resources = map[string]schoolsite.Kind{
	"nav-links":    schoolsite.KindNavLink,
	"headers":      schoolsite.KindHeader,
	"hero-slides":  schoolsite.KindHeroSlide,
	"about":        schoolsite.KindAbout,
	"stats":        schoolsite.KindStat,
	"director":     schoolsite.KindDirector,
	"contact":      schoolsite.KindContactInfo,
	"footers":      schoolsite.KindFooter,
	"pages":        schoolsite.KindPage,
	"image-blocks": schoolsite.KindImageBlock,
}

// PublicHandler serves the read-only site API
type PublicHandler struct {
	service schoolsite.Service
	present presenter
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(service schoolsite.Service) *PublicHandler {
	return &PublicHandler{
		service: service,
		present: presenter{service: service},
	}
}

// ContentRoutes returns the routes mounted at /api/content
func (h *PublicHandler) ContentRoutes() chi.Router {
	r := chi.NewRouter()
	for segment, kind := range Resources {
		r.Get("/"+segment, func(w http.ResponseWriter, r *http.Request) {
			h.list(w, r, kind, schoolsite.ListFilter{})
		})
		r.Get("/"+segment+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			h.get(w, r, kind)
		})
	}
	return r
}

// AchievementRoutes returns the routes mounted at /api/achievements
func (h *PublicHandler) AchievementRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/certificates", h.ListCertificates)
	r.Get("/certificates/{id}", func(w http.ResponseWriter, r *http.Request) {
		h.get(w, r, schoolsite.KindCertificate)
	})
	return r
}

// ListCertificates lists certificates, optionally filtered by category and level
func (h *PublicHandler) ListCertificates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, schoolsite.KindCertificate, schoolsite.ListFilter{
		Category: q.Get("category"),
		Level:    q.Get("level"),
	})
}

// HealthResponse echoes the request origin to help debug CORS setups
type HealthResponse struct {
	OK     bool   `json:"ok"`
	Origin string `json:"origin"`
}

// Health reports liveness
func (h *PublicHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{OK: true, Origin: r.Header.Get("Origin")})
}

func (h *PublicHandler) list(w http.ResponseWriter, r *http.Request, kind schoolsite.Kind, filter schoolsite.ListFilter) {
	recs, err := h.service.List(r.Context(), kind, filter)
	if err != nil {
		slog.Error("Failed to list records", "kind", kind, "error", err)
		writeServiceError(w, r, err)
		return
	}
	resp, err := h.present.presentAll(r.Context(), recs)
	if err != nil {
		slog.Error("Failed to present records", "kind", kind, "error", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

func (h *PublicHandler) get(w http.ResponseWriter, r *http.Request, kind schoolsite.Kind) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp, err := h.present.present(r.Context(), rec)
	if err != nil {
		slog.Error("Failed to present record", "kind", kind, "id", id, "error", err)
		writeServiceError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusBadRequest, "invalid_id", "Invalid ID")
		return 0, false
	}
	return id, true
}
