package api

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/schoolsite/pkg/schoolsite"
	"github.com/tendant/schoolsite/pkg/schoolsite/admin"
)

// maxFormMemory is the part of a multipart body kept in memory; the rest
// spills to temporary files.
const maxFormMemory = 32 << 20

// ImagesPrefix is the formset prefix of a page's image blocks
const ImagesPrefix = "images"

// AdminResources maps URL segments to record kinds for administrative saves
var AdminResources = func() map[string]schoolsite.Kind {
	out := map[string]schoolsite.Kind{"certificates": schoolsite.KindCertificate}
	for segment, kind := range Resources {
		out[segment] = kind
	}
	return out
}()

// SaveResponse is the response body of an administrative save
type SaveResponse struct {
	Record   any                  `json:"record"`
	Warnings []schoolsite.Warning `json:"warnings"`
}

// AdminHandler accepts multipart administrative submissions
type AdminHandler struct {
	service schoolsite.Service
	present presenter
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service schoolsite.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
		present: presenter{service: service},
	}
}

// Routes returns the routes mounted at /admin/api
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{resource}", h.Create)
	r.Put("/{resource}/{id}", h.Update)
	r.Delete("/{resource}/{id}", h.Delete)
	return r
}

// Create saves a new record from a multipart form
func (h *AdminHandler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	rec, err := schoolsite.NewRecord(kind)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.save(w, r, rec, http.StatusCreated)
}

// Update saves changes to an existing record
func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), kind, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.save(w, r, rec, http.StatusOK)
}

// Delete removes a record
func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	kind, ok := h.kind(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), kind, id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	slog.Info("Record deleted", "kind", kind, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) kind(w http.ResponseWriter, r *http.Request) (schoolsite.Kind, bool) {
	kind, ok := AdminResources[chi.URLParam(r, "resource")]
	if !ok {
		writeError(w, r, http.StatusNotFound, "not_found", "Unknown resource")
		return "", false
	}
	return kind, true
}

func (h *AdminHandler) save(w http.ResponseWriter, r *http.Request, rec schoolsite.Record, status int) {
	form, err := parseForm(r)
	if err != nil {
		slog.Error("Failed to parse form", "error", err)
		writeError(w, r, http.StatusBadRequest, "invalid_form", err.Error())
		return
	}
	defer form.Close()

	if err := admin.Bind(rec, form); err != nil {
		writeServiceError(w, r, err)
		return
	}

	var result *schoolsite.SaveResult
	if page, ok := rec.(*schoolsite.Page); ok {
		children, err := h.childForms(r, page, form)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		result, err = h.service.SavePage(r.Context(), page, form, children)
		if err != nil {
			slog.Error("Failed to save page", "slug", page.Slug, "error", err)
			writeServiceError(w, r, err)
			return
		}
	} else {
		result, err = h.service.SaveRecord(r.Context(), rec, form)
		if err != nil {
			slog.Error("Failed to save record", "kind", rec.Kind(), "error", err)
			writeServiceError(w, r, err)
			return
		}
	}

	var body any
	if page, ok := result.Record.(*schoolsite.Page); ok {
		body = h.present.page(page, result.Children)
	} else {
		body, err = h.present.present(r.Context(), result.Record)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
	}

	warnings := result.Warnings
	if warnings == nil {
		warnings = []schoolsite.Warning{}
	}
	for _, warn := range warnings {
		slog.Warn("Save completed with warning", "kind", warn.Kind, "field", warn.Field, "message", warn.Message)
	}
	slog.Info("Record saved", "kind", result.Record.Kind(), "id", result.Record.GetID())
	render.Status(r, status)
	render.JSON(w, r, SaveResponse{Record: body, Warnings: warnings})
}

// childForms builds the image block formset of a page. Rows carrying an "id"
// edit that block of the page; the rest create new blocks.
func (h *AdminHandler) childForms(r *http.Request, page *schoolsite.Page, form *admin.MultipartForm) ([]schoolsite.ChildForm, error) {
	rows, err := form.Children(ImagesPrefix)
	if err != nil {
		return nil, err
	}
	out := make([]schoolsite.ChildForm, 0, len(rows))
	for i, row := range rows {
		block := &schoolsite.ImageBlock{PageID: page.ID}
		if raw, ok := row.Value("id"); ok && raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, &schoolsite.ValidationError{Field: fmt.Sprintf("%s-%d-id", ImagesPrefix, i), Message: "must be an integer"}
			}
			rec, err := h.service.Get(r.Context(), schoolsite.KindImageBlock, id)
			if err != nil {
				return nil, err
			}
			block = rec.(*schoolsite.ImageBlock)
			if block.PageID != page.ID {
				return nil, fmt.Errorf("%w: image block %d of another page", schoolsite.ErrRecordNotFound, id)
			}
		}
		if err := admin.Bind(block, row); err != nil {
			return nil, err
		}
		out = append(out, schoolsite.ChildForm{
			Record: block,
			Form:   row,
			Delete: row.Bool("DELETE"),
		})
	}
	return out, nil
}

// parseForm accepts multipart and urlencoded bodies
func parseForm(r *http.Request) (*admin.MultipartForm, error) {
	err := r.ParseMultipartForm(maxFormMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return admin.NewMultipartForm(&multipart.Form{Value: r.PostForm}), nil
	}
	if err != nil {
		return nil, err
	}
	return admin.NewMultipartForm(r.MultipartForm), nil
}
