package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/schoolsite/pkg/schoolsite"
)

// ErrorBody is the JSON envelope of every error response
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one error
type ErrorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	render.Status(r, status)
	render.JSON(w, r, ErrorBody{Error: ErrorDetail{
		Code:      code,
		Message:   message,
		RequestID: requestID(r),
	}})
}

// writeServiceError maps service errors to HTTP statuses
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *schoolsite.ValidationError
	var uerr *schoolsite.UploadError
	switch {
	case errors.As(err, &verr):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ErrorBody{Error: ErrorDetail{
			Code:      "validation_error",
			Message:   verr.Message,
			Field:     verr.Field,
			RequestID: requestID(r),
		}})
	case errors.Is(err, schoolsite.ErrValidation):
		writeError(w, r, http.StatusBadRequest, "validation_error", err.Error())
	case errors.Is(err, schoolsite.ErrRecordNotFound):
		writeError(w, r, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, schoolsite.ErrDuplicate):
		writeError(w, r, http.StatusConflict, "duplicate", err.Error())
	case errors.As(err, &uerr):
		writeError(w, r, http.StatusBadGateway, "upload_failed", err.Error())
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, r, http.StatusInternalServerError, "internal_error", "An internal server error occurred")
	}
}
