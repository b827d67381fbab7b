// Package handler exposes the screening search endpoints over HTTP. It decodes
// requests, delegates to the service and translates coded errors into response
// statuses; no search semantics live here.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"vigil/internal/platform/middleware"
	"vigil/internal/screening/index"
	"vigil/internal/screening/models"
	dErrors "vigil/pkg/domainerrors"
	"vigil/pkg/sentinel"
)

// SearchService runs a search for one watchlist domain.
type SearchService interface {
	SearchSimple(ctx context.Context, domain index.Domain, text string) (*models.SearchResponse, error)
	SearchFiltered(ctx context.Context, domain index.Domain, body models.SearchParam) (*models.SearchResponse, error)
}

// FileStore serves previously generated export files.
type FileStore interface {
	Open(filename string) (io.ReadCloser, error)
}

// Handler wires the search routes.
type Handler struct {
	service SearchService
	files   FileStore
	logger  *slog.Logger
}

// New builds a Handler.
func New(service SearchService, files FileStore, logger *slog.Logger) *Handler {
	return &Handler{service: service, files: files, logger: logger}
}

// Routes returns the /search subrouter.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/exposed", h.search(index.DomainExposed))
	r.Post("/exposed", h.searchFiltered(index.DomainExposed))
	r.Get("/sanctioned", h.search(index.DomainSanctioned))
	r.Post("/sanctioned", h.searchFiltered(index.DomainSanctioned))
	r.Get("/download/{file}", h.download)
	return r
}

func (h *Handler) search(domain index.Domain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text := r.URL.Query().Get("text")
		resp, err := h.service.SearchSimple(r.Context(), domain, text)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		h.respondJSON(w, r, http.StatusOK, resp)
	}
}

func (h *Handler) searchFiltered(domain index.Domain) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.SearchParam
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.respondError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
			return
		}
		resp, err := h.service.SearchFiltered(r.Context(), domain, body)
		if err != nil {
			h.respondError(w, r, err)
			return
		}
		h.respondJSON(w, r, http.StatusOK, resp)
	}
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	filename := chi.URLParam(r, "file")
	f, err := h.files.Open(filename)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			h.respondError(w, r, dErrors.New(dErrors.CodeNotFound, "the file for this search does not exist"))
			return
		}
		h.respondError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/xlsx")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := io.Copy(w, f); err != nil {
		h.logger.Error("stream export failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"file", filename, "error", err,
		)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := dErrors.CodeOf(err)
	status := dErrors.ToHTTPStatus(code)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"path", r.URL.Path, "error", err,
		)
	}
	h.respondJSON(w, r, status, errorBody{Error: dErrors.MessageOf(err)})
}

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("encode response failed",
			"request_id", middleware.GetRequestID(r.Context()),
			"error", err,
		)
	}
}
