package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/contentservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *contentservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *contentservice.Service) *Handler {
	return &Handler{svc: svc}
}

var requirePatch = validation.Required.Error("body must be a non-empty JSON object")

// fail maps a service error to a response. Unexpected errors are logged and
// hidden behind a generic message.
func fail(w http.ResponseWriter, op, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrInvalidPath):
		writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	case errors.Is(err, apperr.ErrNotAllowed):
		writeJSON(w, http.StatusMethodNotAllowed, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

func recordID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	return id, validation.Validate(id, validation.Required, is.UUID)
}

// Schema handles GET /api/schema.
//
//	@Summary		Describe every collection and singleton
//	@Tags			schema
//	@Produce		json
//	@Success		200	{array}	contentservice.SchemaInfo
//	@Security		BearerAuth
//	@Router			/schema [get]
func (h *Handler) Schema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, contentservice.Schemas())
}

// List handles GET /api/collections/{path}.
//
//	@Summary		List a collection, newest first
//	@Tags			collections
//	@Produce		json
//	@Param			path	path		string	true	"Collection path"
//	@Success		200		{object}	RecordListResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections/{path} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	records, err := h.svc.List(r.Context(), path)
	if err != nil {
		fail(w, "list collection", path, err)
		return
	}
	writeJSON(w, http.StatusOK, RecordListResponse{Path: path, Records: records})
}

// Get handles GET /api/collections/{path}/{id}.
//
//	@Summary		Get one record
//	@Tags			collections
//	@Produce		json
//	@Param			path	path		string	true	"Collection path"
//	@Param			id		path		string	true	"Record id"
//	@Success		200		{object}	content.Record
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections/{path}/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	rec, err := h.svc.Get(r.Context(), path, id)
	if err != nil {
		fail(w, "get record", path, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Create handles POST /api/collections/{path}.
//
//	@Summary		Append a record; the store assigns the id
//	@Tags			collections
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string			true	"Collection path"
//	@Param			body	body		map[string]any	true	"Record fields"
//	@Success		201		{object}	CreatedResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		405		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections/{path} [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	patch, err := decodePatch(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := validation.Validate(patch, requirePatch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	rec, err := h.svc.Create(r.Context(), path, patch)
	if err != nil {
		fail(w, "create record", path, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreatedResponse{ID: rec.ID, Record: rec})
}

// Update handles PATCH /api/collections/{path}/{id}.
//
//	@Summary		Merge fields into a record; null removes a field
//	@Tags			collections
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string			true	"Collection path"
//	@Param			id		path		string			true	"Record id"
//	@Param			body	body		map[string]any	true	"Fields to overwrite"
//	@Success		200		{object}	content.Record
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		405		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections/{path}/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	patch, err := decodePatch(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := validation.Validate(patch, requirePatch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	rec, err := h.svc.Update(r.Context(), path, id, patch)
	if err != nil {
		fail(w, "update record", path, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Delete handles DELETE /api/collections/{path}/{id}.
//
//	@Summary		Delete a record
//	@Tags			collections
//	@Param			path	path	string	true	"Collection path"
//	@Param			id		path	string	true	"Record id"
//	@Success		204		"Record deleted or already absent"
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/collections/{path}/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	id, err := recordID(r)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	if err := h.svc.Delete(r.Context(), path, id); err != nil {
		fail(w, "delete record", path, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSingleton handles GET /api/singletons/{path}.
//
//	@Summary		Get a singleton; an unwritten singleton has no fields
//	@Tags			singletons
//	@Produce		json
//	@Param			path	path		string	true	"Singleton path"
//	@Success		200		{object}	content.Record
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/singletons/{path} [get]
func (h *Handler) GetSingleton(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	rec, err := h.svc.Singleton(r.Context(), path)
	if err != nil {
		fail(w, "get singleton", path, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// UpdateSingleton handles PATCH /api/singletons/{path}.
//
//	@Summary		Merge fields into a singleton
//	@Tags			singletons
//	@Accept			json
//	@Produce		json
//	@Param			path	path		string			true	"Singleton path"
//	@Param			body	body		map[string]any	true	"Fields to overwrite"
//	@Success		200		{object}	content.Record
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/singletons/{path} [patch]
func (h *Handler) UpdateSingleton(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	patch, err := decodePatch(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if err := validation.Validate(patch, requirePatch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	rec, err := h.svc.UpdateSingleton(r.Context(), path, patch)
	if err != nil {
		fail(w, "update singleton", path, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// Search handles GET /api/search.
//
//	@Summary		Search record text across paths
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search text"
//	@Param			path	query		string	false	"Restrict to one path"
//	@Param			limit	query		int		false	"Max results (default 20, max 100)"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if strings.TrimSpace(q) == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	path := r.URL.Query().Get("path")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, path, limit)
	if err != nil {
		fail(w, "search", path, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Query: q, Results: results})
}
