package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/bwservices06-art/bwservicesweb/internal/contentservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// uploadsDir receives files posted to /uploads.
func NewRouter(svc *contentservice.Service, authEnabled bool, token string, uploadsDir string) chi.Router {
	h := NewHandler(svc)
	uh := NewUploadHandler(uploadsDir)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/schema", h.Schema)

	r.Get("/collections/{path}", h.List)
	r.Post("/collections/{path}", h.Create)
	r.Get("/collections/{path}/{id}", h.Get)
	r.Patch("/collections/{path}/{id}", h.Update)
	r.Delete("/collections/{path}/{id}", h.Delete)

	r.Get("/singletons/{path}", h.GetSingleton)
	r.Patch("/singletons/{path}", h.UpdateSingleton)

	r.Get("/search", h.Search)

	r.Post("/uploads", uh.Upload)

	return r
}
