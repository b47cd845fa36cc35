package api

import (
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
)

// RecordListResponse wraps a collection listing, newest first.
type RecordListResponse struct {
	Path    string           `json:"path" example:"services" validate:"required"`
	Records []content.Record `json:"records" validate:"required"`
}

// CreatedResponse is returned after a record is appended.
type CreatedResponse struct {
	ID     string         `json:"id" example:"0190f5c2-8a4e-7c1d-9b7e-2f6a1d3c4b5a" validate:"required"`
	Record content.Record `json:"record" validate:"required"`
}

// UploadResponse is returned after a successful upload.
type UploadResponse struct {
	Filename string `json:"filename" example:"team.png" validate:"required"`
	Size     int64  `json:"size" example:"12345" validate:"required"`
	URL      string `json:"url" example:"/uploads/team.png" validate:"required"`
}

// SearchResponse wraps search results, newest first.
type SearchResponse struct {
	Query   string               `json:"query" example:"hosting" validate:"required"`
	Results []store.SearchResult `json:"results" validate:"required"`
}
