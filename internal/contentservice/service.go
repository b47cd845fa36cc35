package contentservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/binder"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
)

// Backend is the store surface the service needs.
type Backend interface {
	store.Reader
	store.Writer
	store.Searcher
}

// Service exposes the content tree to the JSON API and the MCP tools. Patches
// arrive as decoded JSON and are checked against the kind's schema before
// they reach the store.
type Service struct {
	store Backend
}

// NewService creates a new content service.
func NewService(s Backend) *Service {
	return &Service{store: s}
}

// SchemaInfo describes one kind for clients.
type SchemaInfo struct {
	Path       string      `json:"path"`
	Label      string      `json:"label"`
	Singleton  bool        `json:"singleton"`
	AppendOnly bool        `json:"append_only"`
	Fields     []FieldInfo `json:"fields"`
}

// FieldInfo describes one field of a kind.
type FieldInfo struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Type     string `json:"type"`
	Optional bool   `json:"optional,omitempty"`
}

var fieldTypeNames = map[content.FieldType]string{
	content.FieldText:      "text",
	content.FieldLongText:  "markdown",
	content.FieldURL:       "url",
	content.FieldEmail:     "email",
	content.FieldIcon:      "icon",
	content.FieldList:      "list",
	content.FieldInt:       "int",
	content.FieldBool:      "bool",
	content.FieldTimestamp: "timestamp",
}

// Schemas returns every kind in admin tab order.
func Schemas() []SchemaInfo {
	out := make([]SchemaInfo, 0, len(content.Kinds()))
	for _, k := range content.Kinds() {
		s := k.Schema()
		info := SchemaInfo{
			Path:       s.Path,
			Label:      s.Label,
			Singleton:  s.Singleton,
			AppendOnly: s.AppendOnly,
			Fields:     make([]FieldInfo, 0, len(s.Fields)),
		}
		for _, f := range s.Fields {
			info.Fields = append(info.Fields, FieldInfo{
				Name:     f.Name,
				Label:    f.Label,
				Type:     fieldTypeNames[f.Type],
				Optional: f.Optional,
			})
		}
		out = append(out, info)
	}
	return out
}

// List returns a collection newest first, the same order the site renders.
func (s *Service) List(ctx context.Context, path string) ([]content.Record, error) {
	if _, err := collection(path); err != nil {
		return nil, err
	}
	snap, err := s.store.Snapshot(ctx, path)
	if err != nil {
		return nil, err
	}
	return binder.ToList(snap), nil
}

// Get returns one record of a collection.
func (s *Service) Get(ctx context.Context, path, id string) (content.Record, error) {
	snap, err := s.store.Snapshot(ctx, path)
	if err != nil {
		return content.Record{}, err
	}
	for _, rec := range snap.Records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return content.Record{}, fmt.Errorf("%w: %s/%s", apperr.ErrNotFound, path, id)
}

// Singleton returns a singleton record. An unwritten singleton has no fields.
func (s *Service) Singleton(ctx context.Context, path string) (content.Record, error) {
	return s.store.Singleton(ctx, path)
}

// Create appends a record. Inquiries and orders only come in through the
// public forms and are rejected here.
func (s *Service) Create(ctx context.Context, path string, fields map[string]any) (content.Record, error) {
	schema, err := editable(path)
	if err != nil {
		return content.Record{}, err
	}
	payload, err := schema.Normalize(fields)
	if err != nil {
		return content.Record{}, err
	}
	for k, v := range payload {
		if v == nil {
			delete(payload, k)
		}
	}
	id, err := s.store.Append(ctx, path, payload)
	if err != nil {
		return content.Record{}, err
	}
	return s.Get(ctx, path, id)
}

// Update merges patch into a collection record. Submitted inquiries and
// orders are never rewritten.
func (s *Service) Update(ctx context.Context, path, id string, patch map[string]any) (content.Record, error) {
	schema, err := editable(path)
	if err != nil {
		return content.Record{}, err
	}
	payload, err := schema.Normalize(patch)
	if err != nil {
		return content.Record{}, err
	}
	if err := s.store.Merge(ctx, path, id, payload); err != nil {
		return content.Record{}, err
	}
	return s.Get(ctx, path, id)
}

// UpdateSingleton merges patch into a singleton, creating it on first write.
func (s *Service) UpdateSingleton(ctx context.Context, path string, patch map[string]any) (content.Record, error) {
	k, ok := content.Lookup(path)
	if !ok || !k.Schema().Singleton {
		return content.Record{}, fmt.Errorf("%w: %q is not a singleton", apperr.ErrInvalidPath, path)
	}
	payload, err := k.Schema().Normalize(patch)
	if err != nil {
		return content.Record{}, err
	}
	if err := s.store.MergeSingleton(ctx, path, payload); err != nil {
		return content.Record{}, err
	}
	return s.store.Singleton(ctx, path)
}

// Delete removes a collection record. Deleting an absent record succeeds.
func (s *Service) Delete(ctx context.Context, path, id string) error {
	if _, err := collection(path); err != nil {
		return err
	}
	return s.store.Delete(ctx, path, id)
}

// Search finds records containing query in any text field, newest first.
// An empty path searches every path.
func (s *Service) Search(ctx context.Context, query, path string, limit int) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: query is required", apperr.ErrValidation)
	}
	return s.store.Search(ctx, query, path, limit)
}

func collection(path string) (content.Schema, error) {
	k, ok := content.Lookup(path)
	if !ok {
		return content.Schema{}, fmt.Errorf("%w: %q", apperr.ErrInvalidPath, path)
	}
	if k.Schema().Singleton {
		return content.Schema{}, fmt.Errorf("%w: %q is a singleton", apperr.ErrInvalidPath, path)
	}
	return k.Schema(), nil
}

// editable resolves a collection that accepts writes from editors.
func editable(path string) (content.Schema, error) {
	schema, err := collection(path)
	if err != nil {
		return schema, err
	}
	if schema.AppendOnly {
		return schema, fmt.Errorf("%w: %s are submitted through the public forms only", apperr.ErrNotAllowed, path)
	}
	return schema, nil
}
