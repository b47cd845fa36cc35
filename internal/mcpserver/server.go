// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the site content tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/contentservice"
)

const schemaURI = "content://schema"

// Server wraps the MCP server with the content tools.
type Server struct {
	mcp        *server.MCPServer
	svc        *contentservice.Service
	uploadsDir string
	baseURL    string
}

// Option configures a Server.
type Option func(*Server)

// WithBaseURL makes upload_image return absolute links under baseURL.
func WithBaseURL(baseURL string) Option {
	return func(s *Server) { s.baseURL = strings.TrimRight(baseURL, "/") }
}

// New creates a new MCP server with all content tools registered. Images
// passed to upload_image land in uploadsDir.
func New(svc *contentservice.Service, uploadsDir string, opts ...Option) *Server {
	s := &Server{svc: svc, uploadsDir: uploadsDir}
	for _, o := range opts {
		o(s)
	}

	s.mcp = server.NewMCPServer(
		"BW Services content",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_schema",
		mcp.WithDescription("Describe every collection and singleton with its fields. "+
			"Call this before adding or updating records."),
	), s.getSchema)

	s.mcp.AddTool(mcp.NewTool("list_collection",
		mcp.WithDescription("List the records of a collection, newest first."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Collection path (e.g. services, faqs, inquiries)")),
	), s.listCollection)

	s.mcp.AddTool(mcp.NewTool("get_singleton",
		mcp.WithDescription("Read a singleton record (hero or settings)."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Singleton path")),
	), s.getSingleton)

	s.mcp.AddTool(mcp.NewTool("add_record",
		mcp.WithDescription("Append a record to a collection. The store assigns the id. "+
			"Inquiries and orders are read-only."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Collection path")),
		mcp.WithObject("fields", mcp.Required(), mcp.Description("Field values keyed by field name")),
	), s.addRecord)

	s.mcp.AddTool(mcp.NewTool("update_record",
		mcp.WithDescription("Overwrite only the given fields of a record. A null value removes the field."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Collection path")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
		mcp.WithObject("fields", mcp.Required(), mcp.Description("Fields to overwrite")),
	), s.updateRecord)

	s.mcp.AddTool(mcp.NewTool("update_singleton",
		mcp.WithDescription("Overwrite only the given fields of a singleton, creating it on first write."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Singleton path")),
		mcp.WithObject("fields", mcp.Required(), mcp.Description("Fields to overwrite")),
	), s.updateSingleton)

	s.mcp.AddTool(mcp.NewTool("delete_record",
		mcp.WithDescription("Delete a record from a collection. Deleting an absent record succeeds."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Collection path")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Record id")),
	), s.deleteRecord)

	s.mcp.AddTool(mcp.NewTool("search_records",
		mcp.WithDescription("Find records whose text fields contain the query, newest first."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Text to look for, case-insensitive")),
		mcp.WithString("path", mcp.Description("Restrict the search to one path")),
		mcp.WithNumber("limit", mcp.Description("Max results (default 20, max 100)")),
	), s.searchRecords)

	s.mcp.AddTool(mcp.NewTool("upload_image",
		mcp.WithDescription("Store an image for project or developer records. "+
			"Returns the URL to put in the record's image field."),
		mcp.WithString("data", mcp.Required(), mcp.Description("Base64 data URI (data:image/png;base64,...)")),
		mcp.WithString("filename", mcp.Description("Optional filename; derived from the data when empty")),
	), s.uploadImage)

	s.mcp.AddResource(
		mcp.NewResource(schemaURI, "Content Schema",
			mcp.WithResourceDescription("Every collection and singleton with its fields."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSchemaResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrInvalidPath) ||
		errors.Is(err, apperr.ErrValidation) || errors.Is(err, apperr.ErrNotAllowed) {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultError("store error: " + err.Error())
}

func fieldsArg(req mcp.CallToolRequest) (map[string]any, error) {
	raw, ok := req.GetArguments()["fields"]
	if !ok {
		return nil, errors.New("required argument \"fields\" not found")
	}
	fields, ok := raw.(map[string]any)
	if !ok || len(fields) == 0 {
		return nil, errors.New("argument \"fields\" must be a non-empty object")
	}
	return fields, nil
}

func (s *Server) getSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(contentservice.Schemas()), nil
}

func (s *Server) listCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	records, err := s.svc.List(ctx, path)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(records), nil
}

func (s *Server) getSingleton(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Singleton(ctx, path)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rec), nil
}

func (s *Server) addRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := fieldsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Create(ctx, path, fields)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("added: %s/%s", path, rec.ID)), nil
}

func (s *Server) updateRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := fieldsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.Update(ctx, path, id, fields)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rec), nil
}

func (s *Server) updateSingleton(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := fieldsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.svc.UpdateSingleton(ctx, path, fields)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rec), nil
}

func (s *Server) deleteRecord(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, path, id); err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s/%s", path, id)), nil
}

func (s *Server) searchRecords(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetString("path", ""), req.GetInt("limit", 0))
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readSchemaResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemaURI,
			MIMEType: "text/markdown",
			Text:     SchemaContract(),
		},
	}, nil
}
