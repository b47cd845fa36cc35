// Package web implements the HTML surfaces: the public one-page site with its
// intake forms, and the admin console.
package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bwservices06-art/bwservicesweb/internal/auth"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/dashboard"
	"github.com/bwservices06-art/bwservicesweb/internal/intake"
	"github.com/bwservices06-art/bwservicesweb/internal/site"
	"github.com/bwservices06-art/bwservicesweb/internal/sse"
	"github.com/bwservices06-art/bwservicesweb/internal/store"
)

// Deps are the collaborators of the HTML handlers.
type Deps struct {
	Live     *site.Live
	Broker   *sse.Broker
	Intake   *intake.Service
	Auth     *auth.Authenticator
	Sessions *dashboard.Sessions
	Store    store.Writer
	// RatePerMinute throttles intake submissions per client address. Zero
	// disables throttling.
	RatePerMinute int
	Logger        *slog.Logger
}

// Handler serves the HTML routes.
type Handler struct {
	live     *site.Live
	broker   *sse.Broker
	intake   *intake.Service
	auth     *auth.Authenticator
	sessions *dashboard.Sessions
	store    store.Writer
	limiter  *ipLimiter
	pages    map[string]*template.Template
	logger   *slog.Logger
	now      func() time.Time
}

// NewHandler parses the embedded templates and returns a Handler.
func NewHandler(d Deps) (*Handler, error) {
	if d.Live == nil || d.Broker == nil || d.Intake == nil || d.Auth == nil || d.Sessions == nil || d.Store == nil {
		return nil, errors.New("web: missing dependency")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		live:     d.Live,
		broker:   d.Broker,
		intake:   d.Intake,
		auth:     d.Auth,
		sessions: d.Sessions,
		store:    d.Store,
		limiter:  newIPLimiter(d.RatePerMinute),
		pages:    pages,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Routes returns the chi router for the HTML surfaces.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	staticFS, _ := fs.Sub(StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	r.Get("/", h.Index)
	r.With(h.limiter.middleware).Post("/contact", h.Contact)
	r.With(h.limiter.middleware).Post("/order", h.Order)
	r.Get("/live/{path}", h.PublicLive)

	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.CSRF)
		r.Get("/login", h.LoginPage)
		r.Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(h.auth.Require("/admin/login"))
			r.Get("/", h.Dashboard)
			r.Get("/live/{path}", h.AdminLive)
			r.Post("/logout", h.Logout)
			r.Post("/tab", h.SelectTab)
			r.Post("/add", h.OpenAdd)
			r.Post("/edit", h.OpenEdit)
			r.Post("/save", h.Save)
			r.Post("/cancel", h.Cancel)
			r.Post("/delete", h.RequestDelete)
			r.Post("/confirm-delete", h.ConfirmDelete)
			r.Post("/cancel-delete", h.CancelDelete)
		})
	})

	return r
}

var funcs = template.FuncMap{
	"inputType": inputType,
	"cell":      cell,
	"isBool":    func(f content.Field) bool { return f.Type == content.FieldBool },
	"isLong":    func(f content.Field) bool { return f.Type == content.FieldLongText },
	"join":      strings.Join,
	"fieldCtx":  newFieldCtx,
	"postCtx":   newPostCtx,
	"tabClass": func(path, active string) string {
		if path == active {
			return "tab active"
		}
		return "tab"
	},
}

type fieldCtx struct {
	Prefix string
	Field  content.Field
	Value  string
	Error  string
}

func newFieldCtx(prefix string, f content.Field, value, err string) fieldCtx {
	return fieldCtx{Prefix: prefix, Field: f, Value: value, Error: err}
}

// postCtx renders a one-button form carrying the CSRF token and at most one
// extra hidden value.
type postCtx struct {
	Action string
	CSRF   string
	Name   string
	Value  string
	Label  string
	Class  string
}

func newPostCtx(action, csrf, name, value, label, class string) postCtx {
	return postCtx{Action: action, CSRF: csrf, Name: name, Value: value, Label: label, Class: class}
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"index.html", "login.html", "admin.html"} {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("web: parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// render executes a page into a buffer first so a template error never
// leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		h.logger.Error("failed to render page", slog.String("page", name), slog.String("error", err.Error()))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func inputType(f content.Field) string {
	switch f.Type {
	case content.FieldEmail:
		return "email"
	case content.FieldURL:
		return "url"
	case content.FieldInt:
		return "number"
	}
	return "text"
}

// cell renders a stored value for the console tables.
func cell(r content.Record, f content.Field) string {
	switch f.Type {
	case content.FieldTimestamp:
		ts := r.Timestamp()
		if ts == 0 {
			return ""
		}
		return time.UnixMilli(ts).UTC().Format("2006-01-02 15:04")
	case content.FieldBool:
		if r.Bool(f.Name) {
			return "yes"
		}
		return ""
	case content.FieldList:
		return strings.Join(r.List(f.Name), ", ")
	case content.FieldLongText:
		s := r.String(f.Name)
		if runes := []rune(s); len(runes) > 120 {
			return string(runes[:120]) + "…"
		}
		return s
	}
	return r.String(f.Name)
}
