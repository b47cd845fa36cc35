package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/bwservices06-art/bwservicesweb/internal/apperr"
	"github.com/bwservices06-art/bwservicesweb/internal/auth"
	"github.com/bwservices06-art/bwservicesweb/internal/content"
	"github.com/bwservices06-art/bwservicesweb/internal/dashboard"
)

const (
	adminPath   = "/admin"
	loginPath   = "/admin/login"
	loginFailed = "Invalid email or password"
	saveTimeout = 10 * time.Second

	// liveRefreshHeader marks the background re-render live.js requests after
	// a snapshot event.
	liveRefreshHeader = "X-Live-Refresh"
)

type loginView struct {
	Email string
	Error string
	CSRF  string
}

type adminView struct {
	State   dashboard.State
	Schema  content.Schema
	Tabs    []content.Schema
	Records []content.Record
	Columns []content.Field
	CSRF    string
}

// LoginPage handles GET /admin/login.
func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := h.auth.Session(r); err == nil {
		http.Redirect(w, r, adminPath, http.StatusSeeOther)
		return
	}
	h.render(w, http.StatusOK, "login.html", loginView{CSRF: auth.CSRFToken(w, r)})
}

// Login handles POST /admin/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	token, claims, err := h.auth.Login(email, r.PostFormValue("password"))
	if err != nil {
		if !errors.Is(err, apperr.ErrInvalidCredentials) {
			h.logger.Error("admin login failed", slog.String("error", err.Error()))
		}
		h.render(w, http.StatusUnauthorized, "login.html", loginView{
			Email: email,
			Error: loginFailed,
			CSRF:  auth.CSRFToken(w, r),
		})
		return
	}
	h.auth.SetSession(w, r, token)
	h.sessions.Put(claims.SessionID(), claims.ExpiresAt.Time, dashboard.New())
	h.logger.Info("admin signed in", slog.String("session", claims.SessionID()))
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// Logout handles POST /admin/logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if claims, ok := auth.FromContext(r.Context()); ok {
		h.auth.Revoke(claims)
		h.sessions.Drop(claims.SessionID())
	}
	auth.ClearSession(w)
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}

func sessionID(r *http.Request) string {
	claims, _ := auth.FromContext(r.Context())
	return claims.SessionID()
}

// Dashboard handles GET /admin. Messages from the last action are shown once;
// live refreshes show them without using them up. A singleton tab always
// shows its form, prefilled from the live copy.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	st := h.sessions.Update(sid, func(s dashboard.State) dashboard.State {
		if s.Schema().Singleton && s.Mode == dashboard.Viewing {
			if next, err := s.PrefillSingleton(h.live.Single(s.Schema().Path)); err == nil {
				return next
			}
		}
		return s
	})
	schema := st.Schema()

	view := adminView{
		State:  st,
		Schema: schema,
		CSRF:   auth.CSRFToken(w, r),
	}
	for _, k := range content.Kinds() {
		view.Tabs = append(view.Tabs, k.Schema())
	}
	if !schema.Singleton {
		view.Records = h.live.List(schema.Path)
		view.Columns = schema.Fields
	}
	h.render(w, http.StatusOK, "admin.html", view)

	if r.Header.Get(liveRefreshHeader) != "" {
		return
	}
	h.sessions.Update(sid, func(s dashboard.State) dashboard.State {
		s.Notice = ""
		if !s.ModalOpen() && s.Mode != dashboard.ConfirmingDelete {
			s.Error = ""
		}
		return s
	})
}

// AdminLive handles GET /admin/live/{path} for every content path.
func (h *Handler) AdminLive(w http.ResponseWriter, r *http.Request) {
	path := chi.URLParam(r, "path")
	if _, ok := content.Lookup(path); !ok {
		http.NotFound(w, r)
		return
	}
	h.broker.ServeTopic(w, r, path)
}

// transition applies a pure dashboard action. A rejected action keeps the
// state and shows the reason.
func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(dashboard.State) (dashboard.State, error)) {
	h.sessions.Update(sessionID(r), func(st dashboard.State) dashboard.State {
		next, err := fn(st)
		if err != nil {
			st.Error = dashboard.Message(err)
			st.Notice = ""
			return st
		}
		return next
	})
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// SelectTab handles POST /admin/tab.
func (h *Handler) SelectTab(w http.ResponseWriter, r *http.Request) {
	kind, ok := content.Lookup(r.PostFormValue("tab"))
	h.transition(w, r, func(st dashboard.State) (dashboard.State, error) {
		if !ok {
			return st, apperr.ErrInvalidPath
		}
		return st.SelectTab(kind)
	})
}

// OpenAdd handles POST /admin/add.
func (h *Handler) OpenAdd(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, dashboard.State.OpenAdd)
}

// OpenEdit handles POST /admin/edit.
func (h *Handler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PostFormValue("id")
	h.transition(w, r, func(st dashboard.State) (dashboard.State, error) {
		for _, rec := range h.live.List(st.Schema().Path) {
			if rec.ID == id {
				return st.OpenEdit(rec)
			}
		}
		return st, apperr.ErrNotFound
	})
}

// Cancel handles POST /admin/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(st dashboard.State) (dashboard.State, error) {
		return st.Cancel(), nil
	})
}

// RequestDelete handles POST /admin/delete.
func (h *Handler) RequestDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PostFormValue("id")
	h.transition(w, r, func(st dashboard.State) (dashboard.State, error) {
		return st.RequestDelete(id)
	})
}

// CancelDelete handles POST /admin/cancel-delete.
func (h *Handler) CancelDelete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(st dashboard.State) (dashboard.State, error) {
		return st.CancelDelete(), nil
	})
}

// Save handles POST /admin/save. The write runs outside the session table
// lock; a tab switch that lands meanwhile wins and the result is dropped.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sid := sessionID(r)
	cur := h.sessions.Get(sid)
	st := cur.WithForm(formValues(r, cur.Schema()))

	ctx, cancel := context.WithTimeout(r.Context(), saveTimeout)
	defer cancel()
	next, err := dashboard.Save(ctx, h.store, st)
	if err != nil && !errors.Is(err, apperr.ErrValidation) && !errors.Is(err, apperr.ErrNotAllowed) {
		h.logger.Error("admin save failed",
			slog.String("path", st.Schema().Path),
			slog.String("id", st.TargetID),
			slog.String("error", err.Error()))
	}
	if err == nil && st.Schema().Singleton {
		// the live copy may not have caught up yet
		next.Mode = dashboard.Editing
		next.Form = st.Form
	}
	h.commit(sid, cur, next)
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// ConfirmDelete handles POST /admin/confirm-delete.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	sid := sessionID(r)
	st := h.sessions.Get(sid)

	ctx, cancel := context.WithTimeout(r.Context(), saveTimeout)
	defer cancel()
	next, err := dashboard.ConfirmDelete(ctx, h.store, st)
	if err != nil && !errors.Is(err, apperr.ErrNotAllowed) {
		h.logger.Error("admin delete failed",
			slog.String("path", st.Schema().Path),
			slog.String("id", st.TargetID),
			slog.String("error", err.Error()))
	}
	h.commit(sid, st, next)
	http.Redirect(w, r, adminPath, http.StatusSeeOther)
}

// commit stores next unless the session moved to another tab or target
// while the write was in flight.
func (h *Handler) commit(sid string, from, next dashboard.State) {
	h.sessions.Update(sid, func(cur dashboard.State) dashboard.State {
		if cur.Tab != from.Tab || cur.TargetID != from.TargetID || cur.Mode != from.Mode {
			return cur
		}
		return next
	})
}

// formValues collects the submitted values of the schema's editable fields.
// A checkbox is preceded by a hidden "false" input, so the last value wins.
func formValues(r *http.Request, schema content.Schema) map[string]string {
	out := make(map[string]string)
	for _, f := range schema.EditableFields() {
		vals, ok := r.PostForm[f.Name]
		if !ok || len(vals) == 0 {
			continue
		}
		out[f.Name] = strings.TrimSpace(vals[len(vals)-1])
	}
	return out
}
